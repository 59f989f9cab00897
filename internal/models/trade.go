package models

import (
	"fmt"
	"strings"
	"time"
)

type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

func (s TradeSide) IsValid() bool { return s == SideBuy || s == SideSell }

// ParseSide accepts any casing ("BUY", "Sell").
func ParseSide(v string) (TradeSide, error) {
	switch TradeSide(strings.ToLower(strings.TrimSpace(v))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("invalid trade side %q, expected buy|sell", v)
	}
}

type OrderKind string

const (
	KindMarket OrderKind = "market"
	KindLimit  OrderKind = "limit"
)

func (k OrderKind) IsValid() bool { return k == KindMarket || k == KindLimit }

type TradeStatus string

const (
	StatusPending   TradeStatus = "pending"
	StatusExecuted  TradeStatus = "executed"
	StatusCancelled TradeStatus = "cancelled"
)

// Trade is one immutable entry of an account's trade log.
// Corrections are new offsetting trades, never edits.
type Trade struct {
	ID         string      `json:"id"` // monotonic ULID, breaks created_at ties in insertion order
	AccountID  string      `json:"accountId"`
	Symbol     string      `json:"symbol"`
	Side       TradeSide   `json:"side"`
	Quantity   float64     `json:"quantity"`
	Price      float64     `json:"price"`
	Kind       OrderKind   `json:"kind"`
	Status     TradeStatus `json:"status"`
	TradingDay string      `json:"tradingDay"`
	CreatedAt  time.Time   `json:"createdAt"`
	ExecutedAt *time.Time  `json:"executedAt,omitempty"`
}

// Total is the notional value quantity*price.
func (t Trade) Total() float64 { return t.Quantity * t.Price }

func (t Trade) IsExecuted() bool { return t.Status == StatusExecuted }

type TradeStats struct {
	TotalTrades int64      `json:"totalTrades"`
	BuyCount    int64      `json:"buyCount"`
	SellCount   int64      `json:"sellCount"`
	TotalVolume *float64   `json:"totalVolume"`
	AvgPrice    *float64   `json:"avgPrice"`
	FirstTrade  *time.Time `json:"firstTrade"`
	LastTrade   *time.Time `json:"lastTrade"`
}
