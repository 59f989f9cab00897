package report

import (
	"sort"
	"time"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/valuation"
)

type SnapshotView struct {
	InitialBalance         float64 `json:"initialBalance"`
	CashBalance            float64 `json:"cashBalance"`
	TotalHoldingsValue     float64 `json:"totalHoldingsValue"`
	TotalPortfolioValue    float64 `json:"totalPortfolioValue"`
	TotalProfitLoss        float64 `json:"totalProfitLoss"`
	TotalProfitLossPercent float64 `json:"totalProfitLossPercent"`
	RealizedPnL            float64 `json:"realizedPnL"`
	UnrealizedPnL          float64 `json:"unrealizedPnL"`
	Estimated              bool    `json:"estimated"`
}

func NewSnapshotView(v valuation.Valuation) SnapshotView {
	s := v.Snapshot
	return SnapshotView{
		InitialBalance:         Money(s.InitialBalance),
		CashBalance:            Money(s.CashBalance),
		TotalHoldingsValue:     Money(s.TotalHoldingsValue),
		TotalPortfolioValue:    Money(s.TotalPortfolioValue),
		TotalProfitLoss:        Money(s.TotalProfitLoss),
		TotalProfitLossPercent: Money(s.TotalProfitLossPercent),
		RealizedPnL:            Money(s.RealizedPnL),
		UnrealizedPnL:          Money(s.UnrealizedPnL),
		Estimated:              s.Estimated,
	}
}

type HoldingView struct {
	Symbol               string           `json:"symbol"`
	AssetType            models.AssetType `json:"assetType"`
	Quantity             float64          `json:"quantity"`
	AveragePrice         float64          `json:"averagePrice"`
	CurrentPrice         float64          `json:"currentPrice"`
	CostBasis            float64          `json:"costBasis"`
	CurrentValue         float64          `json:"currentValue"`
	UnrealizedPnL        float64          `json:"unrealizedPnL"`
	UnrealizedPnLPercent float64          `json:"unrealizedPnLPercent"`
	AllocationPercent    float64          `json:"allocationPercent"`
	Estimated            bool             `json:"estimated"`
}

// NewHoldingViews lists holdings largest first; equal values order by symbol.
func NewHoldingViews(v valuation.Valuation) []HoldingView {
	hs := append([]valuation.Holding(nil), v.Holdings...)
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].CurrentValue != hs[j].CurrentValue {
			return hs[i].CurrentValue > hs[j].CurrentValue
		}
		return hs[i].Symbol < hs[j].Symbol
	})

	out := make([]HoldingView, 0, len(hs))
	for _, h := range hs {
		out = append(out, HoldingView{
			Symbol:               h.Symbol,
			AssetType:            models.AssetTypeOf(h.Symbol),
			Quantity:             Quantity(h.Symbol, h.Quantity),
			AveragePrice:         Money(h.AveragePrice),
			CurrentPrice:         Money(h.CurrentPrice),
			CostBasis:            Money(h.CostBasis),
			CurrentValue:         Money(h.CurrentValue),
			UnrealizedPnL:        Money(h.UnrealizedPnL),
			UnrealizedPnLPercent: Money(h.UnrealizedPnLPercent),
			AllocationPercent:    Money(h.AllocationPercent),
			Estimated:            h.Estimated,
		})
	}
	return out
}

type TradeView struct {
	ID         string             `json:"id"`
	Symbol     string             `json:"symbol"`
	AssetType  models.AssetType   `json:"assetType"`
	Side       models.TradeSide   `json:"side"`
	Kind       models.OrderKind   `json:"kind"`
	Status     models.TradeStatus `json:"status"`
	Quantity   float64            `json:"quantity"`
	Price      float64            `json:"price"`
	TotalValue float64            `json:"totalValue"`
	CreatedAt  time.Time          `json:"createdAt"`
	ExecutedAt *time.Time         `json:"executedAt,omitempty"`
}

func NewTradeView(t models.Trade) TradeView {
	return TradeView{
		ID:         t.ID,
		Symbol:     t.Symbol,
		AssetType:  models.AssetTypeOf(t.Symbol),
		Side:       t.Side,
		Kind:       t.Kind,
		Status:     t.Status,
		Quantity:   Quantity(t.Symbol, t.Quantity),
		Price:      Money(t.Price),
		TotalValue: Money(t.Total()),
		CreatedAt:  t.CreatedAt,
		ExecutedAt: t.ExecutedAt,
	}
}

// RecentTrades returns at most n executed trades, newest first.
func RecentTrades(trades []models.Trade, n int) []TradeView {
	if n <= 0 {
		return []TradeView{}
	}

	executed := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsExecuted() {
			executed = append(executed, t)
		}
	}
	sort.SliceStable(executed, func(i, j int) bool {
		a, b := executed[i], executed[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if len(executed) > n {
		executed = executed[:n]
	}

	out := make([]TradeView, 0, len(executed))
	for _, t := range executed {
		out = append(out, NewTradeView(t))
	}
	return out
}

type AssetPerformanceView struct {
	Symbol         string           `json:"symbol"`
	AssetType      models.AssetType `json:"assetType"`
	BoughtQuantity float64          `json:"boughtQuantity"`
	Invested       float64          `json:"invested"`
	AverageEntry   float64          `json:"averageEntry"`
	CurrentPrice   float64          `json:"currentPrice"`
	CurrentValue   float64          `json:"currentValue"`
	Gain           float64          `json:"gain"`
	GainPercent    float64          `json:"gainPercent"`
	Estimated      bool             `json:"estimated"`
}

type PerformanceView struct {
	Assets        []AssetPerformanceView `json:"assets"`
	TotalInvested float64                `json:"totalInvested"`
	TotalValue    float64                `json:"totalValue"`
	TotalGain     float64                `json:"totalGain"`
	GainPercent   float64                `json:"gainPercent"`
	Estimated     bool                   `json:"estimated"`
}

func NewPerformanceView(p valuation.AssetPerformance) PerformanceView {
	out := PerformanceView{
		Assets:        make([]AssetPerformanceView, 0, len(p.Assets)),
		TotalInvested: Money(p.TotalInvested),
		TotalValue:    Money(p.TotalValue),
		TotalGain:     Money(p.TotalGain),
		GainPercent:   Money(p.GainPercent),
		Estimated:     p.Estimated,
	}
	for _, a := range p.Assets {
		out.Assets = append(out.Assets, AssetPerformanceView{
			Symbol:         a.Symbol,
			AssetType:      models.AssetTypeOf(a.Symbol),
			BoughtQuantity: Quantity(a.Symbol, a.BoughtQuantity),
			Invested:       Money(a.Invested),
			AverageEntry:   Money(a.AverageEntry),
			CurrentPrice:   Money(a.CurrentPrice),
			CurrentValue:   Money(a.CurrentValue),
			Gain:           Money(a.Gain),
			GainPercent:    Money(a.GainPercent),
			Estimated:      a.Estimated,
		})
	}
	return out
}
