// Package valuation derives cash, holdings and profit/loss from an account's
// trade log. Nothing here is persisted: every read replays the full log.
package valuation

import (
	"math"
	"sort"

	"github.com/kjannette/trahn-ledger/internal/models"
)

// ZeroEpsilon is the quantity below which a position is considered closed
// after a sell. Residual float dust from partial sells snaps to exactly zero.
const ZeroEpsilon = 1e-3

// sellTolerance is the relative slack a sell may exceed the held quantity by.
// It only absorbs binary rounding, e.g. 0.3-0.1 leaving 0.19999999999999998.
const sellTolerance = 1e-9

// Position is the running average-cost state of one symbol.
type Position struct {
	Symbol    string
	Quantity  float64
	CostBasis float64
}

// AveragePrice is cost basis per unit, 0 for an empty position.
func (p Position) AveragePrice() float64 {
	if p.Quantity <= 0 {
		return 0
	}
	return p.CostBasis / p.Quantity
}

// Ledger is the quote-independent result of replaying a trade log.
type Ledger struct {
	InitialBalance float64
	Cash           float64
	RealizedPnL    float64
	Positions      map[string]Position
}

// Owned returns the held quantity of symbol, 0 when none.
func (l Ledger) Owned(symbol string) float64 {
	return l.Positions[symbol].Quantity
}

// CanSell reports whether qty of symbol is covered by the held quantity.
func (l Ledger) CanSell(symbol string, qty float64) bool {
	owned := l.Owned(symbol)
	if owned <= 0 {
		return false
	}
	return qty <= owned*(1+sellTolerance)
}

// Symbols returns held symbols in sorted order.
func (l Ledger) Symbols() []string {
	out := make([]string, 0, len(l.Positions))
	for s := range l.Positions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Replay walks trades in slice order and applies every executed one.
// Callers pass the log as stored: created_at ascending, insertion order on ties.
func Replay(initialBalance float64, trades []models.Trade) Ledger {
	l := Ledger{
		InitialBalance: initialBalance,
		Cash:           initialBalance,
		Positions:      make(map[string]Position),
	}

	for _, t := range trades {
		if !t.IsExecuted() {
			continue
		}
		pos := l.Positions[t.Symbol]
		pos.Symbol = t.Symbol
		notional := t.Quantity * t.Price

		switch t.Side {
		case models.SideBuy:
			l.Cash -= notional
			pos.Quantity += t.Quantity
			pos.CostBasis += notional

		case models.SideSell:
			l.Cash += notional
			sold := math.Min(t.Quantity, pos.Quantity)
			soldCost := sold * pos.AveragePrice()
			l.RealizedPnL += notional - soldCost
			pos.Quantity -= sold
			pos.CostBasis -= soldCost
			if pos.Quantity < ZeroEpsilon {
				delete(l.Positions, t.Symbol)
				continue
			}

		default:
			continue
		}

		l.Positions[t.Symbol] = pos
	}

	return l
}
