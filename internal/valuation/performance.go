package valuation

import (
	"context"
	"sort"

	"github.com/kjannette/trahn-ledger/internal/models"
)

// AssetPerformance compares what was paid on entry with what the bought
// quantity is worth now. Sells are ignored, so this is a different baseline
// from the realized+unrealized figures in Snapshot.
type AssetPerformance struct {
	Assets        []AssetEntryPerformance // sorted by symbol
	TotalInvested float64
	TotalValue    float64
	TotalGain     float64
	GainPercent   float64
	Estimated     bool
}

type AssetEntryPerformance struct {
	Symbol         string
	BoughtQuantity float64
	Invested       float64
	AverageEntry   float64
	CurrentPrice   float64
	CurrentValue   float64
	Gain           float64
	GainPercent    float64
	Estimated      bool
}

// AssetPerformance evaluates executed buys only.
func (e *Engine) AssetPerformance(ctx context.Context, trades []models.Trade) AssetPerformance {
	entries := make(map[string]*AssetEntryPerformance)
	for _, t := range trades {
		if !t.IsExecuted() || t.Side != models.SideBuy {
			continue
		}
		a, ok := entries[t.Symbol]
		if !ok {
			a = &AssetEntryPerformance{Symbol: t.Symbol}
			entries[t.Symbol] = a
		}
		a.BoughtQuantity += t.Quantity
		a.Invested += t.Quantity * t.Price
	}

	symbols := make([]string, 0, len(entries))
	for s := range entries {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var out AssetPerformance
	for _, sym := range symbols {
		a := entries[sym]
		if a.BoughtQuantity > 0 {
			a.AverageEntry = a.Invested / a.BoughtQuantity
		}

		price, ok := e.lookup(ctx, sym)
		if !ok {
			price = a.AverageEntry
		}
		a.CurrentPrice = price
		a.Estimated = !ok
		a.CurrentValue = a.BoughtQuantity * price
		a.Gain = a.CurrentValue - a.Invested
		a.GainPercent = percentOf(a.Gain, a.Invested)

		out.TotalInvested += a.Invested
		out.TotalValue += a.CurrentValue
		out.Estimated = out.Estimated || a.Estimated
		out.Assets = append(out.Assets, *a)
	}
	out.TotalGain = out.TotalValue - out.TotalInvested
	out.GainPercent = percentOf(out.TotalGain, out.TotalInvested)

	return out
}
