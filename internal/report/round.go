// Package report shapes valuation output for callers. Values are rounded
// here and nowhere earlier, so the engine stays exact and re-running it over
// the same log yields byte-identical views.
package report

import (
	"math"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/shopspring/decimal"
)

const (
	MoneyDecimals          = 2
	CryptoQuantityDecimals = 8
	EquityQuantityDecimals = 2
)

// Round rounds half away from zero. NaN and infinities pass through.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func Money(v float64) float64 { return Round(v, MoneyDecimals) }

// Quantity rounds a position size with the precision of its asset class.
func Quantity(symbol string, qty float64) float64 {
	if models.IsCrypto(symbol) {
		return Round(qty, CryptoQuantityDecimals)
	}
	return Round(qty, EquityQuantityDecimals)
}
