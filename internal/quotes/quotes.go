// Package quotes provides reference prices for valuation. Sources are
// composable: Router picks a source by asset class and Cache bounds how often
// an upstream is hit.
package quotes

import (
	"context"
	"errors"
	"time"
)

var ErrUnknownSymbol = errors.New("no quote for symbol")

type Quote struct {
	Symbol           string    `json:"symbol"`
	CurrentPrice     float64   `json:"currentPrice"`
	Change24hPercent float64   `json:"change24hPercent"`
	Volume24h        float64   `json:"volume24h"`
	Source           string    `json:"source"`
	FetchedAt        time.Time `json:"fetchedAt"`
}

type Source interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// PriceOf adapts a Source to the plain price lookup the valuation engine takes.
func PriceOf(src Source) func(ctx context.Context, symbol string) (float64, error) {
	return func(ctx context.Context, symbol string) (float64, error) {
		q, err := src.Quote(ctx, symbol)
		if err != nil {
			return 0, err
		}
		return q.CurrentPrice, nil
	}
}
