package quotes

import (
	"context"
	"fmt"

	"github.com/kjannette/trahn-ledger/internal/models"
)

// Router sends crypto symbols to one source and everything else to another.
// Either side may be nil, in which case those symbols have no quote.
type Router struct {
	Crypto Source
	Equity Source
}

func (r *Router) Quote(ctx context.Context, symbol string) (*Quote, error) {
	src := r.Equity
	if models.IsCrypto(symbol) {
		src = r.Crypto
	}
	if src == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}
	return src.Quote(ctx, symbol)
}
