package quotes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Static serves fixed prices. Used for local runs and as a fallback layer.
type Static struct {
	mu     sync.RWMutex
	prices map[string]float64
}

func NewStatic(prices map[string]float64) *Static {
	s := &Static{prices: make(map[string]float64, len(prices))}
	for sym, p := range prices {
		s.prices[strings.ToUpper(sym)] = p
	}
	return s
}

func (s *Static) Set(symbol string, price float64) {
	s.mu.Lock()
	s.prices[strings.ToUpper(symbol)] = price
	s.mu.Unlock()
}

func (s *Static) Quote(_ context.Context, symbol string) (*Quote, error) {
	s.mu.RLock()
	p, ok := s.prices[strings.ToUpper(symbol)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}
	return &Quote{Symbol: symbol, CurrentPrice: p, Source: "static", FetchedAt: time.Now()}, nil
}

// Fallback tries each source in order and returns the first quote found.
type Fallback []Source

func (f Fallback) Quote(ctx context.Context, symbol string) (*Quote, error) {
	lastErr := fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	for _, src := range f {
		if src == nil {
			continue
		}
		q, err := src.Quote(ctx, symbol)
		if err == nil {
			return q, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}
