package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type cacheEntry struct {
	quote     Quote
	fetchedAt time.Time
}

// Cache wraps a Source and reuses a quote for ttl after it was fetched.
// Failed lookups are not cached.
type Cache struct {
	src Source
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(src Source, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		src:     src,
		ttl:     ttl,
		log:     log.With().Str("service", "quote_cache").Logger(),
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if c.ttl <= 0 {
		return c.src.Quote(ctx, symbol)
	}

	c.mu.Lock()
	e, ok := c.entries[symbol]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		q := e.quote
		c.log.Debug().Str("symbol", symbol).Dur("age", c.now().Sub(e.fetchedAt)).Msg("Quote cache hit")
		return &q, nil
	}

	q, err := c.src.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[symbol] = cacheEntry{quote: *q, fetchedAt: c.now()}
	c.mu.Unlock()

	return q, nil
}

// Purge drops every entry older than ttl and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for sym, e := range c.entries {
		if c.now().Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, sym)
			n++
		}
	}
	return n
}
