package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/valuation"
	"github.com/rs/zerolog"
)

type AccountStore interface {
	ListActive(ctx context.Context) ([]models.Account, error)
	UpdateCachedBalance(ctx context.Context, id string, cash float64) error
}

type TradeLog interface {
	ListExecuted(ctx context.Context, accountID string) ([]models.Trade, error)
}

// BalanceRefresher rewrites each active account's cached balance column from
// a replay of its log. The column is for dashboards; nothing reads it back
// for admission or valuation.
type BalanceRefresher struct {
	accounts AccountStore
	trades   TradeLog
	log      zerolog.Logger
}

func NewBalanceRefresher(accounts AccountStore, trades TradeLog, log zerolog.Logger) *BalanceRefresher {
	return &BalanceRefresher{
		accounts: accounts,
		trades:   trades,
		log:      log.With().Str("job", "balance_refresh").Logger(),
	}
}

func (b *BalanceRefresher) Name() string { return "balance_refresh" }

// Run refreshes every account it can and reports the failures together.
func (b *BalanceRefresher) Run(ctx context.Context) error {
	accts, err := b.accounts.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	var errs []error
	updated := 0
	for _, a := range accts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		trades, err := b.trades.ListExecuted(ctx, a.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("account %s: %w", a.ID, err))
			continue
		}
		cash := valuation.Replay(a.InitialBalance, trades).Cash
		if cash == a.CurrentBalance {
			continue
		}
		if err := b.accounts.UpdateCachedBalance(ctx, a.ID, cash); err != nil {
			errs = append(errs, fmt.Errorf("account %s: %w", a.ID, err))
			continue
		}
		updated++
	}

	b.log.Info().Int("accounts", len(accts)).Int("updated", updated).Int("failed", len(errs)).Msg("Cached balances refreshed")
	return errors.Join(errs...)
}

type purger interface {
	Purge() int
}

// CachePurge drops expired quote cache entries.
type CachePurge struct {
	cache purger
	log   zerolog.Logger
}

func NewCachePurge(cache purger, log zerolog.Logger) *CachePurge {
	return &CachePurge{cache: cache, log: log.With().Str("job", "quote_cache_purge").Logger()}
}

func (c *CachePurge) Name() string { return "quote_cache_purge" }

func (c *CachePurge) Run(context.Context) error {
	if n := c.cache.Purge(); n > 0 {
		c.log.Debug().Int("purged", n).Msg("Expired quotes dropped")
	}
	return nil
}
