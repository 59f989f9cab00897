package portfolio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/repository"
	"github.com/kjannette/trahn-ledger/internal/valuation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := repository.NewStore()
	_, err := store.Create(context.Background(), &models.Account{ID: "acc", InitialBalance: 10000, IsActive: true})
	require.NoError(t, err)

	engine := valuation.NewEngine(func(_ context.Context, s string) (float64, error) {
		if s == "BTC" {
			return 9500, nil
		}
		return 0, fmt.Errorf("no quote for %s", s)
	}, time.Second, zerolog.Nop())
	return NewService(store, store, engine), store
}

func appendTrade(t *testing.T, store *repository.Store, i int, sym string, side models.TradeSide, qty, price float64) {
	t.Helper()
	ts := time.Date(2026, 5, 4, 15, i, 0, 0, time.UTC)
	_, err := store.Append(context.Background(), &models.Trade{
		ID: fmt.Sprintf("T%02d", i), AccountID: "acc", Symbol: sym, Side: side,
		Quantity: qty, Price: price, Kind: models.KindMarket, Status: models.StatusExecuted,
		CreatedAt: ts, ExecutedAt: &ts,
	})
	require.NoError(t, err)
}

func TestService_Valuation(t *testing.T) {
	svc, store := newService(t)
	appendTrade(t, store, 0, "BTC", models.SideBuy, 1, 9000)

	v, err := svc.Valuation(context.Background(), "acc")
	require.NoError(t, err)
	assert.Equal(t, 10500.0, v.Snapshot.TotalPortfolioValue)
	assert.Equal(t, 5.0, v.Snapshot.TotalProfitLossPercent)
}

func TestService_MissingAccount(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Valuation(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = svc.Performance(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = svc.RecentTrades(ctx, "missing", 5)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = svc.Stats(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestService_RecentTradesLimits(t *testing.T) {
	svc, store := newService(t)
	for i := 0; i < 15; i++ {
		appendTrade(t, store, i, "AAPL", models.SideBuy, 1, 10)
	}

	got, err := svc.RecentTrades(context.Background(), "acc", 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultRecentLimit)
	assert.Equal(t, "T14", got[0].ID)

	got, err = svc.RecentTrades(context.Background(), "acc", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestService_PerformanceAndStats(t *testing.T) {
	svc, store := newService(t)
	appendTrade(t, store, 0, "BTC", models.SideBuy, 1, 9000)
	appendTrade(t, store, 1, "AAPL", models.SideBuy, 2, 100)
	appendTrade(t, store, 2, "AAPL", models.SideSell, 1, 120)

	p, err := svc.Performance(context.Background(), "acc")
	require.NoError(t, err)
	require.Len(t, p.Assets, 2)
	assert.True(t, p.Estimated, "AAPL has no quote")
	assert.Equal(t, 9200.0, p.TotalInvested)

	st, err := svc.Stats(context.Background(), "acc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.TotalTrades)
	assert.Equal(t, int64(1), st.SellCount)
}
