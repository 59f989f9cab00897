package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTrades struct{}

func (failingTrades) ListExecuted(context.Context, string) ([]models.Trade, error) {
	return nil, errors.New("db down")
}

type countingPurger struct{ calls int }

func (c *countingPurger) Purge() int { c.calls++; return 2 }

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (f funcJob) Name() string                  { return f.name }
func (f funcJob) Run(ctx context.Context) error { return f.fn(ctx) }

func seed(t *testing.T) *repository.Store {
	t.Helper()
	store := repository.NewStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := store.Create(ctx, &models.Account{ID: id, InitialBalance: 1000, IsActive: true})
		require.NoError(t, err)
	}
	ts := time.Now()
	_, err := store.Append(ctx, &models.Trade{
		ID: "t1", AccountID: "a", Symbol: "AAPL", Side: models.SideBuy, Quantity: 2, Price: 100,
		Kind: models.KindMarket, Status: models.StatusExecuted, CreatedAt: ts, ExecutedAt: &ts,
	})
	require.NoError(t, err)
	return store
}

func TestBalanceRefresher_RewritesFromLog(t *testing.T) {
	store := seed(t)

	job := NewBalanceRefresher(store, store, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	a, _ := store.Get(context.Background(), "a")
	b, _ := store.Get(context.Background(), "b")
	assert.Equal(t, 800.0, a.CurrentBalance)
	assert.Equal(t, 1000.0, b.CurrentBalance)
}

func TestBalanceRefresher_ReportsFailures(t *testing.T) {
	store := seed(t)

	err := NewBalanceRefresher(store, failingTrades{}, zerolog.Nop()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCachePurge(t *testing.T) {
	p := &countingPurger{}
	require.NoError(t, NewCachePurge(p, zerolog.Nop()).Run(context.Background()))
	assert.Equal(t, 1, p.calls)
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("every now and then", funcJob{name: "x", fn: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", funcJob{name: "noop", fn: func(context.Context) error { return nil }}))

	s.Start()
	assert.True(t, s.Running())
	s.Start()
	s.Stop()
	assert.False(t, s.Running())
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("boom")

	err := s.RunNow(context.Background(), funcJob{name: "fail", fn: func(context.Context) error { return boom }})
	assert.ErrorIs(t, err, boom)

	ran := false
	err = s.RunNow(context.Background(), funcJob{name: "ok", fn: func(context.Context) error { ran = true; return nil }})
	require.NoError(t, err)
	assert.True(t, ran)
}
