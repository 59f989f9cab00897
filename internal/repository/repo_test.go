package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/kjannette/trahn-ledger/internal/ids"
	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/repository"
	"github.com/kjannette/trahn-ledger/internal/testutil"
)

// ---------- AccountRepo + TradeRepo ----------

func TestPostgresLedgerRoundTrip(t *testing.T) {
	pool := testutil.SetupPool(t)
	accounts := repository.NewAccountRepo(pool)
	trades := repository.NewTradeRepo(pool)
	ctx := context.Background()

	acc, err := accounts.Create(ctx, &models.Account{
		ID: ids.NewAccountID(), UserID: "integration", Currency: "USD",
		InitialBalance: 10000, IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acc.CurrentBalance != 10000 {
		t.Fatalf("current balance should start at initial, got %f", acc.CurrentBalance)
	}

	// Same timestamp for both: log order must follow the ULID tie breaker.
	now := time.Now().UTC().Truncate(time.Microsecond)
	first := &models.Trade{
		ID: ids.NewTradeID(now), AccountID: acc.ID, Symbol: "BTC", Side: models.SideBuy,
		Quantity: 1, Price: 9000, Kind: models.KindMarket, Status: models.StatusExecuted,
		CreatedAt: now, ExecutedAt: &now,
	}
	second := *first
	second.ID = ids.NewTradeID(now)
	second.Side = models.SideSell
	second.Quantity = 0.5
	second.Price = 9500

	for _, tr := range []*models.Trade{first, &second} {
		if _, err := trades.Append(ctx, tr); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	log, err := trades.ListExecuted(ctx, acc.ID)
	if err != nil {
		t.Fatalf("ListExecuted: %v", err)
	}
	if len(log) != 2 || log[0].ID != first.ID || log[1].ID != second.ID {
		t.Fatalf("unexpected log order: %+v", log)
	}
	t.Logf("Log: %s %s / %s %s", log[0].ID, log[0].Side, log[1].ID, log[1].Side)

	recent, err := trades.Recent(ctx, acc.ID, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != second.ID {
		t.Fatalf("expected newest trade first, got %+v", recent)
	}

	count, err := trades.CountToday(ctx, acc.ID)
	if err != nil {
		t.Fatalf("CountToday: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 trades today, got %d", count)
	}

	stats, err := trades.Stats(ctx, acc.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	t.Logf("Stats: total=%d buys=%d sells=%d", stats.TotalTrades, stats.BuyCount, stats.SellCount)

	if err := accounts.UpdateCachedBalance(ctx, acc.ID, 5750); err != nil {
		t.Fatalf("UpdateCachedBalance: %v", err)
	}
	got, err := accounts.Get(ctx, acc.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CurrentBalance != 5750 || got.InitialBalance != 10000 {
		t.Fatalf("balances: current=%f initial=%f", got.CurrentBalance, got.InitialBalance)
	}

	missing, err := accounts.Get(ctx, ids.NewAccountID())
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing account, got %v, %v", missing, err)
	}
}
