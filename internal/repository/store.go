package repository

import (
	"context"

	"github.com/kjannette/trahn-ledger/internal/models"
)

// AccountStore is implemented by AccountRepo (Postgres) and Store (memory).
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	ListActive(ctx context.Context) ([]models.Account, error)
	UpdateCachedBalance(ctx context.Context, id string, cash float64) error
}

// TradeStore is implemented by TradeRepo (Postgres) and Store (memory).
type TradeStore interface {
	Append(ctx context.Context, t *models.Trade) (*models.Trade, error)
	ListExecuted(ctx context.Context, accountID string) ([]models.Trade, error)
	Recent(ctx context.Context, accountID string, limit int) ([]models.Trade, error)
	Stats(ctx context.Context, accountID string) (*models.TradeStats, error)
	CountToday(ctx context.Context, accountID string) (int, error)
}

var (
	_ AccountStore = (*AccountRepo)(nil)
	_ AccountStore = (*Store)(nil)
	_ TradeStore   = (*TradeRepo)(nil)
	_ TradeStore   = (*Store)(nil)
)
