// Package portfolio answers read-side questions about an account by loading
// its log and running the valuation engine over it.
package portfolio

import (
	"context"
	"fmt"

	"github.com/kjannette/trahn-ledger/internal/admission"
	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/report"
	"github.com/kjannette/trahn-ledger/internal/valuation"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 1000
)

var ErrAccountNotFound = admission.ErrAccountNotFound

type AccountStore interface {
	Get(ctx context.Context, id string) (*models.Account, error)
}

type TradeStore interface {
	ListExecuted(ctx context.Context, accountID string) ([]models.Trade, error)
	Recent(ctx context.Context, accountID string, limit int) ([]models.Trade, error)
	Stats(ctx context.Context, accountID string) (*models.TradeStats, error)
}

type Service struct {
	accounts AccountStore
	trades   TradeStore
	engine   *valuation.Engine
}

func NewService(accounts AccountStore, trades TradeStore, engine *valuation.Engine) *Service {
	return &Service{accounts: accounts, trades: trades, engine: engine}
}

func (s *Service) load(ctx context.Context, accountID string) (*models.Account, []models.Trade, error) {
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return nil, nil, ErrAccountNotFound
	}
	trades, err := s.trades.ListExecuted(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("load trade log: %w", err)
	}
	return acct, trades, nil
}

func (s *Service) Valuation(ctx context.Context, accountID string) (valuation.Valuation, error) {
	acct, trades, err := s.load(ctx, accountID)
	if err != nil {
		return valuation.Valuation{}, err
	}
	return s.engine.Value(ctx, acct.InitialBalance, trades), nil
}

func (s *Service) Performance(ctx context.Context, accountID string) (valuation.AssetPerformance, error) {
	_, trades, err := s.load(ctx, accountID)
	if err != nil {
		return valuation.AssetPerformance{}, err
	}
	return s.engine.AssetPerformance(ctx, trades), nil
}

// RecentTrades clamps limit to [1, MaxRecentLimit]; 0 or less means the default.
func (s *Service) RecentTrades(ctx context.Context, accountID string, limit int) ([]report.TradeView, error) {
	if err := s.exists(ctx, accountID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	trades, err := s.trades.Recent(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent trades: %w", err)
	}
	return report.RecentTrades(trades, limit), nil
}

func (s *Service) Stats(ctx context.Context, accountID string) (*models.TradeStats, error) {
	if err := s.exists(ctx, accountID); err != nil {
		return nil, err
	}
	return s.trades.Stats(ctx, accountID)
}

func (s *Service) exists(ctx context.Context, accountID string) error {
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return ErrAccountNotFound
	}
	return nil
}
