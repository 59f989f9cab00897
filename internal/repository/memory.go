package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kjannette/trahn-ledger/internal/models"
)

// Store is an in-process account and trade log, used with STORE_BACKEND=memory
// and as the fake in tests. It honours the same ordering contract as the
// Postgres repos: executed trades ascend by (CreatedAt, ID).
type Store struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	trades   map[string][]models.Trade
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		trades:   make(map[string][]models.Trade),
	}
}

func (s *Store) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; ok {
		return nil, fmt.Errorf("create account: duplicate id %s", a.ID)
	}
	now := time.Now()
	out := *a
	out.CurrentBalance = a.InitialBalance
	out.CreatedAt, out.UpdatedAt = now, now
	s.accounts[a.ID] = out
	return &out, nil
}

func (s *Store) Get(_ context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) ListActive(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Account
	for _, a := range s.accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateCachedBalance(_ context.Context, id string, cash float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("update balance: account %s not found", id)
	}
	a.CurrentBalance = cash
	a.UpdatedAt = time.Now()
	s.accounts[id] = a
	return nil
}

// SetActive flips the active flag; account provisioning owns this in production.
func (s *Store) SetActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		a.IsActive = active
		s.accounts[id] = a
	}
}

func (s *Store) Append(_ context.Context, t *models.Trade) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[t.AccountID]; !ok {
		return nil, fmt.Errorf("append trade: account %s not found", t.AccountID)
	}
	out := *t
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	out.TradingDay = TradingDay(out.CreatedAt)
	s.trades[t.AccountID] = append(s.trades[t.AccountID], out)
	return &out, nil
}

func (s *Store) ListExecuted(_ context.Context, accountID string) ([]models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Trade
	for _, t := range s.trades[accountID] {
		if t.IsExecuted() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return logLess(out[i], out[j]) })
	return out, nil
}

func (s *Store) Recent(ctx context.Context, accountID string, limit int) ([]models.Trade, error) {
	all, _ := s.ListExecuted(ctx, accountID)
	out := make([]models.Trade, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context, accountID string) (*models.TradeStats, error) {
	all, _ := s.ListExecuted(ctx, accountID)

	var st models.TradeStats
	if len(all) == 0 {
		return &st, nil
	}
	var volume, priceSum float64
	for _, t := range all {
		st.TotalTrades++
		if t.Side == models.SideBuy {
			st.BuyCount++
		} else {
			st.SellCount++
		}
		volume += t.Total()
		priceSum += t.Price
	}
	avg := priceSum / float64(len(all))
	first, last := all[0].CreatedAt, all[len(all)-1].CreatedAt
	st.TotalVolume, st.AvgPrice = &volume, &avg
	st.FirstTrade, st.LastTrade = &first, &last
	return &st, nil
}

func (s *Store) CountToday(_ context.Context, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := TradingDayNow()
	n := 0
	for _, t := range s.trades[accountID] {
		if t.TradingDay == today {
			n++
		}
	}
	return n, nil
}

func logLess(a, b models.Trade) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
