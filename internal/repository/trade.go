package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/trahn-ledger/internal/models"
)

const tradeColumns = `id, account_id, symbol, side, quantity, price, order_kind, status,
	trading_day, created_at, executed_at`

type TradeRepo struct {
	pool *pgxpool.Pool
}

func NewTradeRepo(pool *pgxpool.Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

// Append inserts one trade. The row is never updated afterwards.
func (r *TradeRepo) Append(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	ts := t.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	td := TradingDay(ts)

	row := r.pool.QueryRow(ctx,
		`INSERT INTO trades
		 (id, account_id, symbol, side, quantity, price, order_kind, status,
		  trading_day, created_at, executed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING `+tradeColumns,
		t.ID, t.AccountID, t.Symbol, string(t.Side), t.Quantity, t.Price,
		string(t.Kind), string(t.Status), td, ts, t.ExecutedAt,
	)
	out, err := scanTrade(row)
	if err != nil {
		return nil, fmt.Errorf("append trade: %w", err)
	}
	return out, nil
}

// ListExecuted returns the executed log for one account in log order.
func (r *TradeRepo) ListExecuted(ctx context.Context, accountID string) ([]models.Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tradeColumns+` FROM trades
		 WHERE account_id = $1 AND status = 'executed'
		 ORDER BY created_at ASC, id ASC`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

// Recent returns the newest executed trades first.
func (r *TradeRepo) Recent(ctx context.Context, accountID string, limit int) ([]models.Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tradeColumns+` FROM trades
		 WHERE account_id = $1 AND status = 'executed'
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

func (r *TradeRepo) Stats(ctx context.Context, accountID string) (*models.TradeStats, error) {
	var s models.TradeStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(CASE WHEN side = 'buy' THEN 1 END),
			COUNT(CASE WHEN side = 'sell' THEN 1 END),
			SUM(quantity * price),
			AVG(price),
			MIN(created_at),
			MAX(created_at)
		 FROM trades WHERE account_id = $1 AND status = 'executed'`,
		accountID,
	).Scan(
		&s.TotalTrades, &s.BuyCount, &s.SellCount,
		&s.TotalVolume, &s.AvgPrice, &s.FirstTrade, &s.LastTrade,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *TradeRepo) CountToday(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trades WHERE account_id = $1 AND trading_day = $2`,
		accountID, TradingDayNow(),
	).Scan(&count)
	return count, err
}

func scanTrade(row scannable) (*models.Trade, error) {
	var t models.Trade
	var side, kind, status string
	var td time.Time
	err := row.Scan(
		&t.ID, &t.AccountID, &t.Symbol, &side, &t.Quantity, &t.Price, &kind, &status,
		&td, &t.CreatedAt, &t.ExecutedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Side = models.TradeSide(side)
	t.Kind = models.OrderKind(kind)
	t.Status = models.TradeStatus(status)
	t.TradingDay = td.Format("2006-01-02")
	return &t, nil
}

func collectTrades(rows rowsIter) ([]models.Trade, error) {
	var out []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
