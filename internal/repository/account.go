package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/trahn-ledger/internal/models"
)

const accountColumns = `id, user_id, currency, initial_balance, current_balance,
	is_active, strategy_name, created_at, updated_at`

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create stores a new account. CurrentBalance starts at InitialBalance.
func (r *AccountRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts
		 (id, user_id, currency, initial_balance, current_balance, is_active, strategy_name)
		 VALUES ($1,$2,$3,$4,$4,$5,$6)
		 RETURNING `+accountColumns,
		a.ID, a.UserID, a.Currency, a.InitialBalance, a.IsActive, a.StrategyName,
	)
	out, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return out, nil
}

// Get returns nil, nil when the account does not exist.
func (r *AccountRepo) Get(ctx context.Context, id string) (*models.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepo) ListActive(ctx context.Context) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE is_active = true ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateCachedBalance overwrites the current_balance cache column.
// Callers must pass a value recomputed from the trade log.
func (r *AccountRepo) UpdateCachedBalance(ctx context.Context, id string, cash float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET current_balance = $1, updated_at = $2 WHERE id = $3`,
		cash, time.Now(), id,
	)
	return err
}

func scanAccount(row scannable) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.UserID, &a.Currency, &a.InitialBalance, &a.CurrentBalance,
		&a.IsActive, &a.StrategyName, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
