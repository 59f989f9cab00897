package models

import "time"

// Account is the P&L baseline for a trade log. InitialBalance is fixed at
// creation; CurrentBalance is a cache refreshed from the log, never a source.
type Account struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Currency       string    `json:"currency"`
	InitialBalance float64   `json:"initialBalance"`
	CurrentBalance float64   `json:"currentBalance"`
	IsActive       bool      `json:"isActive"`
	StrategyName   *string   `json:"strategyName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
