package admission

import (
	"errors"
	"fmt"
)

var ErrAccountNotFound = errors.New("account not found")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type AccountInactiveError struct {
	AccountID string
}

func (e *AccountInactiveError) Error() string {
	return fmt.Sprintf("account %s is inactive", e.AccountID)
}

type InsufficientFundsError struct {
	Cash     float64
	Required float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: cash %.2f, required %.2f", e.Cash, e.Required)
}

type InsufficientHoldingsError struct {
	Symbol    string
	Owned     float64
	Requested float64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings of %s: owned %g, requested %g", e.Symbol, e.Owned, e.Requested)
}

type RiskLimitError struct {
	Rule   string
	Limit  float64
	Actual float64
	Reason string
}

func (e *RiskLimitError) Error() string { return e.Reason }

// IsRejection reports whether err is a business or validation rejection
// rather than an infrastructure failure.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	var (
		ve *ValidationError
		ie *AccountInactiveError
		fe *InsufficientFundsError
		he *InsufficientHoldingsError
		re *RiskLimitError
	)
	return errors.As(err, &ve) || errors.As(err, &ie) || errors.As(err, &fe) ||
		errors.As(err, &he) || errors.As(err, &re)
}
