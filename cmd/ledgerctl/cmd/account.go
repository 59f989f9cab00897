package cmd

import (
	"errors"
	"strings"

	"github.com/kjannette/trahn-ledger/internal/app"
	"github.com/kjannette/trahn-ledger/internal/ids"
	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage trading accounts",
}

var (
	acctUser     string
	acctBalance  float64
	acctCurrency string
	acctStrategy string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open an account with a fixed initial balance",
	Long: `Create opens a new active account. The initial balance is the baseline for
every later return calculation and cannot be changed afterwards.

Example:
  ledgerctl account create --user alice --balance 10000`,
	Args: cobra.NoArgs,
	RunE: runAccountCreate,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd)

	accountCreateCmd.Flags().StringVarP(&acctUser, "user", "u", "", "owning user id (required)")
	accountCreateCmd.Flags().Float64VarP(&acctBalance, "balance", "b", 10_000, "initial cash balance")
	accountCreateCmd.Flags().StringVar(&acctCurrency, "currency", "USD", "ISO currency code")
	accountCreateCmd.Flags().StringVar(&acctStrategy, "strategy", "", "optional strategy label")

	accountCreateCmd.MarkFlagRequired("user")
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	if !(acctBalance >= 0) {
		return errors.New("--balance must not be negative")
	}

	a, err := openApp(cmd.Context(), cmd, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	acct := &models.Account{
		ID:             ids.NewAccountID(),
		UserID:         acctUser,
		Currency:       strings.ToUpper(acctCurrency),
		InitialBalance: acctBalance,
		IsActive:       true,
	}
	if acctStrategy != "" {
		acct.StrategyName = &acctStrategy
	}

	created, err := a.Accounts.Create(cmd.Context(), acct)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), created)
}
