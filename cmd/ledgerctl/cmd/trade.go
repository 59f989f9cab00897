package cmd

import (
	"fmt"
	"strconv"

	"github.com/kjannette/trahn-ledger/internal/admission"
	"github.com/kjannette/trahn-ledger/internal/app"
	"github.com/kjannette/trahn-ledger/internal/models"
	"github.com/kjannette/trahn-ledger/internal/report"
	"github.com/spf13/cobra"
)

var tradeKind string

var tradeCmd = &cobra.Command{
	Use:   "trade <account-id> <buy|sell> <symbol> <quantity> <price>",
	Short: "Submit a trade through admission control",
	Long: `Trade proposes a fill at the given price. It is appended to the account's log
only if the account can fund it (buy) or holds enough of the symbol (sell).

Example:
  ledgerctl trade 6f1c... buy BTC 0.25 61000`,
	Args: cobra.ExactArgs(5),
	RunE: runTrade,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.Flags().StringVar(&tradeKind, "kind", string(models.KindMarket), "order kind (market, limit)")
}

func runTrade(cmd *cobra.Command, args []string) error {
	qty, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	price, err := strconv.ParseFloat(args[4], 64)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	a, err := openApp(cmd.Context(), cmd, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.Admission.Submit(cmd.Context(), args[0], admission.Proposal{
		Symbol:   args[2],
		Side:     models.TradeSide(args[1]),
		Kind:     models.OrderKind(tradeKind),
		Quantity: qty,
		Price:    price,
	})
	if err != nil {
		if admission.IsRejection(err) {
			return fmt.Errorf("rejected: %w", err)
		}
		return err
	}
	return printJSON(cmd.OutOrStdout(), report.NewTradeView(*t))
}
