package cmd

import (
	"github.com/kjannette/trahn-ledger/internal/app"
	"github.com/kjannette/trahn-ledger/internal/report"
	"github.com/spf13/cobra"
)

var recentLimit int

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <account-id>",
	Short: "Print an account's valuation, holdings and recent trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolio,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().IntVarP(&recentLimit, "recent", "n", 10, "number of recent trades to show")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cmd, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	id := args[0]

	v, err := a.Portfolio.Valuation(ctx, id)
	if err != nil {
		return err
	}
	recent, err := a.Portfolio.RecentTrades(ctx, id, recentLimit)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), struct {
		Snapshot report.SnapshotView  `json:"snapshot"`
		Holdings []report.HoldingView `json:"holdings"`
		Recent   []report.TradeView   `json:"recentTrades"`
	}{
		Snapshot: report.NewSnapshotView(v),
		Holdings: report.NewHoldingViews(v),
		Recent:   recent,
	})
}
