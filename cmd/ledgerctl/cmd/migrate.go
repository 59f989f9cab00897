package cmd

import (
	"errors"
	"fmt"

	"github.com/kjannette/trahn-ledger/internal/app"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd, app.Options{Migrate: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Pool == nil {
			return errors.New("migrate needs STORE_BACKEND=postgres")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
