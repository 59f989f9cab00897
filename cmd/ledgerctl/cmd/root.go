package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/kjannette/trahn-ledger/internal/app"
	"github.com/kjannette/trahn-ledger/internal/config"
	"github.com/kjannette/trahn-ledger/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate the paper-trading ledger from the command line",
	Long: `ledgerctl talks to the same store the ledger server uses (configured through
the environment or a .env file) to apply the schema, open accounts, submit
trades and print valuations.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// openApp loads configuration and assembles the services for one command.
func openApp(ctx context.Context, cmd *cobra.Command, opts app.Options) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(logger.Config{Level: level}, zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
	logger.SetGlobalLogger(log)

	if cfg.StoreBackend == config.StoreMemory {
		log.Warn().Msg("STORE_BACKEND=memory: nothing this command writes will outlive it")
	}
	return app.New(ctx, cfg, log, opts)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
