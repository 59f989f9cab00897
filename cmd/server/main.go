package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/trahn-ledger/internal/api"
	"github.com/kjannette/trahn-ledger/internal/app"
	"github.com/kjannette/trahn-ledger/internal/config"
	"github.com/kjannette/trahn-ledger/internal/logger"
	"github.com/kjannette/trahn-ledger/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║      TRAHN Paper Trading Ledger      ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	cfg.Log(log)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{Migrate: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer a.Close()

	// 1. API server
	var pinger api.Pinger
	if a.Pool != nil {
		pinger = a.Pool
	}
	srv := api.NewServer(api.Options{
		Port:           cfg.APIPort,
		APIKey:         cfg.APIKey,
		CORSOrigin:     cfg.CORSAllowOrigin,
		StreamInterval: cfg.StreamInterval,
	}, a.Portfolio, a.Admission, pinger, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server error")
		}
	}()

	// 2. Background jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.BalanceRefreshSchedule, scheduler.NewBalanceRefresher(a.Accounts, a.Trades, log)); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.BalanceRefreshSchedule).Msg("Invalid balance refresh schedule")
	}
	if cfg.QuoteCacheTTL > 0 {
		if err := sched.AddJob("@every 10m", scheduler.NewCachePurge(a.Quotes, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register quote cache purge")
		}
	}
	sched.Start()

	log.Info().Msg("All services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API shutdown error")
	}
	log.Info().Msg("Shutdown complete")
}
