// Package app assembles the ledger's services from configuration. Both the
// server and ledgerctl build on it so they share one storage and quote setup.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/trahn-ledger/internal/admission"
	"github.com/kjannette/trahn-ledger/internal/config"
	"github.com/kjannette/trahn-ledger/internal/db"
	"github.com/kjannette/trahn-ledger/internal/notifications"
	"github.com/kjannette/trahn-ledger/internal/portfolio"
	"github.com/kjannette/trahn-ledger/internal/quotes"
	"github.com/kjannette/trahn-ledger/internal/repository"
	"github.com/kjannette/trahn-ledger/internal/risk"
	"github.com/kjannette/trahn-ledger/internal/valuation"
	"github.com/rs/zerolog"
)

type Options struct {
	// Migrate applies the embedded schema after connecting (postgres only).
	Migrate bool
}

type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Pool      *pgxpool.Pool // nil on the memory store
	Accounts  repository.AccountStore
	Trades    repository.TradeStore
	Quotes    *quotes.Cache
	Engine    *valuation.Engine
	Portfolio *portfolio.Service
	Admission *admission.Controller
	Notifier  *notifications.Sender
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Log: log}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		store := repository.NewStore()
		a.Accounts, a.Trades = store, store
		log.Info().Msg("Using in-memory store")

	default:
		log.Info().Str("host", cfg.DBHost).Int("port", cfg.DBPort).Str("db", cfg.DBName).Msg("Connecting to database")
		pool, err := db.Connect(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := db.TestConnection(pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		if opts.Migrate {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("Schema applied")
		}
		a.Pool = pool
		a.Accounts = repository.NewAccountRepo(pool)
		a.Trades = repository.NewTradeRepo(pool)
	}

	a.Quotes = NewQuoteSource(cfg, log)
	a.Engine = valuation.NewEngine(quotes.PriceOf(a.Quotes), cfg.QuoteTimeout, log)
	a.Portfolio = portfolio.NewService(a.Accounts, a.Trades, a.Engine)
	a.Notifier = notifications.NewSender(cfg.WebhookURL, cfg.AppName, log)

	deps := admission.Deps{
		Accounts: a.Accounts,
		Trades:   a.Trades,
		Engine:   a.Engine,
		Log:      log,
	}
	limits := risk.Limits{
		MaxDailyTrades:     cfg.MaxDailyTrades,
		MaxPositionSizeUSD: cfg.MaxPositionSizeUSD,
		StopLossPercent:    cfg.StopLossPercent,
		TakeProfitPercent:  cfg.TakeProfitPercent,
	}
	if limits != (risk.Limits{}) {
		deps.Guardian = risk.NewGuardian(limits, a.Trades)
	}
	if a.Notifier.Enabled() {
		deps.Notifier = a.Notifier
	}
	a.Admission = admission.NewController(deps)

	return a, nil
}

// NewQuoteSource routes crypto to CoinGecko and equities to the configured
// provider, each falling back to STATIC_QUOTES, behind a TTL cache.
func NewQuoteSource(cfg *config.Config, log zerolog.Logger) *quotes.Cache {
	static := quotes.NewStatic(cfg.StaticQuotes)

	crypto := quotes.Fallback{quotes.NewCoinGecko(cfg.CoinGeckoURL), static}
	equity := quotes.Fallback{static}
	if cfg.QuoteProviderURL != "" {
		equity = quotes.Fallback{quotes.NewHTTPProvider("equities", cfg.QuoteProviderURL, cfg.QuoteProviderKey), static}
	}

	return quotes.NewCache(&quotes.Router{Crypto: crypto, Equity: equity}, cfg.QuoteCacheTTL, log)
}

func (a *App) Close() {
	if a.Admission != nil {
		a.Admission.Wait()
	}
	if a.Pool != nil {
		a.Pool.Close()
		a.Log.Info().Msg("Connection pool closed")
	}
}
