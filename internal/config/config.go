package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	// Secrets (from .env)
	APIKey          string
	WebhookURL      string
	AppName         string
	CORSAllowOrigin string

	// Storage
	StoreBackend string
	DBHost       string
	DBPort       int
	DBName       string
	DBUser       string
	DBPassword   string

	// API
	APIPort        int
	StreamInterval time.Duration

	// Logging
	LogLevel  string
	LogPretty bool

	// Quotes
	QuoteProviderURL string
	QuoteProviderKey string
	CoinGeckoURL     string
	QuoteTimeout     time.Duration
	QuoteCacheTTL    time.Duration
	StaticQuotes     map[string]float64

	// Risk Management
	MaxDailyTrades     int
	MaxPositionSizeUSD float64
	StopLossPercent    float64
	TakeProfitPercent  float64

	// Jobs
	BalanceRefreshSchedule string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	static, err := parseStaticQuotes(envStr("STATIC_QUOTES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		// Secrets
		APIKey:          envStr("API_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		AppName:         envStr("APP_NAME", "TrahnLedger"),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Storage
		StoreBackend: strings.ToLower(envStr("STORE_BACKEND", StorePostgres)),
		DBHost:       envStr("DB_HOST", "localhost"),
		DBPort:       envInt("DB_PORT", 5432),
		DBName:       envStr("DB_NAME", "trahn_ledger"),
		DBUser:       envStr("DB_USER", ""),
		DBPassword:   envStr("DB_PASSWORD", ""),

		// API
		APIPort:        envInt("API_PORT", 3001),
		StreamInterval: envDuration("STREAM_INTERVAL", 5*time.Second),

		// Logging
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogPretty: envBool("LOG_PRETTY", false),

		// Quotes
		QuoteProviderURL: envStr("QUOTE_PROVIDER_URL", ""),
		QuoteProviderKey: envStr("QUOTE_PROVIDER_KEY", ""),
		CoinGeckoURL:     envStr("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		QuoteTimeout:     envDuration("QUOTE_TIMEOUT", 5*time.Second),
		QuoteCacheTTL:    envDuration("QUOTE_CACHE_TTL", 60*time.Second),
		StaticQuotes:     static,

		// Risk Management
		MaxDailyTrades:     envInt("MAX_DAILY_TRADES", 0),
		MaxPositionSizeUSD: envFloat("MAX_POSITION_SIZE_USD", 0),
		StopLossPercent:    envFloat("STOP_LOSS_PERCENT", 0),
		TakeProfitPercent:  envFloat("TAKE_PROFIT_PERCENT", 0),

		// Jobs
		BalanceRefreshSchedule: envStr("BALANCE_REFRESH_SCHEDULE", "@every 5m"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	switch c.StoreBackend {
	case StorePostgres:
		if c.DBUser == "" {
			errs = append(errs, "DB_USER is required for the postgres store")
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreMemory, c.StoreBackend))
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT out of range: %d", c.APIPort))
	}
	if c.QuoteTimeout <= 0 {
		errs = append(errs, "QUOTE_TIMEOUT must be positive")
	}
	if c.StopLossPercent < 0 || c.TakeProfitPercent < 0 {
		errs = append(errs, "STOP_LOSS_PERCENT and TAKE_PROFIT_PERCENT must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Warnings lists settings that are legal but probably not what an operator wants.
func (c *Config) Warnings() []string {
	var warns []string
	if c.APIKey == "" {
		warns = append(warns, "API_KEY not set: REST API has no authentication")
	}
	if c.QuoteProviderURL == "" && len(c.StaticQuotes) == 0 {
		warns = append(warns, "QUOTE_PROVIDER_URL not set: equities will be valued at average cost")
	}
	if c.StoreBackend == StoreMemory {
		warns = append(warns, "STORE_BACKEND=memory: trade log is lost on restart")
	}
	return warns
}

func (c *Config) Log(log zerolog.Logger) {
	for _, w := range c.Warnings() {
		log.Warn().Msg(w)
	}
	log.Info().
		Str("store", c.StoreBackend).
		Str("db", fmt.Sprintf("%s:%d/%s", c.DBHost, c.DBPort, c.DBName)).
		Int("api_port", c.APIPort).
		Bool("auth", c.APIKey != "").
		Dur("quote_timeout", c.QuoteTimeout).
		Dur("quote_cache_ttl", c.QuoteCacheTTL).
		Int("static_quotes", len(c.StaticQuotes)).
		Int("max_daily_trades", c.MaxDailyTrades).
		Float64("max_position_usd", c.MaxPositionSizeUSD).
		Float64("stop_loss_pct", c.StopLossPercent).
		Float64("take_profit_pct", c.TakeProfitPercent).
		Str("balance_refresh", c.BalanceRefreshSchedule).
		Msg("Configuration loaded")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// parseStaticQuotes reads "BTC=9500,AAPL=180.5".
func parseStaticQuotes(raw string) (map[string]float64, error) {
	out := make(map[string]float64)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		sym, price, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("STATIC_QUOTES: malformed entry %q", pair)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
		if err != nil || p <= 0 {
			return nil, fmt.Errorf("STATIC_QUOTES: invalid price for %s", sym)
		}
		out[strings.ToUpper(strings.TrimSpace(sym))] = p
	}
	return out, nil
}
