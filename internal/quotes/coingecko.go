package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjannette/trahn-ledger/internal/httputil"
	"github.com/kjannette/trahn-ledger/internal/models"
)

const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

var coinGeckoIDs = map[string]string{
	"BTC": "bitcoin", "ETH": "ethereum", "SOL": "solana", "ADA": "cardano",
	"XRP": "ripple", "DOGE": "dogecoin", "DOT": "polkadot", "AVAX": "avalanche-2",
	"MATIC": "matic-network", "LTC": "litecoin", "LINK": "chainlink", "BNB": "binancecoin",
	"USDT": "tether", "USDC": "usd-coin", "TRX": "tron", "SHIB": "shiba-inu",
	"ATOM": "cosmos", "XLM": "stellar", "BCH": "bitcoin-cash", "UNI": "uniswap",
}

type CoinGecko struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCoinGecko(baseURL string) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGecko{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

func (c *CoinGecko) Quote(ctx context.Context, symbol string) (*Quote, error) {
	base := models.BaseSymbol(symbol)
	id, ok := coinGeckoIDs[base]
	if !ok {
		return nil, fmt.Errorf("coingecko %s: %w", symbol, ErrUnknownSymbol)
	}

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	q.Set("include_24hr_vol", "true")
	endpoint := c.baseURL + "/simple/price?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data map[string]struct {
		USD       float64 `json:"usd"`
		Change24h float64 `json:"usd_24h_change"`
		Vol24h    float64 `json:"usd_24h_vol"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	entry, ok := data[id]
	if !ok {
		return nil, fmt.Errorf("coingecko %s: %w", symbol, ErrUnknownSymbol)
	}
	if entry.USD <= 0 {
		return nil, fmt.Errorf("invalid price: %f", entry.USD)
	}

	return &Quote{
		Symbol:           symbol,
		CurrentPrice:     entry.USD,
		Change24hPercent: entry.Change24h,
		Volume24h:        entry.Vol24h,
		Source:           "coingecko",
		FetchedAt:        time.Now(),
	}, nil
}
