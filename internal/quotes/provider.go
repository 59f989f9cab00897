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
)

// HTTPProvider reads quotes from a JSON endpoint at {baseURL}/{symbol}.
// The body carries price (or currentPrice), change24hPercent and volume24h.
type HTTPProvider struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewHTTPProvider(name, baseURL, apiKey string) *HTTPProvider {
	if name == "" {
		name = "http"
	}
	return &HTTPProvider{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    2 * time.Second,
		},
	}
}

func (p *HTTPProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := p.baseURL + "/" + url.PathEscape(symbol)

	resp, err := httputil.Do(ctx, p.httpClient, p.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s fetch %s: %w", p.name, symbol, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", p.name, symbol, ErrUnknownSymbol)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}

	var body struct {
		Price            float64 `json:"price"`
		CurrentPrice     float64 `json:"currentPrice"`
		Change24hPercent float64 `json:"change24hPercent"`
		Volume24h        float64 `json:"volume24h"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	price := body.CurrentPrice
	if price == 0 {
		price = body.Price
	}
	if price <= 0 {
		return nil, fmt.Errorf("invalid price for %s: %f", symbol, price)
	}

	return &Quote{
		Symbol:           symbol,
		CurrentPrice:     price,
		Change24hPercent: body.Change24hPercent,
		Volume24h:        body.Volume24h,
		Source:           p.name,
		FetchedAt:        time.Now(),
	}, nil
}
