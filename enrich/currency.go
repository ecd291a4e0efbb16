package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultRatesURL = "https://api.exchangerate-api.com/v4/latest"

	ratesCacheTTL = time.Hour
)

// staticRates is the offline fallback table, USD-based. Used whenever the
// live rate service is unreachable so currency context never blocks a turn.
var staticRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 147.0,
	"KRW": 1330.0,
	"CNY": 7.1,
	"AUD": 1.52,
	"CAD": 1.36,
	"CHF": 0.88,
	"THB": 34.5,
}

// ExchangeRateCurrency is a CurrencyProvider backed by exchangerate-api.com,
// with an hourly cache and a static fallback table.
type ExchangeRateCurrency struct {
	client   *http.Client
	ratesURL string
	rates    *cache.Cache
	logger   *slog.Logger
}

var _ CurrencyProvider = (*ExchangeRateCurrency)(nil)

// CurrencyOption configures an ExchangeRateCurrency.
type CurrencyOption func(*ExchangeRateCurrency)

// WithCurrencyHTTPClient sets the HTTP client used for API calls.
func WithCurrencyHTTPClient(client *http.Client) CurrencyOption {
	return func(c *ExchangeRateCurrency) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCurrencyBaseURL overrides the rates endpoint. Intended for tests.
func WithCurrencyBaseURL(ratesURL string) CurrencyOption {
	return func(c *ExchangeRateCurrency) {
		if ratesURL != "" {
			c.ratesURL = ratesURL
		}
	}
}

// WithCurrencyLogger sets a custom logger.
// Default is slog.Default().
func WithCurrencyLogger(logger *slog.Logger) CurrencyOption {
	return func(c *ExchangeRateCurrency) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewExchangeRateCurrency creates a currency provider backed by exchangerate-api.com.
func NewExchangeRateCurrency(opts ...CurrencyOption) *ExchangeRateCurrency {
	c := &ExchangeRateCurrency{
		client:   &http.Client{Timeout: 10 * time.Second},
		ratesURL: defaultRatesURL,
		rates:    cache.New(ratesCacheTTL, ratesCacheTTL),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rates implements CurrencyProvider. Live rates are cached per base currency
// for an hour; when the service is unreachable the static table is returned
// instead, so the caller always gets a usable answer.
func (c *ExchangeRateCurrency) Rates(ctx context.Context, base string) (map[string]float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}

	if cached, ok := c.rates.Get(base); ok {
		if rates, ok := cached.(map[string]float64); ok {
			return rates, nil
		}
	}

	live, err := c.fetch(ctx, base)
	if err != nil {
		c.logger.Warn("live exchange rates unavailable, using static table", "base", base, "err", err)
		return fallbackRates(base), nil
	}

	c.rates.Set(base, live, cache.DefaultExpiration)
	return live, nil
}

func (c *ExchangeRateCurrency) fetch(ctx context.Context, base string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ratesURL+"/"+base, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from rates api", ErrUnexpectedStatus, resp.StatusCode)
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table", ErrMalformedResponse)
	}
	return parsed.Rates, nil
}

// fallbackRates rebases the static USD table onto the requested currency.
func fallbackRates(base string) map[string]float64 {
	baseRate, ok := staticRates[base]
	if !ok {
		baseRate = 1.0
	}
	out := make(map[string]float64, len(staticRates))
	for currency, rate := range staticRates {
		out[currency] = rate / baseRate
	}
	return out
}
