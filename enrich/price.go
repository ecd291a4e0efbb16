package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/itinera/core"
)

// HeuristicPrices is a PriceProvider that estimates nightly rates from
// candidate signals instead of calling a live booking API. Quotes are marked
// Estimated so the response generator can phrase them as approximations.
type HeuristicPrices struct {
	currency string
	logger   *slog.Logger
}

var _ PriceProvider = (*HeuristicPrices)(nil)

// PriceOption configures a HeuristicPrices.
type PriceOption func(*HeuristicPrices)

// WithPriceCurrency sets the currency quotes are denominated in.
// Default is USD.
func WithPriceCurrency(currency string) PriceOption {
	return func(p *HeuristicPrices) {
		if currency != "" {
			p.currency = currency
		}
	}
}

// WithPriceLogger sets a custom logger.
// Default is slog.Default().
func WithPriceLogger(logger *slog.Logger) PriceOption {
	return func(p *HeuristicPrices) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewHeuristicPrices creates an estimating price provider.
func NewHeuristicPrices(opts ...PriceOption) *HeuristicPrices {
	p := &HeuristicPrices{
		currency: "USD",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LivePrices implements PriceProvider. The estimate scales with the
// candidate's rating, gets a small deterministic per-hotel spread, and a
// weekend stay surcharge. The same candidate always quotes the same price.
func (p *HeuristicPrices) LivePrices(ctx context.Context, candidates []*core.Candidate, checkIn, checkOut time.Time) (map[core.ID]core.PriceQuote, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	weekend := !checkIn.IsZero() &&
		(checkIn.Weekday() == time.Friday || checkIn.Weekday() == time.Saturday)

	quotes := make(map[core.ID]core.PriceQuote, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nightly := 60.0 + c.Rating*25.0
		nightly += float64(c.Id % 20) // stable per-hotel spread
		if weekend {
			nightly *= 1.15
		}

		quotes[c.Id] = core.PriceQuote{
			Nightly:   nightly,
			Currency:  p.currency,
			Source:    "estimate",
			Estimated: true,
		}
	}
	return quotes, nil
}
