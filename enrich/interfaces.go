package enrich

import (
	"context"
	"time"

	"github.com/poiesic/itinera/core"
)

// WeatherProvider fetches a daily forecast for a destination and stay window.
// A (nil, nil) return means no forecast is available for the request.
// Implementations must be thread-safe for concurrent use.
type WeatherProvider interface {
	Forecast(ctx context.Context, destination string, checkIn, checkOut time.Time) ([]core.DayForecast, error)
}

// PriceProvider fetches or estimates nightly prices for candidates.
// The returned map is keyed by candidate id; candidates without a quote are
// simply absent from the map. A (nil, nil) return means no pricing at all.
// Implementations must be thread-safe for concurrent use.
type PriceProvider interface {
	LivePrices(ctx context.Context, candidates []*core.Candidate, checkIn, checkOut time.Time) (map[core.ID]core.PriceQuote, error)
}

// CurrencyProvider fetches exchange rates for a base currency.
// Implementations must be thread-safe for concurrent use.
type CurrencyProvider interface {
	Rates(ctx context.Context, base string) (map[string]float64, error)
}

// SafetyProvider fetches destination-country facts and travel tips.
// A (nil, nil) return means the destination could not be resolved.
// Implementations must be thread-safe for concurrent use.
type SafetyProvider interface {
	Advisory(ctx context.Context, destination string) (*core.SafetyInfo, error)
}

// ActivityProvider suggests activities for a destination and stay window.
// The forecast shapes the suggestions, so the fanout calls this provider
// only after the weather result has been joined. A (nil, nil) return means
// no suggestions are available for the request.
// Implementations must be thread-safe for concurrent use.
type ActivityProvider interface {
	Suggest(ctx context.Context, destination string, checkIn, checkOut time.Time, partySize int, forecast []core.DayForecast) ([]core.ActivitySuggestion, error)
}

// Request carries everything the enrichment providers need for one turn.
type Request struct {
	Destination string
	CheckIn     time.Time
	CheckOut    time.Time
	PartySize   int
	Candidates  []*core.Candidate
}
