package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/itinera/core"
)

const defaultTaskTimeout = 5 * time.Second

// Fanout runs the enrichment providers concurrently for one turn.
// Each provider gets its own task and timeout on a shared worker pool;
// failures and timeouts drop that provider's contribution and nothing else.
type Fanout struct {
	weather    WeatherProvider
	prices     PriceProvider
	currency   CurrencyProvider
	safety     SafetyProvider
	activities ActivityProvider

	pool        *ants.Pool
	taskTimeout time.Duration
	logger      *slog.Logger
}

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout) error

// WithPoolSize sets the worker pool size for concurrent provider calls.
// Default is 4, one worker per provider kind.
func WithPoolSize(size int) FanoutOption {
	return func(f *Fanout) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if f.pool != nil {
			f.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		f.pool = pool
		return nil
	}
}

// WithTaskTimeout bounds each provider call.
// Default is 5 seconds.
func WithTaskTimeout(timeout time.Duration) FanoutOption {
	return func(f *Fanout) error {
		if timeout > 0 {
			f.taskTimeout = timeout
		}
		return nil
	}
}

// WithFanoutLogger sets a custom logger.
// Default is slog.Default().
func WithFanoutLogger(logger *slog.Logger) FanoutOption {
	return func(f *Fanout) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFanout creates the enrichment dispatcher. Any provider may be nil, in
// which case that enrichment is skipped entirely.
func NewFanout(weather WeatherProvider, prices PriceProvider, currency CurrencyProvider, safety SafetyProvider, activities ActivityProvider, opts ...FanoutOption) (*Fanout, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}

	f := &Fanout{
		weather:     weather,
		prices:      prices,
		currency:    currency,
		safety:      safety,
		activities:  activities,
		pool:        pool,
		taskTimeout: defaultTaskTimeout,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(f); optErr != nil {
			f.Release()
			return nil, optErr
		}
	}

	return f, nil
}

// Enrich dispatches one task per configured provider and joins on all of
// them; the activity provider runs after the join because its suggestions
// depend on the forecast. Cancelling ctx abandons the barrier early and
// returns whatever has been merged so far; stragglers still finish against
// their own timeouts but can no longer contribute.
func (f *Fanout) Enrich(ctx context.Context, req Request) core.Enrichment {
	var (
		mu  sync.Mutex
		out core.Enrichment
		wg  sync.WaitGroup
	)

	submit := func(name string, task func(taskCtx context.Context) error) {
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()

			taskCtx, cancel := context.WithTimeout(ctx, f.taskTimeout)
			defer cancel()

			if taskErr := task(taskCtx); taskErr != nil {
				f.logger.Warn("enrichment task failed", "task", name, "err", taskErr)
			}
		})
		if err != nil {
			wg.Done()
			f.logger.Warn("enrichment task not scheduled", "task", name, "err", err)
		}
	}

	if f.weather != nil && req.Destination != "" {
		submit("weather", func(taskCtx context.Context) error {
			days, err := f.weather.Forecast(taskCtx, req.Destination, req.CheckIn, req.CheckOut)
			if err != nil {
				return err
			}
			if len(days) > 0 {
				mu.Lock()
				out.Weather = days
				mu.Unlock()
			}
			return nil
		})
	}

	if f.prices != nil && len(req.Candidates) > 0 {
		submit("prices", func(taskCtx context.Context) error {
			quotes, err := f.prices.LivePrices(taskCtx, req.Candidates, req.CheckIn, req.CheckOut)
			if err != nil {
				return err
			}
			if len(quotes) > 0 {
				mu.Lock()
				out.LivePrice = quotes
				mu.Unlock()
			}
			return nil
		})
	}

	if f.currency != nil {
		submit("currency", func(taskCtx context.Context) error {
			rates, err := f.currency.Rates(taskCtx, "USD")
			if err != nil {
				return err
			}
			if len(rates) > 0 {
				mu.Lock()
				out.FxRates = rates
				mu.Unlock()
			}
			return nil
		})
	}

	if f.safety != nil && req.Destination != "" {
		submit("safety", func(taskCtx context.Context) error {
			info, err := f.safety.Advisory(taskCtx, req.Destination)
			if err != nil {
				return err
			}
			if info != nil {
				mu.Lock()
				out.Safety = info
				mu.Unlock()
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		f.logger.Warn("enrichment interrupted, returning partial results", "err", ctx.Err())
	}

	// Activities consume the forecast, so this step waits for the barrier
	// instead of joining the fan-out. Stragglers can still be writing after
	// a cancelled barrier, hence the locked reads and writes.
	if f.activities != nil && req.Destination != "" && ctx.Err() == nil {
		mu.Lock()
		forecast := out.Weather
		mu.Unlock()

		taskCtx, cancel := context.WithTimeout(ctx, f.taskTimeout)
		suggestions, err := f.activities.Suggest(taskCtx, req.Destination, req.CheckIn, req.CheckOut, req.PartySize, forecast)
		cancel()
		if err != nil {
			f.logger.Warn("enrichment task failed", "task", "activities", "err", err)
		} else if len(suggestions) > 0 {
			mu.Lock()
			out.Activities = suggestions
			mu.Unlock()
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return out
}

// Release releases the worker pool.
// The fanout should not be used after calling Release.
func (f *Fanout) Release() {
	if f.pool != nil {
		f.pool.Release()
	}
}
