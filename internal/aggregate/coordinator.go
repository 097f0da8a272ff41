// Package aggregate fans out all configured indicator fetchers
// concurrently and settles them into fixed-order snapshots.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/sources"
)

// DefaultFetchTimeout bounds one provider call. A slow provider delays
// only its own slot inside the batch, never the whole process.
const DefaultFetchTimeout = 30 * time.Second

//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks -source=coordinator.go Coordinator,HistorySource

// Coordinator collects indicator data from every configured source.
type Coordinator interface {
	// CollectAll fetches every indicator concurrently and returns a
	// snapshot with exactly one record per configured fetcher, in
	// declaration order. It never fails: fetchers that error, panic or
	// time out yield unavailable placeholder records.
	CollectAll(ctx context.Context) indicator.Snapshot

	// CollectHistorical resolves the historical series for a slug.
	// Unknown slugs and provider failures both report ok=false, never
	// an error.
	CollectHistorical(ctx context.Context, slug string) (indicator.HistoricalSeries, bool)
}

// HistorySource resolves slugs to historical series. Implemented by
// sources.HistoryProvider.
type HistorySource interface {
	Series(ctx context.Context, slug string) (indicator.HistoricalSeries, error)
}

type defaultCoordinator struct {
	fetchers     []sources.Fetcher
	history      HistorySource
	fetchTimeout time.Duration
}

// Option configures the coordinator.
type Option func(*defaultCoordinator)

// WithFetchTimeout overrides the per-fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *defaultCoordinator) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// NewCoordinator creates a coordinator over the given fetchers.
// Fetcher order is snapshot order.
func NewCoordinator(fetchers []sources.Fetcher, history HistorySource, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		fetchers:     fetchers,
		history:      history,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *defaultCoordinator) CollectAll(ctx context.Context) indicator.Snapshot {
	start := time.Now()
	items := make([]indicator.Indicator, len(c.fetchers))

	var wg sync.WaitGroup
	for i, f := range c.fetchers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items[i] = c.collectOne(ctx, f)
		}()
	}
	wg.Wait()

	unavailable := 0
	for _, item := range items {
		if item.Value == indicator.ValueUnavailable {
			unavailable++
		}
	}
	slog.InfoContext(ctx, "Collected indicators",
		"total", len(items),
		"unavailable", unavailable,
		"duration", time.Since(start))

	return indicator.Snapshot{Items: items, Timestamp: time.Now()}
}

// collectOne runs a single fetcher under the per-fetch timeout. A
// fetcher that panics past its own boundary must not abort the batch,
// so the panic is swallowed into a placeholder record here.
func (c *defaultCoordinator) collectOne(ctx context.Context, f sources.Fetcher) (rec indicator.Indicator) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Indicator fetcher panicked",
				"indicator", f.Slug(),
				"panic", r)
			rec = indicator.Unavailable(f.Name(), indicator.ReasonFetchError)
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()
	return f.Fetch(fetchCtx)
}

func (c *defaultCoordinator) CollectHistorical(ctx context.Context, slug string) (indicator.HistoricalSeries, bool) {
	if c.history == nil {
		return indicator.HistoricalSeries{}, false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	series, err := c.history.Series(fetchCtx, slug)
	if err != nil {
		if errors.Is(err, sources.ErrNoHistory) {
			slog.DebugContext(ctx, "No historical series for indicator", "indicator", slug)
		} else {
			slog.WarnContext(ctx, "Historical fetch failed", "indicator", slug, "error", err)
		}
		return indicator.HistoricalSeries{}, false
	}
	return series, true
}
