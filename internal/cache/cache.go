// Package cache holds the in-memory indicator snapshot and decides when a
// new aggregation pass is needed. Reads are served from memory while the
// snapshot is fresh; stale reads trigger a refresh with a fallback chain
// (previous snapshot, then persisted rows) when providers return nothing
// usable.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/painel-economico/indicadores-server/internal/aggregate"
	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/otel"
	"github.com/painel-economico/indicadores-server/internal/telemetry"
)

// DefaultTTL is how long a snapshot is served without re-aggregating.
const DefaultTTL = time.Hour

// Refresh outcomes. They label the refresh log lines and the outcome
// attribute on refresh metrics.
const (
	// OutcomeUpdated means the pass produced usable data and the snapshot
	// was replaced.
	OutcomeUpdated = "updated"

	// OutcomeServedStale means the pass produced nothing usable and the
	// previous in-memory snapshot was served instead.
	OutcomeServedStale = "served-stale"

	// OutcomeServedStore means the pass produced nothing usable, no
	// snapshot was in memory, and persisted rows were served instead.
	OutcomeServedStore = "served-store"

	// OutcomeDegraded means every level of the fallback chain was empty
	// and the all-placeholder pass result was served.
	OutcomeDegraded = "degraded"
)

// flightKeyRefresh collapses concurrent refreshes into one pass.
const flightKeyRefresh = "refresh"

//go:generate mockgen -destination=mocks/mock_cache.go -package=mocks -source=cache.go Cache,SnapshotStore

// Cache serves indicator snapshots, refreshing them when stale.
type Cache interface {
	// Read returns the current snapshot, running a refresh first when the
	// cached one is stale or absent. It never fails: when providers and
	// every fallback are empty it returns the all-placeholder result.
	Read(ctx context.Context) indicator.Snapshot

	// Refresh runs one aggregation pass immediately, bypassing the TTL
	// gate. Concurrent callers share a single in-flight pass and receive
	// the same result.
	Refresh(ctx context.Context) *Result

	// ForceRefresh starts a refresh in the background and returns
	// immediately.
	ForceRefresh(ctx context.Context)

	// Current returns the cached snapshot without refreshing. The zero
	// snapshot means no pass has succeeded yet.
	Current() indicator.Snapshot

	// Status reports the cache freshness data served by the status
	// endpoint.
	Status() Status
}

// SnapshotStore is the slice of the storage layer the cache needs.
// Satisfied by store.Store.
type SnapshotStore interface {
	ReplaceAll(ctx context.Context, items []indicator.Indicator) error
	SelectAll(ctx context.Context) ([]indicator.Indicator, error)
}

// Result describes one refresh pass.
type Result struct {
	// Snapshot is what the pass decided to serve.
	Snapshot indicator.Snapshot

	// Outcome is one of the Outcome* constants.
	Outcome string

	// Duration is how long the pass took, shared by all callers that
	// joined it.
	Duration time.Duration
}

// Status reports the freshness of the cached snapshot.
type Status struct {
	// UpdatedAt is when the snapshot was produced. Zero when no pass has
	// succeeded yet.
	UpdatedAt time.Time

	// Age is how old the snapshot is. Zero when UpdatedAt is zero.
	Age time.Duration

	// Count is the number of cached indicator records.
	Count int

	// Expired reports whether the next read will trigger a refresh.
	Expired bool
}

type defaultCache struct {
	coordinator aggregate.Coordinator
	store       SnapshotStore
	ttl         time.Duration
	tracer      trace.Tracer

	refreshMetrics  *telemetry.RefreshMetrics
	snapshotMetrics *telemetry.SnapshotMetrics

	flight singleflight.Group

	// now is the clock; replaced in tests.
	now func() time.Time

	mu      sync.RWMutex
	current indicator.Snapshot
}

// Option configures the cache.
type Option func(*defaultCache)

// WithTTL overrides the snapshot time-to-live.
func WithTTL(d time.Duration) Option {
	return func(c *defaultCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithTracer enables tracing of refresh passes.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *defaultCache) {
		c.tracer = tracer
	}
}

// WithMetrics enables refresh and snapshot metrics. Nil groups are
// allowed and recorded as no-ops.
func WithMetrics(refresh *telemetry.RefreshMetrics, snapshot *telemetry.SnapshotMetrics) Option {
	return func(c *defaultCache) {
		c.refreshMetrics = refresh
		c.snapshotMetrics = snapshot
	}
}

var _ Cache = (*defaultCache)(nil)

// NewCache creates a cache over the given coordinator and store.
func NewCache(coordinator aggregate.Coordinator, store SnapshotStore, opts ...Option) Cache {
	c := &defaultCache{
		coordinator: coordinator,
		store:       store,
		ttl:         DefaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *defaultCache) Read(ctx context.Context) indicator.Snapshot {
	if snap, ok := c.freshSnapshot(); ok {
		return snap
	}
	return c.Refresh(ctx).Snapshot
}

func (c *defaultCache) Refresh(ctx context.Context) *Result {
	v, _, shared := c.flight.Do(flightKeyRefresh, func() (any, error) {
		// Detached from the initiating caller so its cancellation cannot
		// abort a pass other waiters share. Providers still bound the
		// duration through their per-fetch timeouts.
		return c.refresh(context.WithoutCancel(ctx)), nil
	})
	res := v.(*Result)
	if shared {
		slog.DebugContext(ctx, "Joined in-flight refresh", "outcome", res.Outcome)
	}
	return res
}

func (c *defaultCache) ForceRefresh(ctx context.Context) {
	bg := context.WithoutCancel(ctx)
	go func() {
		res := c.Refresh(bg)
		slog.InfoContext(bg, "Background refresh finished",
			"outcome", res.Outcome,
			"duration", res.Duration)
	}()
}

// refresh runs one aggregation pass and applies the fallback chain when
// the pass produces nothing usable. Fallback-served snapshots are not
// written back to the cache, so the next stale read attempts a full pass
// again.
func (c *defaultCache) refresh(ctx context.Context) *Result {
	ctx, span := otel.StartSpan(ctx, c.tracer, "cache.Refresh")
	defer span.End()

	start := time.Now()
	fetched := c.coordinator.CollectAll(ctx)

	res := &Result{Snapshot: fetched}
	switch {
	case !fetched.AllUnavailable():
		c.persist(ctx, fetched.Items)
		c.replace(fetched)
		res.Outcome = OutcomeUpdated

	default:
		slog.WarnContext(ctx, "Aggregation produced no usable data, serving fallback")
		res.Snapshot, res.Outcome = c.fallback(ctx, fetched)
	}
	res.Duration = time.Since(start)

	unavailable := 0
	for _, item := range res.Snapshot.Items {
		if item.Value == indicator.ValueUnavailable {
			unavailable++
		}
	}

	span.SetAttributes(
		otel.AttrCacheOutcome.String(res.Outcome),
		otel.AttrResultCount.Int(len(res.Snapshot.Items)),
		otel.AttrUnavailableCount.Int(unavailable),
	)
	c.refreshMetrics.RecordRefresh(ctx, res.Duration, res.Outcome)
	if res.Outcome == OutcomeUpdated {
		c.snapshotMetrics.RecordSnapshot(ctx, int64(len(res.Snapshot.Items)), int64(unavailable))
	}

	slog.InfoContext(ctx, "Refresh completed",
		"outcome", res.Outcome,
		"total", len(res.Snapshot.Items),
		"unavailable", unavailable,
		"duration", res.Duration)
	return res
}

// fallback picks what to serve when a pass yields only placeholders:
// the previous snapshot, then persisted rows, then the placeholder pass
// itself.
func (c *defaultCache) fallback(ctx context.Context, fetched indicator.Snapshot) (indicator.Snapshot, string) {
	if current := c.Current(); !current.IsZero() && len(current.Items) > 0 {
		return current, OutcomeServedStale
	}

	rows, err := c.store.SelectAll(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Store fallback failed", "error", err)
	}
	if len(rows) > 0 {
		// Zero timestamp: store rows are served but never considered
		// fresh, so the next read retries the providers.
		return indicator.Snapshot{Items: rows}, OutcomeServedStore
	}

	return fetched, OutcomeDegraded
}

// persist writes the snapshot through to the store. A write failure
// loses durability only; the refreshed snapshot still replaces the
// cached one.
func (c *defaultCache) persist(ctx context.Context, items []indicator.Indicator) {
	if err := c.store.ReplaceAll(ctx, items); err != nil {
		slog.WarnContext(ctx, "Failed to persist snapshot", "error", err)
	}
}

// replace swaps the cached snapshot. An older snapshot never overwrites
// a newer one, so late-finishing passes cannot roll the cache back.
func (c *defaultCache) replace(next indicator.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current.Timestamp.IsZero() && next.Timestamp.Before(c.current.Timestamp) {
		return
	}
	c.current = next
}

func (c *defaultCache) Current() indicator.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *defaultCache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		UpdatedAt: c.current.Timestamp,
		Count:     len(c.current.Items),
	}
	if c.current.Timestamp.IsZero() {
		st.Expired = true
		return st
	}
	st.Age = c.now().Sub(c.current.Timestamp)
	st.Expired = st.Age >= c.ttl
	return st
}

// freshSnapshot returns the cached snapshot when it is still inside its
// TTL. Fallback-served snapshots carry a zero timestamp and never count
// as fresh.
func (c *defaultCache) freshSnapshot() (indicator.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current.Timestamp.IsZero() || len(c.current.Items) == 0 {
		return indicator.Snapshot{}, false
	}
	if c.now().Sub(c.current.Timestamp) >= c.ttl {
		return indicator.Snapshot{}, false
	}
	return c.current, true
}
