// Package refresh schedules background aggregation passes so the cached
// snapshot stays warm without waiting for a stale read.
package refresh

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/painel-economico/indicadores-server/internal/cache"
)

const (
	// baseInterval is the delay between successful refresh passes.
	baseInterval = 30 * time.Minute

	// retryInterval is the shorter delay scheduled after a pass that did
	// not update the snapshot.
	retryInterval = 5 * time.Minute

	// intervalJitter is the maximum random offset (±30 seconds) applied to
	// the base interval so replicas do not hit the providers in lockstep.
	intervalJitter = 30 * time.Second
)

// Refresher runs one refresh pass. Satisfied by cache.Cache.
type Refresher interface {
	Refresh(ctx context.Context) *cache.Result
}

// Coordinator manages the background refresh loop.
type Coordinator interface {
	// Start begins the refresh loop, running one pass immediately.
	// Blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator and waits for the loop to
	// exit.
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	refresher Refresher
	interval  time.Duration
	retry     time.Duration

	// Lifecycle management
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithInterval overrides the delay between successful passes.
func WithInterval(d time.Duration) Option {
	return func(c *defaultCoordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithRetryInterval overrides the delay scheduled after a failed pass.
func WithRetryInterval(d time.Duration) Option {
	return func(c *defaultCoordinator) {
		if d > 0 {
			c.retry = d
		}
	}
}

// New creates a coordinator driving the given refresher.
func New(refresher Refresher, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		refresher: refresher,
		interval:  baseInterval,
		retry:     retryInterval,
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins the background refresh loop
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background refresh coordinator",
		"interval", c.interval,
		"retry_interval", c.retry)

	// Create cancellable context for this coordinator
	coordCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	defer func() {
		close(c.done)
		slog.Info("Background refresh coordinator shutting down")
	}()

	// Warm the cache before the first tick
	ticker := time.NewTicker(c.runOnce(coordCtx))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Reschedule with fresh jitter after every pass
			ticker.Reset(c.runOnce(coordCtx))
		case <-coordCtx.Done():
			slog.Info("Refresh coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	if c.cancelFunc != nil {
		slog.Info("Stopping refresh coordinator")
		c.cancelFunc()
		// Wait for the loop to finish
		<-c.done
	}
	return nil
}

// runOnce runs one refresh pass and returns the delay until the next
// one: the jittered base interval after an update, the retry interval
// after anything else.
func (c *defaultCoordinator) runOnce(ctx context.Context) time.Duration {
	res := c.refresher.Refresh(ctx)
	if res == nil || res.Outcome != cache.OutcomeUpdated {
		outcome := "unknown"
		if res != nil {
			outcome = res.Outcome
		}
		slog.WarnContext(ctx, "Scheduled refresh did not update the snapshot",
			"outcome", outcome,
			"retry_in", c.retry)
		return c.retry
	}

	slog.DebugContext(ctx, "Scheduled refresh updated the snapshot",
		"duration", res.Duration,
		"next_in", c.interval)
	return jitteredInterval(c.interval)
}

// jitteredInterval applies a random ±intervalJitter offset to prevent
// synchronized polling across replicas. Intervals the jitter would
// dominate are returned unchanged.
func jitteredInterval(base time.Duration) time.Duration {
	if base <= 2*intervalJitter {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for scheduling jitter
	offset := time.Duration(rand.Int64N(int64(2*intervalJitter))) - intervalJitter
	return base + offset
}
