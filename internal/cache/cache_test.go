package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	aggregatemocks "github.com/painel-economico/indicadores-server/internal/aggregate/mocks"
	"github.com/painel-economico/indicadores-server/internal/indicator"
	storemocks "github.com/painel-economico/indicadores-server/internal/store/mocks"
)

var testBase = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func usableSnapshot(ts time.Time) indicator.Snapshot {
	return indicator.Snapshot{
		Items: []indicator.Indicator{
			{Name: "Taxa Selic", Value: "14.75%", Description: "Taxa básica de juros", Source: "BCB", Validated: true},
			{Name: "Dólar", Value: "R$ 5.43", Description: "Cotação de venda", Source: "BCB", Validated: true},
		},
		Timestamp: ts,
	}
}

func unavailableSnapshot(ts time.Time) indicator.Snapshot {
	return indicator.Snapshot{
		Items: []indicator.Indicator{
			indicator.Unavailable("Taxa Selic", indicator.ReasonFetchError),
			indicator.Unavailable("Dólar", indicator.ReasonFetchError),
		},
		Timestamp: ts,
	}
}

// newTestCache builds a cache over mocks with a controllable clock. The
// returned setter moves the clock; snapshots older than the TTL relative
// to it are considered stale.
func newTestCache(t *testing.T, coordinator *aggregatemocks.MockCoordinator, store *storemocks.MockStore, opts ...Option) (*defaultCache, func(time.Time)) {
	t.Helper()

	c := NewCache(coordinator, store, opts...).(*defaultCache)

	var mu sync.Mutex
	current := testBase
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	setNow := func(ts time.Time) {
		mu.Lock()
		defer mu.Unlock()
		current = ts
	}
	return c, setNow
}

func TestCache_ReadServesCachedWithinTTL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	snap := usableSnapshot(testBase)
	coordinator.EXPECT().CollectAll(gomock.Any()).Return(snap).Times(1)
	store.EXPECT().ReplaceAll(gomock.Any(), snap.Items).Return(nil).Times(1)

	c, setNow := newTestCache(t, coordinator, store)
	ctx := context.Background()

	first := c.Read(ctx)
	assert.Equal(t, snap.Items, first.Items)

	// Second read inside the TTL must not reach the coordinator again.
	setNow(testBase.Add(30 * time.Minute))
	second := c.Read(ctx)
	assert.Equal(t, snap.Items, second.Items)
	assert.Equal(t, first.Timestamp, second.Timestamp)
}

func TestCache_ReadRefreshesAfterExpiry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	later := testBase.Add(DefaultTTL + time.Minute)
	older := usableSnapshot(testBase)
	newer := usableSnapshot(later)
	newer.Items[0].Value = "15.00%"

	gomock.InOrder(
		coordinator.EXPECT().CollectAll(gomock.Any()).Return(older),
		coordinator.EXPECT().CollectAll(gomock.Any()).Return(newer),
	)
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	c, setNow := newTestCache(t, coordinator, store)
	ctx := context.Background()

	first := c.Read(ctx)
	assert.Equal(t, "14.75%", first.Items[0].Value)

	setNow(later)
	second := c.Read(ctx)
	assert.Equal(t, "15.00%", second.Items[0].Value)
	assert.Equal(t, later, second.Timestamp)
}

func TestCache_RefreshPersistsSnapshot(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	snap := usableSnapshot(testBase)
	coordinator.EXPECT().CollectAll(gomock.Any()).Return(snap)
	store.EXPECT().ReplaceAll(gomock.Any(), snap.Items).Return(nil)

	c, _ := newTestCache(t, coordinator, store)

	res := c.Refresh(context.Background())
	require.NotNil(t, res)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, snap.Items, res.Snapshot.Items)
	assert.Equal(t, snap.Items, c.Current().Items)
}

func TestCache_PersistFailureStillServes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	snap := usableSnapshot(testBase)
	coordinator.EXPECT().CollectAll(gomock.Any()).Return(snap)
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	c, _ := newTestCache(t, coordinator, store)

	// A store write failure loses durability only: the pass still counts
	// as an update and the snapshot still swaps in.
	res := c.Refresh(context.Background())
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, snap.Items, c.Current().Items)
}

func TestCache_FallbackChain(t *testing.T) {
	t.Parallel()

	t.Run("serves previous snapshot when pass yields nothing", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		coordinator := aggregatemocks.NewMockCoordinator(ctrl)
		store := storemocks.NewMockStore(ctrl)

		later := testBase.Add(DefaultTTL + time.Minute)
		gomock.InOrder(
			coordinator.EXPECT().CollectAll(gomock.Any()).Return(usableSnapshot(testBase)),
			coordinator.EXPECT().CollectAll(gomock.Any()).Return(unavailableSnapshot(later)),
		)
		store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		c, setNow := newTestCache(t, coordinator, store)
		ctx := context.Background()

		first := c.Read(ctx)
		require.Equal(t, "14.75%", first.Items[0].Value)

		setNow(later)
		res := c.Refresh(ctx)
		assert.Equal(t, OutcomeServedStale, res.Outcome)
		assert.Equal(t, first.Items, res.Snapshot.Items)
		assert.Equal(t, testBase, res.Snapshot.Timestamp, "stale snapshot keeps its original timestamp")
	})

	t.Run("serves persisted rows when nothing is in memory", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		coordinator := aggregatemocks.NewMockCoordinator(ctrl)
		store := storemocks.NewMockStore(ctrl)

		rows := usableSnapshot(time.Time{}).Items
		coordinator.EXPECT().CollectAll(gomock.Any()).Return(unavailableSnapshot(testBase)).Times(2)
		store.EXPECT().SelectAll(gomock.Any()).Return(rows, nil).Times(2)

		c, _ := newTestCache(t, coordinator, store)
		ctx := context.Background()

		res := c.Refresh(ctx)
		assert.Equal(t, OutcomeServedStore, res.Outcome)
		assert.Equal(t, rows, res.Snapshot.Items)
		assert.True(t, res.Snapshot.Timestamp.IsZero(), "store rows are never considered fresh")

		// Fallback rows are not cached: the next read retries the
		// providers instead of serving them from memory.
		read := c.Read(ctx)
		assert.Equal(t, rows, read.Items)
	})

	t.Run("degraded when store is empty too", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		coordinator := aggregatemocks.NewMockCoordinator(ctrl)
		store := storemocks.NewMockStore(ctrl)

		fetched := unavailableSnapshot(testBase)
		coordinator.EXPECT().CollectAll(gomock.Any()).Return(fetched)
		store.EXPECT().SelectAll(gomock.Any()).Return(nil, nil)

		c, _ := newTestCache(t, coordinator, store)

		res := c.Refresh(context.Background())
		assert.Equal(t, OutcomeDegraded, res.Outcome)
		assert.Equal(t, fetched.Items, res.Snapshot.Items)
		assert.True(t, c.Current().IsZero(), "placeholder passes must not be cached")
	})

	t.Run("store error degrades instead of failing", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		coordinator := aggregatemocks.NewMockCoordinator(ctrl)
		store := storemocks.NewMockStore(ctrl)

		coordinator.EXPECT().CollectAll(gomock.Any()).Return(unavailableSnapshot(testBase))
		store.EXPECT().SelectAll(gomock.Any()).Return(nil, errors.New("connection refused"))

		c, _ := newTestCache(t, coordinator, store)

		res := c.Refresh(context.Background())
		assert.Equal(t, OutcomeDegraded, res.Outcome)
		for _, item := range res.Snapshot.Items {
			assert.Equal(t, indicator.ValueUnavailable, item.Value)
		}
	})
}

func TestCache_ConcurrentRefreshesShareOnePass(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	snap := usableSnapshot(testBase)

	coordinator.EXPECT().CollectAll(gomock.Any()).DoAndReturn(func(context.Context) indicator.Snapshot {
		close(started)
		<-release
		return snap
	}).Times(1)
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	c, _ := newTestCache(t, coordinator, store)

	const callers = 5
	results := make([]*Result, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Refresh(context.Background())
		}()
	}

	<-started
	close(release)
	wg.Wait()

	for i, res := range results {
		require.NotNil(t, res, "caller %d got no result", i)
		assert.Equal(t, OutcomeUpdated, res.Outcome)
		assert.Equal(t, snap.Items, res.Snapshot.Items)
	}
}

func TestCache_ForceRefreshReturnsImmediately(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	release := make(chan struct{})
	persisted := make(chan struct{})
	snap := usableSnapshot(testBase)

	coordinator.EXPECT().CollectAll(gomock.Any()).DoAndReturn(func(context.Context) indicator.Snapshot {
		<-release
		return snap
	})
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, []indicator.Indicator) error {
		close(persisted)
		return nil
	})

	c, _ := newTestCache(t, coordinator, store)

	done := make(chan struct{})
	go func() {
		c.ForceRefresh(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ForceRefresh blocked on the in-flight pass")
	}

	close(release)
	select {
	case <-persisted:
	case <-time.After(2 * time.Second):
		t.Fatal("background pass never persisted")
	}
}

func TestCache_ForceRefreshSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	persisted := make(chan struct{})
	coordinator.EXPECT().CollectAll(gomock.Any()).DoAndReturn(func(ctx context.Context) indicator.Snapshot {
		assert.NoError(t, ctx.Err(), "background pass must not inherit caller cancellation")
		return usableSnapshot(testBase)
	})
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, []indicator.Indicator) error {
		close(persisted)
		return nil
	})

	c, _ := newTestCache(t, coordinator, store)

	// Cancel before the background goroutine runs, as a finished HTTP
	// request would.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.ForceRefresh(ctx)

	select {
	case <-persisted:
	case <-time.After(2 * time.Second):
		t.Fatal("background pass never persisted")
	}
}

func TestCache_ReplaceKeepsNewerSnapshot(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	c, _ := newTestCache(t, aggregatemocks.NewMockCoordinator(ctrl), storemocks.NewMockStore(ctrl))

	newer := usableSnapshot(testBase.Add(time.Minute))
	older := usableSnapshot(testBase)
	older.Items[0].Value = "stale"

	c.replace(newer)
	c.replace(older)

	assert.Equal(t, newer.Timestamp, c.Current().Timestamp)
	assert.Equal(t, "14.75%", c.Current().Items[0].Value)
}

func TestCache_Status(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	coordinator := aggregatemocks.NewMockCoordinator(ctrl)
	store := storemocks.NewMockStore(ctrl)

	snap := usableSnapshot(testBase)
	coordinator.EXPECT().CollectAll(gomock.Any()).Return(snap)
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil)

	c, setNow := newTestCache(t, coordinator, store)

	st := c.Status()
	assert.True(t, st.UpdatedAt.IsZero())
	assert.Zero(t, st.Count)
	assert.True(t, st.Expired, "empty cache reports expired")

	c.Refresh(context.Background())
	setNow(testBase.Add(10 * time.Minute))

	st = c.Status()
	assert.Equal(t, testBase, st.UpdatedAt)
	assert.Equal(t, 10*time.Minute, st.Age)
	assert.Equal(t, 2, st.Count)
	assert.False(t, st.Expired)

	setNow(testBase.Add(DefaultTTL))
	st = c.Status()
	assert.True(t, st.Expired)
}

func TestNewCache_Options(t *testing.T) {
	t.Parallel()

	t.Run("WithTTL overrides the default", func(t *testing.T) {
		t.Parallel()
		c := NewCache(nil, nil, WithTTL(5*time.Minute)).(*defaultCache)
		assert.Equal(t, 5*time.Minute, c.ttl)
	})

	t.Run("non-positive TTL is ignored", func(t *testing.T) {
		t.Parallel()
		c := NewCache(nil, nil, WithTTL(0)).(*defaultCache)
		assert.Equal(t, DefaultTTL, c.ttl)
	})

	t.Run("nil metric groups are accepted", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		coordinator := aggregatemocks.NewMockCoordinator(ctrl)
		store := storemocks.NewMockStore(ctrl)

		coordinator.EXPECT().CollectAll(gomock.Any()).Return(usableSnapshot(testBase))
		store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(nil)

		c := NewCache(coordinator, store, WithMetrics(nil, nil))
		res := c.Refresh(context.Background())
		assert.Equal(t, OutcomeUpdated, res.Outcome)
	})
}
