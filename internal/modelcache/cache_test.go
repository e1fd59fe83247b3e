package modelcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/metrics"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
)

func TestNewKey(t *testing.T) {
	a := source.NewIdentifier("a", "")
	b := source.NewIdentifier("b", "2020-01-01")

	assert.Equal(t, NewKey(phase.EffectiveModel, a, b), NewKey(phase.EffectiveModel, b, a))
	assert.Equal(t, NewKey(phase.EffectiveModel, a, a, b), NewKey(phase.EffectiveModel, a, b))
	assert.NotEqual(t, NewKey(phase.EffectiveModel, a, b), NewKey(phase.FullDeclaration, a, b))
	assert.Equal(t, Key("effective-model|a,b@2020-01-01"), NewKey(phase.EffectiveModel, b, a))
}

func TestGetOrBuild_ConcurrentCallersShareOneBuild(t *testing.T) {
	m := metrics.New()
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)
	c := New(m)

	var builds atomic.Int32
	release := make(chan struct{})
	want := model.NewBuilder(phase.EffectiveModel).Build()
	build := func(context.Context) (*model.Model, error) {
		builds.Add(1)
		<-release
		return want, nil
	}

	key := NewKey(phase.EffectiveModel, source.NewIdentifier("a", ""))
	const callers = 8
	var started, wg sync.WaitGroup
	results := make([]*model.Model, callers)
	started.Add(callers)
	wg.Add(callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			started.Done()
			got, err := c.GetOrBuild(context.Background(), key, build)
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	started.Wait()
	// Let the callers reach the in-flight build before it finishes.
	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, got := range results {
		assert.Same(t, want, got)
	}
	assert.Equal(t, 1, c.Len())

	got, err := c.GetOrBuild(context.Background(), key, build)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, int32(1), builds.Load())

	count, err := testutil.GatherAndCount(reg, "stmtreactor_model_cache_lookups_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestGetOrBuild_ErrorsAreNotCached(t *testing.T) {
	c := New(nil)
	key := NewKey(phase.EffectiveModel, source.NewIdentifier("a", ""))
	boom := errors.New("boom")

	_, err := c.GetOrBuild(context.Background(), key, func(context.Context) (*model.Model, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	_, ok := c.Get(key)
	assert.False(t, ok)

	want := model.NewBuilder(phase.EffectiveModel).Build()
	got, err := c.GetOrBuild(context.Background(), key, func(context.Context) (*model.Model, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func (c *Cache) waiters(key Key) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.flights[key]; ok {
		return f.waiters
	}
	return 0
}

func TestGetOrBuild_CancelledCallerLeavesOthersWaiting(t *testing.T) {
	c := New(nil)
	key := NewKey(phase.EffectiveModel, source.NewIdentifier("a", ""))
	want := model.NewBuilder(phase.EffectiveModel).Build()
	release := make(chan struct{})
	build := func(ctx context.Context) (*model.Model, error) {
		select {
		case <-release:
			return want, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrBuild(first, key, build)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return c.waiters(key) == 1 }, time.Second, time.Millisecond)

	type result struct {
		m   *model.Model
		err error
	}
	second := make(chan result, 1)
	go func() {
		m, err := c.GetOrBuild(context.Background(), key, build)
		second <- result{m, err}
	}()
	require.Eventually(t, func() bool { return c.waiters(key) == 2 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Same(t, want, got.m)
}

func TestGetOrBuild_LastWaiterCancelsBuild(t *testing.T) {
	c := New(nil)
	key := NewKey(phase.EffectiveModel, source.NewIdentifier("a", ""))
	buildCtx := make(chan context.Context, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrBuild(ctx, key, func(ctx context.Context) (*model.Model, error) {
			buildCtx <- ctx
			<-ctx.Done()
			return nil, ctx.Err()
		})
		done <- err
	}()
	inner := <-buildCtx
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Eventually(t, func() bool { return inner.Err() != nil }, time.Second, time.Millisecond)

	want := model.NewBuilder(phase.EffectiveModel).Build()
	got, err := c.GetOrBuild(context.Background(), key, func(context.Context) (*model.Model, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got, "a later caller starts a fresh build")
}
