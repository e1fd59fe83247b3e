// Package modelcache shares finished models between builds that run over the
// same sources to the same phase. Concurrent requests for one key run a
// single build; failed builds are not cached.
package modelcache

import (
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/specialistvlad/stmtreactor/internal/metrics"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
)

// Key identifies a build by its source set and target phase.
type Key string

// NewKey derives the key of a build. The order of ids does not matter.
func NewKey(target phase.Phase, ids ...source.Identifier) Key {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	slices.Sort(names)
	names = slices.Compact(names)
	return Key(target.String() + "|" + strings.Join(names, ","))
}

// BuildFunc produces the model of a key on a cache miss.
type BuildFunc func(ctx context.Context) (*model.Model, error)

// Cache is safe for concurrent use.
type Cache struct {
	metrics *metrics.Metrics

	mu      sync.RWMutex
	models  map[Key]*model.Model
	flights map[Key]*flight

	group singleflight.Group
}

// flight is an in-progress build shared by its waiters. Its context is
// detached from every caller and cancelled once the last waiter has left.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New creates an empty cache. m may be nil.
func New(m *metrics.Metrics) *Cache {
	return &Cache{
		metrics: m,
		models:  make(map[Key]*model.Model),
		flights: make(map[Key]*flight),
	}
}

// Get returns the cached model of key.
func (c *Cache) Get(key Key) (*model.Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[key]
	return m, ok
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// GetOrBuild returns the cached model of key, building it with build if
// needed. Callers waiting on the same in-flight build share its result,
// including its error. The build runs with the values of the caller that
// started it but not its cancellation: a caller whose context ends stops
// waiting with ctx.Err(), and the build is cancelled only when no caller
// waits for it any more.
func (c *Cache) GetOrBuild(ctx context.Context, key Key, build BuildFunc) (*model.Model, error) {
	c.mu.Lock()
	if m, ok := c.models[key]; ok {
		c.mu.Unlock()
		c.metrics.CacheLookup("hit")
		return m, nil
	}
	f, ok := c.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++
	// DoChan runs the build on its own goroutine, so holding mu here is safe.
	ch := c.group.DoChan(string(key), func() (any, error) {
		m, err := build(f.ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err == nil {
			c.models[key] = m
		}
		if c.flights[key] == f {
			delete(c.flights, key)
		}
		return m, err
	})
	c.mu.Unlock()

	select {
	case res := <-ch:
		c.leave(key, f)
		if res.Shared {
			c.metrics.CacheLookup("shared")
		} else {
			c.metrics.CacheLookup("miss")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Model), nil
	case <-ctx.Done():
		c.leave(key, f)
		c.metrics.CacheLookup("abandoned")
		return nil, ctx.Err()
	}
}

func (c *Cache) leave(key Key, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[key] == f {
		delete(c.flights, key)
		// Later callers start a fresh build instead of joining the cancelled one.
		c.group.Forget(string(key))
	}
}
