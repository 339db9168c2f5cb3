// Package cache keeps the last-fetched collection per entity type and
// coordinates invalidation-driven refetches.
package cache

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/blockedby/recruiting-os/internal/schema"
)

// State is the read-state of a cached collection.
type State string

// Collection read states.
const (
	StateLoading State = "LOADING"
	StateReady   State = "READY"
	StateError   State = "ERROR"
)

// Snapshot is a point-in-time view of one entity's collection. Records
// are ordered by creation timestamp descending, as returned by the store.
type Snapshot struct {
	Records []schema.Record
	State   State
	Err     error
}

// Lister is the read side of the store.
type Lister interface {
	List(ctx context.Context, entity string) ([]schema.Record, error)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLimiter replaces the refetch rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Cache) { c.limiter = l }
}

// WithOnRefresh installs a hook invoked after a fetch cycle settles,
// with the resulting snapshot. Used to push refresh events to dashboards.
func WithOnRefresh(fn func(entity string, snap Snapshot)) Option {
	return func(c *Cache) { c.onRefresh = fn }
}

// Cache owns the per-entity collections. All invalidation goes through
// it; fetches are single-flighted per entity and a failed mutation never
// touches the cached records.
type Cache struct {
	mu        sync.Mutex
	store     Lister
	limiter   *rate.Limiter
	onRefresh func(string, Snapshot)
	entries   map[string]*entry
}

type entry struct {
	records  []schema.Record
	state    State
	err      error
	started  bool
	fetching bool
	dirty    bool
}

// New creates a cache over the given store. The default limiter allows
// bursts of refetches but keeps sustained load off the store.
func New(store Lister, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot for an entity, starting the initial
// fetch on first access. The snapshot may be stale while a refetch is in
// flight but is never corrupted by a failed mutation.
func (c *Cache) Get(entity string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(entity)
	if !e.started {
		c.startFetch(entity, e)
	}
	return snapshotOf(e)
}

// Invalidate marks the entity's collection stale and schedules exactly
// one refetch. Invalidations arriving while a fetch is in flight are
// coalesced: the running fetch goes one more round and newer results win.
func (c *Cache) Invalidate(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.ensure(entity)
	if e.fetching {
		e.dirty = true
		return
	}
	c.startFetch(entity, e)
}

// Refresh is the user-triggered refetch after a read error. Fetch
// failures are never retried automatically.
func (c *Cache) Refresh(entity string) {
	c.Invalidate(entity)
}

func (c *Cache) ensure(entity string) *entry {
	e, ok := c.entries[entity]
	if !ok {
		e = &entry{state: StateLoading}
		c.entries[entity] = e
	}
	return e
}

// startFetch must be called with the mutex held.
func (c *Cache) startFetch(entity string, e *entry) {
	e.started = true
	e.fetching = true
	go c.fetch(entity)
}

func (c *Cache) fetch(entity string) {
	for {
		_ = c.limiter.Wait(context.Background())

		records, err := c.store.List(context.Background(), entity)

		c.mu.Lock()
		e := c.entries[entity]
		if err != nil {
			e.state = StateError
			e.err = err
		} else {
			if records == nil {
				records = []schema.Record{}
			}
			e.records = records
			e.state = StateReady
			e.err = nil
		}
		if e.dirty {
			// another invalidation arrived mid-flight, go again
			e.dirty = false
			c.mu.Unlock()
			continue
		}
		e.fetching = false
		snap := snapshotOf(e)
		c.mu.Unlock()

		if c.onRefresh != nil {
			c.onRefresh(entity, snap)
		}
		return
	}
}

func snapshotOf(e *entry) Snapshot {
	return Snapshot{
		Records: e.records,
		State:   e.state,
		Err:     e.err,
	}
}
