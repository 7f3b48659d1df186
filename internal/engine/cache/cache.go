// Package cache keeps generated units keyed by source and artifact so that
// unchanged declarations are not re-emitted.
package cache

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// SynthFunc produces a unit on a cache miss.
type SynthFunc func() (domain.GeneratedUnit, error)

// Cache is safe for concurrent use. Reads proceed in parallel; at most one
// synthesis runs per key and fingerprint, and an entry becomes visible only
// once its synthesis has returned successfully.
type Cache struct {
	mu      sync.RWMutex
	entries map[domain.CacheKey]*domain.CacheEntry
	dirty   map[domain.CacheKey]bool
	evicted map[domain.CacheKey]bool
	group   singleflight.Group

	store ports.CacheStore
	dir   string
}

// New creates an in-memory cache.
func New() *Cache {
	return &Cache{
		entries: make(map[domain.CacheKey]*domain.CacheEntry),
		dirty:   make(map[domain.CacheKey]bool),
		evicted: make(map[domain.CacheKey]bool),
	}
}

// NewPersistent creates a cache backed by store under dir.
// Nothing is read until Load is called.
func NewPersistent(store ports.CacheStore, dir string) *Cache {
	c := New()
	c.store = store
	c.dir = dir
	return c
}

type result struct {
	unit domain.GeneratedUnit
	hit  bool
}

// GetOrEmit returns the unit cached under key if it was produced from the same
// fingerprint. Otherwise it runs synth, commits the result and returns it.
// The boolean reports whether the unit came from the cache.
func (c *Cache) GetOrEmit(key domain.CacheKey, fingerprint string, synth SynthFunc) (domain.GeneratedUnit, bool, error) {
	if unit, ok := c.lookup(key, fingerprint); ok {
		return unit, true, nil
	}

	v, err, _ := c.group.Do(key.String()+"\x00"+fingerprint, func() (any, error) {
		if unit, ok := c.lookup(key, fingerprint); ok {
			return result{unit: unit, hit: true}, nil
		}

		unit, err := synth()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &domain.CacheEntry{Key: key, Fingerprint: fingerprint, Unit: unit}
		c.dirty[key] = true
		delete(c.evicted, key)
		c.mu.Unlock()

		return result{unit: unit}, nil
	})
	if err != nil {
		return domain.GeneratedUnit{}, false, err
	}

	r := v.(result)
	return r.unit, r.hit, nil
}

func (c *Cache) lookup(key domain.CacheKey, fingerprint string) (domain.GeneratedUnit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.Fingerprint != fingerprint {
		return domain.GeneratedUnit{}, false
	}
	return e.Unit, true
}

// Get returns the entry stored under key.
func (c *Cache) Get(key domain.CacheKey) (domain.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return *e, true
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns every key, sorted by their string form.
func (c *Cache) Keys() []domain.CacheKey {
	c.mu.RLock()
	keys := slices.Collect(maps.Keys(c.entries))
	c.mu.RUnlock()

	slices.SortFunc(keys, func(a, b domain.CacheKey) int {
		switch as, bs := a.String(), b.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})
	return keys
}

// Retain evicts every entry whose source is not in present and returns the
// number of evicted entries.
func (c *Cache) Retain(present map[domain.SourceID]bool) int {
	return c.evictWhere(func(k domain.CacheKey) bool {
		return !present[k.Source]
	})
}

// Prune evicts the entries of source whose key is not in keep. It is called
// for sources that were re-planned, so artifacts no longer planned go away.
func (c *Cache) Prune(source domain.SourceID, keep map[domain.CacheKey]bool) int {
	return c.evictWhere(func(k domain.CacheKey) bool {
		return k.Source == source && !keep[k]
	})
}

// Clear evicts every entry.
func (c *Cache) Clear() int {
	return c.evictWhere(func(domain.CacheKey) bool { return true })
}

func (c *Cache) evictWhere(match func(domain.CacheKey) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if !match(k) {
			continue
		}
		delete(c.entries, k)
		delete(c.dirty, k)
		c.evicted[k] = true
		n++
	}
	return n
}

// Load reads every persisted entry into memory. Entries already present win.
func (c *Cache) Load() error {
	if c.store == nil {
		return nil
	}
	entries, err := c.store.LoadAll(c.dir)
	if err != nil {
		return domain.Wrap(err, domain.ErrStoreReadFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range entries {
		e := entries[i]
		if _, exists := c.entries[e.Key]; !exists {
			c.entries[e.Key] = &e
		}
	}
	return nil
}

// Flush writes entries committed since the last flush and deletes evicted
// ones from the store. Keys that fail stay pending for the next flush.
func (c *Cache) Flush() error {
	if c.store == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error
	for k := range c.evicted {
		if err := c.store.Delete(c.dir, k); err != nil {
			errs = errors.Join(errs, domain.Annotate(err, "key", k.String()))
			continue
		}
		delete(c.evicted, k)
	}
	for k := range c.dirty {
		if err := c.store.Put(c.dir, c.entries[k]); err != nil {
			errs = errors.Join(errs, domain.Annotate(err, "key", k.String()))
			continue
		}
		delete(c.dirty, k)
	}
	return errs
}
