// Package cache provides a small in-memory TTL cache keyed by string.
// It keeps repeated requests for the same year from re-fetching upstream
// sources on every call.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches how long a year's aggregated data stays fresh.
const DefaultTTL = 12 * time.Hour

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// Cache is a thread-safe TTL map. The zero value is not usable; construct
// with New.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
}

// New creates a cache with the given TTL; ttl <= 0 falls back to DefaultTTL.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
	}
}

// Get returns the cached value for key if present and not expired.
// Expired entries are removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Since(e.cachedAt) > c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, cachedAt: time.Now()}
}

// CleanExpired removes expired entries and reports how many were dropped.
func (c *Cache[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.cachedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries, expired or not.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
