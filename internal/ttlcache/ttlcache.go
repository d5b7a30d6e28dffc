// Package ttlcache implements a small time-bounded memoization cache keyed
// by string. It backs the health prober's liveness cache and is safe for
// concurrent use by multiple request goroutines.
package ttlcache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache. The zero value is not usable; build one
// with New.
type Cache struct {
	mu         sync.Mutex
	defaultTTL time.Duration
	entries    map[string]entry
	now        func() time.Time
}

// New creates a Cache with the given default entry lifetime, used whenever
// Set is called without a per-entry override.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry),
		now:        time.Now,
	}
}

// Get returns the value for key if present and not expired. An entry found
// to be expired is removed on access (lazy expiry) rather than left for a
// sweep. A health-cache entry at its expiry instant is treated as absent.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL. Use SetTTL to override
// the lifetime for one entry (e.g. a shorter TTL for a negative health
// result).
func (c *Cache) Set(key string, value interface{}) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit lifetime.
func (c *Cache) SetTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Invalidate removes key if present, reporting whether it existed.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// CleanupExpired removes every entry whose TTL has elapsed and returns the
// count removed. Callers may run this periodically; it is never required
// for correctness since Get also performs lazy expiry.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Size returns the current entry count, including not-yet-swept expired
// entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
