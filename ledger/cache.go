package ledger

import (
	"sync"
	"time"
)

// =============================================================================
// TTL CACHE - Explicit, clock-injected response cache
// =============================================================================

// TTLCache caches computed values for a fixed duration. It is an
// explicit object with an injected clock rather than a package-level
// map, so cached computations stay deterministic under test.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

// NewTTLCache creates a cache. A nil clock defaults to time.Now.
func NewTTLCache[V any](ttl time.Duration, clock func() time.Time) *TTLCache[V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTLCache[V]{
		ttl:     ttl,
		now:     clock,
		entries: make(map[string]cacheEntry[V]),
	}
}

// Get returns the cached value for key if it has not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Put stores a value under key, resetting its TTL.
func (c *TTLCache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, storedAt: c.now()}
}

// Invalidate removes a single key.
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes every entry.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry[V])
}
