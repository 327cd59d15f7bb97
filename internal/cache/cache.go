// Package cache provides a process-wide TTL cache for upstream responses.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long entries live unless configured otherwise.
const DefaultTTL = 10 * time.Minute

// entry pairs a cached value with its expiry deadline.
// Entries never leave the cache; callers only ever see the value.
type entry struct {
	value     any
	expiresAt time.Time
}

// Config holds configuration for the cache.
type Config struct {
	// TTL applied to every Set (default: DefaultTTL).
	TTL time.Duration

	// Now is the clock used for expiry checks. Defaults to time.Now;
	// tests override it to control expiry without sleeping.
	Now func() time.Time
}

// Cache is a mutex-guarded key/value store with lazy per-entry expiration.
// There is no background sweeper and no capacity bound: expired entries are
// evicted when looked up, and the key space is assumed to stay bounded by
// query diversity. The missing eviction policy is a known scaling
// limitation of this service, not a feature.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// New creates an empty cache.
func New(cfg Config) *Cache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the value stored under key, if present and not expired.
// An expired entry is treated as absent and removed as a side effect.
func (c *Cache) Get(key string) (any, bool) {
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

// Set stores value under key, unconditionally replacing any existing entry
// and resetting its expiry to now + TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
