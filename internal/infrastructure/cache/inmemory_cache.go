package cache

import (
	"context"
	"sync"
	"time"
)

// entry represents a stored value with expiration
type entry struct {
	value     string
	expiresAt time.Time
}

// InMemoryCache implements Cache using an in-memory map. It is suitable for
// single-instance deployments without Redis and for tests; expired entries
// are dropped lazily on read.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ready   bool
}

// NewInMemoryCache creates a new in-memory cache in the ready state.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]entry),
		ready:   true,
	}
}

// Ready reports the configured availability. Tests flip it with SetReady to
// exercise the pass-through path.
func (c *InMemoryCache) Ready(ctx context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// SetReady toggles the availability gate.
func (c *InMemoryCache) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// Get returns the cached value and true, or "" and false on a miss.
func (c *InMemoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set stores a value with the given TTL.
func (c *InMemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes the given keys.
func (c *InMemoryCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Len returns the number of live entries, counting expired ones that have not
// been collected yet.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ Cache = (*InMemoryCache)(nil)
