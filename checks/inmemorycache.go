package checks

import (
	"sync"
	"time"
)

// InMemoryChecksCache is an in-memory ChecksCache.
// Thread-safe for concurrent access.
type InMemoryChecksCache struct {
	checks   []*Check
	cachedAt time.Time
	config   CacheConfig
	mu       sync.RWMutex
	isValid  bool
	now      func() time.Time
}

// NewInMemoryChecksCache creates a new in-memory checks cache.
func NewInMemoryChecksCache(config CacheConfig) *InMemoryChecksCache {
	return &InMemoryChecksCache{
		config: config,
		now:    time.Now,
	}
}

// Get returns a copy of the cached checks, or nil if the cache is invalid
// or expired.
func (c *InMemoryChecksCache) Get() []*Check {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.fresh() {
		return nil
	}

	checksCopy := make([]*Check, len(c.checks))
	copy(checksCopy, c.checks)
	return checksCopy
}

// Set stores a copy of checks.
func (c *InMemoryChecksCache) Set(checks []*Check) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks = make([]*Check, len(checks))
	copy(c.checks, checks)
	c.cachedAt = c.now()
	c.isValid = true
}

// Invalidate clears the cache.
func (c *InMemoryChecksCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.checks = nil
}

// IsValid returns true if the cache holds unexpired data.
func (c *InMemoryChecksCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh()
}

// fresh must be called with mu held.
func (c *InMemoryChecksCache) fresh() bool {
	if !c.isValid {
		return false
	}
	if c.config.TTL > 0 {
		return c.now().Sub(c.cachedAt) <= c.config.TTL
	}
	return true
}
