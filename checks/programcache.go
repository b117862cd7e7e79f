package checks

import (
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultProgramCacheTTL  = 10 * time.Minute
	DefaultProgramCacheSize = 1024
)

type programItem struct {
	prog      cel.Program
	expiresAt time.Time
}

// ProgramCache keeps compiled ad-hoc programs keyed by expression text, with
// singleflight coalescing of concurrent compiles for the same expression.
type ProgramCache struct {
	mu    sync.RWMutex
	items map[string]programItem
	ttl   time.Duration
	max   int
	group singleflight.Group
}

// NewProgramCache creates a cache. ttl <= 0 disables expiry; max <= 0
// disables the size bound.
func NewProgramCache(ttl time.Duration, max int) *ProgramCache {
	return &ProgramCache{items: make(map[string]programItem), ttl: ttl, max: max}
}

// GetOrCompile returns the cached program for expression, compiling it on a
// miss. source is "cache" or "compiled".
func (c *ProgramCache) GetOrCompile(expression string, compile func(string) (cel.Program, error)) (cel.Program, string, error) {
	// fast path: cache hit
	c.mu.RLock()
	it, ok := c.items[expression]
	if ok && (c.ttl <= 0 || time.Now().Before(it.expiresAt)) {
		c.mu.RUnlock()
		return it.prog, "cache", nil
	}
	c.mu.RUnlock()

	res, err, _ := c.group.Do(expression, func() (interface{}, error) {
		prog, err := compile(expression)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.evictLocked()
		c.items[expression] = programItem{prog: prog, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return prog, nil
	})
	if err != nil {
		return nil, "", err
	}
	return res.(cel.Program), "compiled", nil
}

// evictLocked drops expired entries, then arbitrary ones, until there is
// room for one more.
func (c *ProgramCache) evictLocked() {
	if c.max <= 0 || len(c.items) < c.max {
		return
	}
	now := time.Now()
	if c.ttl > 0 {
		for k, it := range c.items {
			if now.After(it.expiresAt) {
				delete(c.items, k)
			}
		}
	}
	for k := range c.items {
		if len(c.items) < c.max {
			break
		}
		delete(c.items, k)
	}
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
