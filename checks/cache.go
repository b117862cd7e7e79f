package checks

import "time"

// ChecksCache caches the active check list so evaluation does not hit the
// store on every request.
type ChecksCache interface {
	// Get retrieves cached checks, returns nil on a miss or expiry
	Get() []*Check

	// Set stores checks in the cache
	Set(checks []*Check)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if the cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior.
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// Zero means no expiration (manual invalidation only).
	TTL time.Duration
}

// DefaultCacheConfig invalidates on mutation only.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}
