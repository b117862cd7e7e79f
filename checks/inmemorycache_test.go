package checks

import (
	"testing"
	"time"
)

func TestInMemoryChecksCache(t *testing.T) {
	cache := NewInMemoryChecksCache(DefaultCacheConfig())

	if cache.Get() != nil || cache.IsValid() {
		t.Fatal("new cache should be empty")
	}

	checks := []*Check{{ID: "a"}, {ID: "b"}}
	cache.Set(checks)
	checks[0] = &Check{ID: "changed"}

	got := cache.Get()
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("Get() = %v, want a copy of [a b]", ids(got))
	}

	cache.Invalidate()
	if cache.Get() != nil || cache.IsValid() {
		t.Error("Invalidate() should clear the cache")
	}
}

func TestInMemoryChecksCacheTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewInMemoryChecksCache(CacheConfig{TTL: time.Minute})
	cache.now = func() time.Time { return now }

	cache.Set([]*Check{{ID: "a"}})

	now = now.Add(59 * time.Second)
	if !cache.IsValid() {
		t.Error("cache should be valid before TTL")
	}

	now = now.Add(2 * time.Second)
	if cache.IsValid() || cache.Get() != nil {
		t.Error("cache should expire after TTL")
	}
}

func TestEngineRefreshesCacheAfterMutation(t *testing.T) {
	engine, _ := NewEngine(NewInMemoryCheckStore())
	engine.AddCheck(&Check{ID: "1", Expression: `true`, Active: true})

	results, _ := engine.EvaluateAll(nil)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	engine.AddCheck(&Check{ID: "2", Expression: `true`, Active: true})
	results, _ = engine.EvaluateAll(nil)
	if len(results) != 2 {
		t.Errorf("cache should be invalidated on add, got %d results", len(results))
	}
}
