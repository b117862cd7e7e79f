package rate

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAllowBurstThenLimit(t *testing.T) {
	lm := NewLimiterMap(60, 3, time.Minute)
	defer lm.Stop()

	for i := 0; i < 3; i++ {
		if !lm.Allow("1.2.3.4") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if lm.Allow("1.2.3.4") {
		t.Error("request beyond burst should be limited")
	}
	if !lm.Allow("5.6.7.8") {
		t.Error("other clients should have their own budget")
	}
}

func TestEvictIdle(t *testing.T) {
	lm := NewLimiterMap(60, 1, time.Minute)
	defer lm.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lm.now = func() time.Time { return now }

	lm.Allow("old")
	now = now.Add(45 * time.Second)
	lm.Allow("new")

	now = now.Add(30 * time.Second)
	lm.evictIdle()

	if lm.Len() != 1 {
		t.Fatalf("Len() = %d after eviction, want 1", lm.Len())
	}
	// a forgotten client starts with a fresh burst
	if !lm.Allow("old") {
		t.Error("evicted client should be allowed again")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	lm := NewLimiterMap(60, 1, 10*time.Millisecond)
	lm.Stop()
	lm.Stop()
}

func TestForwardedHeaderDoesNotResetBudget(t *testing.T) {
	lm := NewLimiterMap(1, 1, time.Minute)
	defer lm.Stop()

	for i, xff := range []string{"198.51.100.1", "198.51.100.2"} {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		r.Header.Set("X-Forwarded-For", xff)

		allowed := lm.Allow(IPFromRequest(r))
		if want := i == 0; allowed != want {
			t.Errorf("request %d with X-Forwarded-For %s: allowed = %v, want %v", i+1, xff, allowed, want)
		}
	}
}

func TestIPFromRequest(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", "", "10.0.0.1"},
		{"no port", "10.0.0.1", "", "10.0.0.1"},
		{"forwarded header ignored", "10.0.0.1:5555", "203.0.113.9", "10.0.0.1"},
		{"forwarded chain ignored", "10.0.0.1:5555", "203.0.113.9, 10.0.0.2", "10.0.0.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := IPFromRequest(r); got != tc.want {
				t.Errorf("IPFromRequest() = %q, want %q", got, tc.want)
			}
		})
	}
}
