package rate

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	last    time.Time
}

// LimiterMap provides per-client rate limiting. Clients idle for longer
// than ttl are forgotten by a reaper goroutine until Stop is called.
type LimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLimiterMap allows rpm requests per minute per client with the given
// burst, and starts the reaper.
func NewLimiterMap(rpm, burst int, ttl time.Duration) *LimiterMap {
	lm := &LimiterMap{
		limiters: make(map[string]*entry),
		limit:    rate.Every(time.Minute / time.Duration(rpm)),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go lm.reaper()
	return lm
}

func (l *LimiterMap) reaper() {
	t := time.NewTicker(l.ttl)
	defer t.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case <-t.C:
			l.evictIdle()
		}
	}
}

func (l *LimiterMap) evictIdle() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.limiters {
		if now.Sub(e.last) > l.ttl {
			delete(l.limiters, key)
		}
	}
}

// Stop stops the reaper. It is safe to call more than once.
func (l *LimiterMap) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LimiterMap) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.limiters[key]; ok {
		e.last = l.now()
		return e.limiter
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters[key] = &entry{limiter: lim, last: l.now()}
	return lim
}

// Allow reports whether a request from key may proceed now.
func (l *LimiterMap) Allow(key string) bool {
	return l.get(key).Allow()
}

// Len returns the number of tracked clients.
func (l *LimiterMap) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// IPFromRequest returns the host part of RemoteAddr. Forwarding headers are
// not read here: chi's RealIP middleware is the one place that trusts them.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
