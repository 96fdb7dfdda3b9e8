package internal

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// throttler enforces a fixed-window request limit per client. Windows
// align to multiples of the configured duration, so every client's
// counter resets at the same instants. State lives in a mutexed map;
// stale windows are swept lazily on the next request after a window
// boundary.
type throttler struct {
	limit     int
	window    time.Duration
	now       func() time.Time
	mu        sync.Mutex
	clients   map[string]*clientWindow
	lastSweep time.Time
}

type clientWindow struct {
	start time.Time
	count int
}

// newThrottle wraps an endpoint handler with a per-client rate limit.
// Clients are keyed by the host part of RemoteAddr; deployments behind
// a proxy need a real-IP middleware upstream so RemoteAddr names the
// caller rather than the proxy. Every response carries the
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset
// headers; rejected requests get a 429 with Retry-After.
func newThrottle(limit int, window time.Duration) func(http.Handler) http.Handler {
	t := &throttler{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, reset := t.take(clientKey(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(t.limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				h.Set("Retry-After", strconv.Itoa(max(1, int(time.Until(reset).Seconds())+1)))
				h.Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(errorResponse{
					Error: http.StatusText(http.StatusTooManyRequests),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take consumes one slot from the client's current window. It reports
// whether the request may proceed, how many slots remain, and when the
// window resets.
func (t *throttler) take(key string) (bool, int, time.Time) {
	now := t.now()
	start := now.Truncate(t.window)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep(now, start)

	cw := t.clients[key]
	if cw == nil || !cw.start.Equal(start) {
		cw = &clientWindow{start: start}
		t.clients[key] = cw
	}
	reset := start.Add(t.window)
	if cw.count >= t.limit {
		return false, 0, reset
	}
	cw.count++
	return true, t.limit - cw.count, reset
}

// sweep drops windows that ended before the current one. At most one
// pass per window keeps the walk off the request hot path.
func (t *throttler) sweep(now, start time.Time) {
	if now.Sub(t.lastSweep) < t.window {
		return
	}
	t.lastSweep = now
	for key, cw := range t.clients {
		if !cw.start.Equal(start) {
			delete(t.clients, key)
		}
	}
}

// clientKey identifies the caller for rate limiting purposes.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
