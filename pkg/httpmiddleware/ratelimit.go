package httpmiddleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter throttles requests per client using a sliding window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time

	limit  int
	window time.Duration
	now    func() time.Time

	done chan struct{}
}

// NewRateLimiter allows at most limit requests per client within the
// given window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Start launches a background sweeper that drops clients with no recent
// requests. Stop the limiter with Close.
func (rl *RateLimiter) Start() {
	go func() {
		ticker := time.NewTicker(rl.window)
		defer ticker.Stop()
		for {
			select {
			case <-rl.done:
				return
			case <-ticker.C:
				rl.sweep()
			}
		}
	}()
}

// Close stops the background sweeper.
func (rl *RateLimiter) Close() {
	close(rl.done)
}

// Allow records a request for client and reports whether it is within the
// limit, together with the number of requests remaining in the window.
func (rl *RateLimiter) Allow(client string) (ok bool, remaining int) {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	stamps := rl.clients[client]
	live := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= rl.limit {
		rl.clients[client] = live
		return false, 0
	}

	live = append(live, now)
	rl.clients[client] = live
	return true, rl.limit - len(live)
}

func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for client, stamps := range rl.clients {
		idle := true
		for _, ts := range stamps {
			if ts.After(cutoff) {
				idle = false
				break
			}
		}
		if idle {
			delete(rl.clients, client)
		}
	}
}

// RateLimit returns a middleware that rejects clients exceeding the
// limiter with 429 and standard X-RateLimit headers. Clients are keyed by
// remote IP.
func RateLimit(rl *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining := rl.Allow(clientIP(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				h.Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":"rate_limited","message":"too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
