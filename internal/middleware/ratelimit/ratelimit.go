// Package ratelimit throttles per-client request rates with a fixed-window
// counter. The bookkeeping UI is a single-operator tool; anything past the
// window limit is a runaway script or a scan, not a person.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// Config holds limiter settings.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60, CleanupInterval: 5 * time.Minute}
}

// Limiter counts requests per client IP in one-minute windows.
type Limiter struct {
	mu      sync.Mutex
	window  map[string]*windowCount
	denied  int64
	limit   int
	stop    chan struct{}
	stopped sync.Once
}

type windowCount struct {
	started  time.Time
	requests int
}

// Metrics is a snapshot of limiter counters.
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &Limiter{
		window: make(map[string]*windowCount),
		limit:  cfg.RequestsPerMinute,
		stop:   make(chan struct{}),
	}
	go rl.cleanupLoop(cfg.CleanupInterval)
	return rl
}

// Allow records a request from the client and reports whether it is within
// the window limit.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	wc, ok := rl.window[clientIP]
	if !ok || now.Sub(wc.started) > time.Minute {
		rl.window[clientIP] = &windowCount{started: now, requests: 1}
		return true
	}

	wc.requests++
	wc.started = now
	if wc.requests > rl.limit {
		rl.denied++
		return false
	}
	return true
}

// Middleware rejects over-limit requests before they reach the mux. A nil
// onLimit falls back to a plain 429.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.Allow(extractIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}

func (rl *Limiter) GetMetrics() Metrics {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return Metrics{TotalHits: rl.denied, ClientCount: int64(len(rl.window))}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.stopped.Do(func() { close(rl.stop) })
}

func (rl *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.dropStale()
		case <-rl.stop:
			return
		}
	}
}

// dropStale forgets clients idle past two full windows.
func (rl *Limiter) dropStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, wc := range rl.window {
		if wc.started.Before(cutoff) {
			delete(rl.window, ip)
		}
	}
}
