package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// writes allowed per client IP per window
	rateLimitMax    = 60
	rateLimitWindow = time.Minute

	rateLimitSweepEvery = 5 * time.Minute
	rateLimitStaleAfter = 10 * time.Minute
)

// rateLimiter caps POST traffic per client IP with a fixed window counter.
type rateLimiter struct {
	mu           sync.Mutex
	windows      map[string]*rateWindow
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type rateWindow struct {
	seen  time.Time
	count int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows:     make(map[string]*rateWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimitSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCleanup:
			return
		}
	}
}

// sweep drops windows idle longer than rateLimitStaleAfter.
func (rl *rateLimiter) sweep() {
	cutoff := time.Now().Add(-rateLimitStaleAfter)

	rl.mu.Lock()
	for ip, w := range rl.windows {
		if w.seen.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
	rl.mu.Unlock()
}

// stop terminates the sweep goroutine. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow reports whether a write from clientIP fits within the current window.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.seen) > rateLimitWindow {
		rl.windows[clientIP] = &rateWindow{seen: now, count: 1}
		return true
	}

	w.count++
	w.seen = now
	if w.count > rateLimitMax {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
