package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window per-key counter. Snapshot creation is
// the only write-heavy endpoint, so a coarse in-process limiter is
// enough.
type rateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

// Allow reports whether the key may perform another request in the
// current window. A non-positive limit disables limiting.
func (r *rateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}
