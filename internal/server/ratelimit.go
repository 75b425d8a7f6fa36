package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window in-process limiter keyed by caller. Order
// creation is the only guarded route; a cross-instance limiter is out of
// scope for a single-process service.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string]*windowState
}

type windowState struct {
	count   int
	resetAt time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string]*windowState),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.hits[key]
	if !ok || now.After(state.resetAt) {
		r.hits[key] = &windowState{count: 1, resetAt: now.Add(r.window)}
		return true
	}
	if state.count >= r.limit {
		return false
	}
	state.count++
	return true
}
