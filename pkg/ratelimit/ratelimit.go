// Package ratelimit provides fixed-window attempt counters keyed by an arbitrary string.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision reports the outcome of one attempt.
type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// Limiter counts attempts per key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a process-local fixed-window counter. It is only correct for a
// single instance; use RedisLimiter when several instances share traffic.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	start time.Time
	count int
}

// NewMemoryLimiter builds a limiter allowing max attempts per window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*memoryWindow),
	}
}

// Allow records one attempt for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &memoryWindow{start: now}
		l.windows[key] = w
		l.evictLocked(now)
	}
	w.count++

	decision := Decision{Allowed: w.count <= l.max, Count: w.count}
	if !decision.Allowed {
		decision.RetryAfter = w.start.Add(l.window).Sub(now)
	}
	return decision, nil
}

func (l *MemoryLimiter) evictLocked(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
