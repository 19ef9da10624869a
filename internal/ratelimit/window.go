package ratelimit

import (
	"sync"
	"time"
)

type windowBucket struct {
	count   int
	resetAt time.Time
}

// FixedWindow caps requests per key within a fixed time window. Used for the
// public tracking read, keyed by client address plus token fragment.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*windowBucket
	limit   int
	window  time.Duration
}

// NewFixedWindow creates a limiter allowing limit requests per window per key
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		buckets: make(map[string]*windowBucket),
		limit:   limit,
		window:  window,
	}
}

// Allow counts a request against key and reports whether it is within the
// limit for the current window
func (w *FixedWindow) Allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, ok := w.buckets[key]
	if !ok || now.After(b.resetAt) {
		w.buckets[key] = &windowBucket{count: 1, resetAt: now.Add(w.window)}
		return true
	}
	if b.count >= w.limit {
		return false
	}
	b.count++
	return true
}

// Sweep drops buckets whose window has already closed
func (w *FixedWindow) Sweep(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stale []string
	for key, b := range w.buckets {
		if now.After(b.resetAt) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		delete(w.buckets, key)
	}
	return len(stale)
}

// Len returns the number of tracked keys
func (w *FixedWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buckets)
}
