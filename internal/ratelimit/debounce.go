// Package ratelimit holds the in-process submission and read limiters. Both
// are mutex-guarded maps swept periodically; under horizontal scaling they
// would need to move to a shared store.
package ratelimit

import (
	"sync"
	"time"
)

// Debouncer bounds how often a key may submit an accepted report. It tracks
// the last accepted time per key; Allow only checks, Accept consumes the
// slot. Keeping the two separate lets callers reject a report for other
// reasons without burning the driver's submission slot.
type Debouncer struct {
	mu          sync.Mutex
	lastAccept  map[string]time.Time
	minInterval time.Duration
	idleExpiry  time.Duration
}

// NewDebouncer creates a debouncer with the given minimum interval between
// accepted submissions per key
func NewDebouncer(minInterval, idleExpiry time.Duration) *Debouncer {
	return &Debouncer{
		lastAccept:  make(map[string]time.Time),
		minInterval: minInterval,
		idleExpiry:  idleExpiry,
	}
}

// Allow reports whether a submission for key would be accepted at now
func (d *Debouncer) Allow(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.lastAccept[key]
	if !ok {
		return true
	}
	return now.Sub(last) >= d.minInterval
}

// Accept records an accepted submission for key
func (d *Debouncer) Accept(key string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastAccept[key] = now
}

// Sweep evicts entries idle longer than the expiry. Keys are snapshotted
// before deletion so the map is never mutated while being iterated by a
// concurrent writer.
func (d *Debouncer) Sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	var stale []string
	for key, last := range d.lastAccept {
		if now.Sub(last) > d.idleExpiry {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		delete(d.lastAccept, key)
	}
	return len(stale)
}

// Len returns the number of tracked keys
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastAccept)
}
