// Package cache holds the short-lived public snapshot cache. It is a read
// amplification shield, never an authority: entries expire within seconds
// and the store is consulted on every miss.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// SnapshotCache maps a full tracking token to the serialized sanitized
// snapshot last computed for it. Storing bytes rather than structs keeps
// repeated reads byte-identical.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
}

// NewSnapshotCache creates a cache with the given entry TTL
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get returns the cached payload for tok if it has not expired
func (c *SnapshotCache) Get(tok string, now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[tok]
	if !ok || now.After(e.expiresAt) {
		return nil, false
	}
	return e.payload, true
}

// Set stores payload for tok until the TTL elapses
func (c *SnapshotCache) Set(tok string, payload []byte, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tok] = entry{payload: payload, expiresAt: now.Add(c.ttl)}
}

// Sweep drops expired entries, snapshotting keys before deleting
func (c *SnapshotCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []string
	for tok, e := range c.entries {
		if now.After(e.expiresAt) {
			stale = append(stale, tok)
		}
	}
	for _, tok := range stale {
		delete(c.entries, tok)
	}
	return len(stale)
}

// Len returns the number of live entries
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
