package ratelimit

import (
	"context"
	"time"
)

// Sweepable is anything with idle entries to evict
type Sweepable interface {
	Sweep(now time.Time) int
}

// StartSweeper runs target.Sweep on every tick until ctx is cancelled. It is
// a detached background task owned by the caller's context, not by the
// limiter itself.
func StartSweeper(ctx context.Context, target Sweepable, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				target.Sweep(now)
			}
		}
	}()
}
