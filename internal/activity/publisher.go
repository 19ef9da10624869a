// Package activity publishes stop transition events to interested
// consumers. Publishing is best-effort: the authoritative record is the
// activity_events table written in the ingestion transaction.
package activity

import (
	"context"

	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
)

// Publisher delivers activity events to an external consumer
type Publisher interface {
	Publish(ctx context.Context, ev models.ActivityEvent) error
	Close()
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

// Publish discards the event
func (NopPublisher) Publish(_ context.Context, _ models.ActivityEvent) error { return nil }

// Close is a no-op
func (NopPublisher) Close() {}
