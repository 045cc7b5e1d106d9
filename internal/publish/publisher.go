// Package publish is the durable handoff of normalized events to the
// event-streaming backend. The publisher blocks the calling request until
// the backend acknowledges the write — at-least-once, not exactly-once.
package publish

import (
	"context"

	"github.com/healthpulse/ingestion-gateway/internal/models"
)

// Publisher sends one normalized event to its destination and returns
// once the backend has acknowledged it. Implementations must be safe for
// concurrent callers; handlers share a single instance across requests.
type Publisher interface {
	Publish(ctx context.Context, event *models.HealthEvent) error
	Close() error
}
