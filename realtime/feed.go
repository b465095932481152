// Package realtime propagates complaint changes to citizen read-model
// consumers. The feed carries no payload beyond the complaint id: subscribers
// re-derive the projection from the store, which stays the single source of
// truth. Delivery is best-effort with no ordering guarantee beyond "eventually
// reflects latest backend state".
package realtime

import (
	"context"
	"time"
)

// ChangeEvent announces that a complaint row changed.
type ChangeEvent struct {
	ComplaintID string    `json:"complaint_id"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Feed publishes and subscribes to complaint change events.
type Feed interface {
	PublishComplaintChanged(ctx context.Context, complaintID string) error
	// Subscribe returns a channel of change events and a cancel function that
	// releases the subscription and closes the channel.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, func(), error)
}

// NoopFeed drops every publish and delivers nothing. Used when Redis is not
// configured; reads still work because the projection is computed per request.
type NoopFeed struct{}

// PublishComplaintChanged discards the event.
func (NoopFeed) PublishComplaintChanged(context.Context, string) error { return nil }

// Subscribe returns a channel that never delivers.
func (NoopFeed) Subscribe(context.Context) (<-chan ChangeEvent, func(), error) {
	ch := make(chan ChangeEvent)
	return ch, func() { close(ch) }, nil
}
