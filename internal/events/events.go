package events

import "context"

// StreamModeration carries moderation queue changes to admin dashboards.
const StreamModeration = "events:moderation"

// Event types
const (
	EventEditSubmitted = "edit_submitted"
	EventEditPublished = "edit_published"
	EventEditReviewed  = "edit_reviewed"

	EventClaimSubmitted = "claim_submitted"
	EventClaimReviewed  = "claim_reviewed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher discards events. Used when Redis is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
