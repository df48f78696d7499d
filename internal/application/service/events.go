package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MatchEventType string

const (
	MatchEventProposed MatchEventType = "match.proposed"
	MatchEventAccepted MatchEventType = "match.accepted"
	MatchEventRejected MatchEventType = "match.rejected"
)

type MatchEventPayload struct {
	EventType   MatchEventType `json:"event_type"`
	MatchID     uuid.UUID      `json:"match_id"`
	RequesterID uuid.UUID      `json:"requester_id"`
	TargetID    uuid.UUID      `json:"target_id"`
	JobID       *uuid.UUID     `json:"job_id,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// ReembedRequest asks the worker to regenerate an embedding that could not be
// produced on the write path.
type ReembedRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	Source      string    `json:"text_source"`
	RequestedAt time.Time `json:"requested_at"`
	Reason      string    `json:"reason"`
}

// EventPublisher delivers notifications to collaborators outside the engine.
type EventPublisher interface {
	PublishMatchEvent(ctx context.Context, payload MatchEventPayload) error
	PublishReembedRequest(ctx context.Context, req ReembedRequest) error
}
