package match

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/neplaunch/pkg/apperror"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Match is a directed connection request from Requester to Target.
type Match struct {
	ID          uuid.UUID  `json:"id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	TargetID    uuid.UUID  `json:"target_id"`
	JobID       *uuid.UUID `json:"job_id,omitempty"`
	// MatchScore is frozen when the request is made; nil when either side had
	// no embedding at that time.
	MatchScore  *float64   `json:"match_score,omitempty"`
	Status      Status     `json:"status"`
	Message     *string    `json:"message,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// Key identifies the (requester, target, job) triple that may hold at most
// one pending request.
type Key struct {
	RequesterID uuid.UUID
	TargetID    uuid.UUID
	JobID       uuid.UUID // uuid.Nil when no job
}

func (m *Match) Key() Key {
	k := Key{RequesterID: m.RequesterID, TargetID: m.TargetID}
	if m.JobID != nil {
		k.JobID = *m.JobID
	}
	return k
}

// New validates and builds a pending match.
func New(requesterID, targetID uuid.UUID, jobID *uuid.UUID, message *string, score *float64, now time.Time) (*Match, error) {
	if requesterID == targetID {
		return nil, apperror.NewSelfMatch(requesterID.String())
	}
	return &Match{
		ID:          uuid.New(),
		RequesterID: requesterID,
		TargetID:    targetID,
		JobID:       jobID,
		MatchScore:  score,
		Status:      StatusPending,
		Message:     message,
		Version:     1,
		CreatedAt:   now,
	}, nil
}

// Respond moves a pending match to ACCEPTED or REJECTED. Only the target may
// respond and terminal matches never change.
func (m *Match) Respond(responderID uuid.UUID, accept bool, now time.Time) error {
	if responderID != m.TargetID {
		return apperror.NewNotAuthorized("only the target of a match request can respond to it")
	}
	if m.Status.Terminal() {
		return apperror.NewAlreadyFinalized(m.ID.String(), string(m.Status))
	}
	if accept {
		m.Status = StatusAccepted
	} else {
		m.Status = StatusRejected
	}
	m.RespondedAt = &now
	m.Version++
	return nil
}

func (m *Match) Involves(userID uuid.UUID) bool {
	return m.RequesterID == userID || m.TargetID == userID
}

type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

type ListFilter struct {
	UserID    uuid.UUID
	Direction Direction
	Status    *Status
	Limit     int
	Offset    int
}

type Repository interface {
	// Create stores a new pending match and fails with ErrDuplicatePending when
	// the same key already has a pending match. Nothing is written on failure.
	Create(ctx context.Context, m *Match) error
	FindByID(ctx context.Context, id uuid.UUID) (*Match, error)
	// UpdateStatus persists m only if the stored version equals
	// expectedVersion, otherwise it fails with ErrAlreadyFinalized.
	UpdateStatus(ctx context.Context, m *Match, expectedVersion int) error
	List(ctx context.Context, filter ListFilter) ([]*Match, error)
}
