package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type TextSource string

const (
	SourceProfile     TextSource = "profile"
	SourceThesis      TextSource = "thesis"
	SourceRolePosting TextSource = "role_posting"
)

var ErrInvalidSource = errors.New("text source must be profile, thesis or role_posting")

func (s TextSource) Valid() bool {
	switch s {
	case SourceProfile, SourceThesis, SourceRolePosting:
		return true
	}
	return false
}

// Priority orders sources for GetLatest; lower wins.
func (s TextSource) Priority() int {
	if s == SourceRolePosting {
		return 1
	}
	return 0
}

type Vector []float32

type Embedding struct {
	UserID      uuid.UUID  `json:"user_id"`
	Source      TextSource `json:"text_source"`
	Vector      Vector     `json:"embedding"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Supersedes reports whether e should replace prev for the same key.
func (e Embedding) Supersedes(prev Embedding) bool {
	return e.GeneratedAt.After(prev.GeneratedAt)
}

// Latest picks the current embedding among a user's sources: profile/thesis
// over role_posting, then the newest.
func Latest(all []Embedding) (Embedding, bool) {
	var best Embedding
	found := false
	for _, e := range all {
		if !found {
			best, found = e, true
			continue
		}
		if e.Source.Priority() != best.Source.Priority() {
			if e.Source.Priority() < best.Source.Priority() {
				best = e
			}
			continue
		}
		if e.GeneratedAt.After(best.GeneratedAt) {
			best = e
		}
	}
	return best, found
}

// Repository persists one current vector per (user, source). A Put whose
// GeneratedAt is not newer than the stored one is ignored.
// Get and GetLatest return apperror.ErrNotFound when absent.
type Repository interface {
	Put(ctx context.Context, e Embedding) error
	Get(ctx context.Context, userID uuid.UUID, source TextSource) (*Embedding, error)
	GetLatest(ctx context.Context, userID uuid.UUID) (*Embedding, error)
	// GetLatestForUsers omits users without any embedding.
	GetLatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]Embedding, error)
}
