package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/user"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrRoleMismatch    = errors.New("profile update does not match the user's role")
	ErrInvalidStage    = errors.New("stage must be one of pre-seed, seed, series-a, series-b, series-c")
	ErrInvalidCheck    = errors.New("check_size_min must not exceed check_size_max")
)

// Profile is implemented by *Founder, *Talent and *Investor. A user has at
// most one profile and its variant always matches the user's role.
type Profile interface {
	Meta() *Base
	Role() user.Role
	// Source is the embedding text source the profile text is stored under.
	Source() embedding.TextSource
	RequiredFields() []string
	FieldPresent(name string) bool
	EmbeddingText() string
}

type Base struct {
	UserID            uuid.UUID `json:"user_id"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	CompletenessScore float64   `json:"completeness_score"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (b *Base) Meta() *Base { return b }

// New returns an empty profile of the variant that belongs to role.
func New(role user.Role, userID uuid.UUID, now time.Time) (Profile, error) {
	base := Base{UserID: userID, CreatedAt: now, UpdatedAt: now}
	switch role {
	case user.RoleFounder:
		return &Founder{Base: base}, nil
	case user.RoleTalent:
		return &Talent{Base: base}, nil
	case user.RoleInvestor:
		return &Investor{Base: base}, nil
	}
	return nil, user.ErrInvalidRole
}

// Completeness is the share of required fields that are present, in [0,100].
func Completeness(p Profile, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	filled := 0
	for _, f := range required {
		if p.FieldPresent(f) {
			filled++
		}
	}
	return 100 * float64(filled) / float64(len(required))
}

// Refresh recomputes the stored completeness score and returns it.
func Refresh(p Profile) float64 {
	score := Completeness(p, p.RequiredFields())
	p.Meta().CompletenessScore = score
	return score
}

// Patch is a partial update. Nil fields are left untouched.
type Patch interface {
	ApplyTo(p Profile) error
}

type Repository interface {
	// GetByUserID fails with apperror.ErrNotFound (cause ErrProfileNotFound)
	// when the user has never written a profile.
	GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
	// ListByRole returns the candidate pool for a role, ordered by user ID.
	ListByRole(ctx context.Context, role user.Role, minCompleteness float64, excludeUserID uuid.UUID) ([]Profile, error)
}

func textPresent(s string) bool { return strings.TrimSpace(s) != "" }

func joinText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
