package job

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrTitleRequired = errors.New("job title is required")

// Posting is an open role published by a founder.
type Posting struct {
	ID             uuid.UUID `json:"id"`
	FounderID      uuid.UUID `json:"founder_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	RequiredSkills []string  `json:"required_skills"`
	Location       string    `json:"location"`
	JobType        string    `json:"job_type"`
	Compensation   string    `json:"compensation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Posting) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// RolePostingText concatenates every posting of a founder into the text the
// role_posting embedding is generated from.
func RolePostingText(postings []*Posting) string {
	var b strings.Builder
	for _, p := range postings {
		for _, s := range []string{p.Title, p.Description, p.Requirements, strings.Join(p.RequiredSkills, " ")} {
			if s = strings.TrimSpace(s); s != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

type Repository interface {
	Save(ctx context.Context, p *Posting) error
	Update(ctx context.Context, p *Posting) error
	Delete(ctx context.Context, id, founderID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Posting, error)
	ListByFounder(ctx context.Context, founderID uuid.UUID) ([]*Posting, error)
}
