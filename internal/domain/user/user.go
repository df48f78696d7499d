package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleFounder  Role = "FOUNDER"
	RoleTalent   Role = "TALENT"
	RoleInvestor Role = "INVESTOR"
)

var ErrInvalidRole = errors.New("role must be FOUNDER, TALENT or INVESTOR")

func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleTalent, RoleInvestor:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
