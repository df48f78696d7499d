package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/neplaunch/adapters/persistence/memory"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/auth"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	register := NewRegisterUseCase(repo, jwtSvc, logger.NewNop())
	login := NewLoginUseCase(repo, jwtSvc, logger.NewNop())

	reg, err := register.Execute(ctx, RegisterInput{Email: " Founder@Example.com ", Password: "long-enough", Role: "founder"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleFounder, reg.User.Role)
	assert.Equal(t, "founder@example.com", reg.User.Email)

	out, err := login.Execute(ctx, LoginInput{Email: "founder@example.com", Password: "long-enough"})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, "FOUNDER", claims.Role)

	_, err = login.Execute(ctx, LoginInput{Email: "founder@example.com", Password: "wrong-password"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	_, err = login.Execute(ctx, LoginInput{Email: "nobody@example.com", Password: "long-enough"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepo()
	register := NewRegisterUseCase(repo, auth.NewJWTService("secret", time.Hour), logger.NewNop())

	_, err := register.Execute(ctx, RegisterInput{Email: "a@example.com", Password: "long-enough", Role: "ADMIN"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	_, err = register.Execute(ctx, RegisterInput{Email: "not-an-email", Password: "long-enough", Role: "TALENT"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	_, err = register.Execute(ctx, RegisterInput{Email: "a@example.com", Password: "short", Role: "TALENT"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	assert.Contains(t, err.Error(), "password must be at least 8 characters")

	_, err = register.Execute(ctx, RegisterInput{Email: "   ", Password: "long-enough", Role: " talent "})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	assert.Contains(t, err.Error(), "email failed required")

	_, err = register.Execute(ctx, RegisterInput{Email: "a@example.com", Password: "long-enough", Role: "ADMIN"})
	assert.Contains(t, err.Error(), "role must be one of FOUNDER TALENT INVESTOR")

	_, err = register.Execute(ctx, RegisterInput{Email: "a@example.com", Password: "long-enough", Role: "TALENT"})
	require.NoError(t, err)
	_, err = register.Execute(ctx, RegisterInput{Email: "A@example.com", Password: "long-enough", Role: "INVESTOR"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}
