package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// Profiles live in one table. Variant-specific fields are kept in the
// attributes JSONB column; the shared Base fields have their own columns.
type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

const profileColumns = "user_id, role, attributes, avatar_url, completeness_score, created_at, updated_at"

func (r *postgresProfileRepo) scanProfile(row pgx.Row) (profile.Profile, error) {
	var (
		userID     uuid.UUID
		role       user.Role
		attributes []byte
		base       profile.Base
	)
	if err := row.Scan(&userID, &role, &attributes, &base.AvatarURL, &base.CompletenessScore, &base.CreatedAt, &base.UpdatedAt); err != nil {
		return nil, err
	}

	p, err := profile.New(role, userID, base.CreatedAt)
	if err != nil {
		return nil, apperror.NewInternal("stored profile has an unknown role", err)
	}
	if err := json.Unmarshal(attributes, p); err != nil {
		r.logger.Warn("Failed to unmarshal profile attributes", zap.String("user_id", userID.String()), zap.Error(err))
	}
	base.UserID = userID
	*p.Meta() = base
	return p, nil
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := r.scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAppError(apperror.ErrNotFound, "profile not found", userID.String(), profile.ErrProfileNotFound)
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) Upsert(ctx context.Context, p profile.Profile) error {
	attributes, err := json.Marshal(p)
	if err != nil {
		return apperror.NewInternal("failed to marshal profile attributes", err)
	}
	meta := p.Meta()

	query := `
		INSERT INTO profiles (user_id, role, attributes, avatar_url, completeness_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			attributes = EXCLUDED.attributes,
			avatar_url = EXCLUDED.avatar_url,
			completeness_score = EXCLUDED.completeness_score,
			updated_at = EXCLUDED.updated_at
		WHERE profiles.role = EXCLUDED.role
	`
	tag, err := r.db.Exec(ctx, query,
		meta.UserID,
		p.Role(),
		attributes,
		meta.AvatarURL,
		meta.CompletenessScore,
		meta.CreatedAt,
		meta.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to upsert profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewInvalidInput("a user holds exactly one profile variant", profile.ErrRoleMismatch)
	}
	return nil
}

func (r *postgresProfileRepo) ListByRole(ctx context.Context, role user.Role, minCompleteness float64, excludeUserID uuid.UUID) ([]profile.Profile, error) {
	builder := psql.Select(profileColumns).
		From("profiles").
		Where("role = ?", role).
		Where("completeness_score >= ?", minCompleteness).
		OrderBy("user_id ASC")
	if excludeUserID != uuid.Nil {
		builder = builder.Where("user_id <> ?", excludeUserID)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build candidate pool query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query candidate pool", err)
	}
	defer rows.Close()

	out := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan profile row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile rows", err)
	}
	return out, nil
}
