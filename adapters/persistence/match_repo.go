package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// matchesOnePending is the partial unique index that allows a single PENDING
// row per (requester, target, job).
const matchesOnePending = "matches_one_pending_idx"

type postgresMatchRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresMatchRepo(db *pgxpool.Pool, logger logger.Logger) match.Repository {
	return &postgresMatchRepo{db: db, logger: logger}
}

const matchColumns = "id, requester_id, target_id, job_id, match_score, status, message, version, created_at, responded_at"

func scanMatch(row pgx.Row) (*match.Match, error) {
	m := &match.Match{}
	err := row.Scan(
		&m.ID,
		&m.RequesterID,
		&m.TargetID,
		&m.JobID,
		&m.MatchScore,
		&m.Status,
		&m.Message,
		&m.Version,
		&m.CreatedAt,
		&m.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepo) Create(ctx context.Context, m *match.Match) error {
	query := `INSERT INTO matches (` + matchColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.RequesterID,
		m.TargetID,
		m.JobID,
		m.MatchScore,
		m.Status,
		m.Message,
		m.Version,
		m.CreatedAt,
		m.RespondedAt,
	)
	if err != nil {
		if isUniqueViolation(err, matchesOnePending) {
			return apperror.NewDuplicatePending(m.RequesterID.String(), m.TargetID.String())
		}
		return apperror.NewInternal("failed to create match", err)
	}
	return nil
}

func (r *postgresMatchRepo) FindByID(ctx context.Context, id uuid.UUID) (*match.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("match", id.String())
		}
		return nil, apperror.NewInternal("failed to query match", err)
	}
	return m, nil
}

// UpdateStatus is a compare-and-set on version. When no row matches, the
// current row is read back to tell a missing match from a lost race.
func (r *postgresMatchRepo) UpdateStatus(ctx context.Context, m *match.Match, expectedVersion int) error {
	query := `
		UPDATE matches
		SET status = $1, responded_at = $2, version = $3
		WHERE id = $4 AND version = $5
	`
	tag, err := r.db.Exec(ctx, query, m.Status, m.RespondedAt, m.Version, m.ID, expectedVersion)
	if err != nil {
		return apperror.NewInternal("failed to update match status", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, m.ID)
	if err != nil {
		return err
	}
	r.logger.Debug("Match status update lost the race",
		zap.String("match_id", m.ID.String()), zap.Int("expected_version", expectedVersion), zap.Int("current_version", current.Version))
	return apperror.NewAlreadyFinalized(m.ID.String(), string(current.Status))
}

func (r *postgresMatchRepo) List(ctx context.Context, f match.ListFilter) ([]*match.Match, error) {
	builder := psql.Select(matchColumns).From("matches")
	switch f.Direction {
	case match.DirectionIncoming:
		builder = builder.Where("target_id = ?", f.UserID)
	case match.DirectionOutgoing:
		builder = builder.Where("requester_id = ?", f.UserID)
	default:
		builder = builder.Where("(requester_id = ? OR target_id = ?)", f.UserID, f.UserID)
	}
	if f.Status != nil {
		builder = builder.Where("status = ?", *f.Status)
	}
	builder = builder.OrderBy("created_at DESC", "id ASC")
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		builder = builder.Offset(uint64(f.Offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build match list query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list matches", err)
	}
	defer rows.Close()

	out := make([]*match.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan match row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating match rows", err)
	}
	return out, nil
}
