package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type postgresJobRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresJobRepo(db *pgxpool.Pool, logger logger.Logger) job.Repository {
	return &postgresJobRepo{db: db, logger: logger}
}

const jobColumns = "id, founder_id, title, description, requirements, required_skills, location, job_type, compensation, created_at, updated_at"

func scanJob(row pgx.Row) (*job.Posting, error) {
	p := &job.Posting{}
	err := row.Scan(
		&p.ID,
		&p.FounderID,
		&p.Title,
		&p.Description,
		&p.Requirements,
		&p.RequiredSkills,
		&p.Location,
		&p.JobType,
		&p.Compensation,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}

func (r *postgresJobRepo) Save(ctx context.Context, p *job.Posting) error {
	query := `INSERT INTO job_postings (` + jobColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.FounderID, p.Title, p.Description, p.Requirements, skillsOrEmpty(p.RequiredSkills),
		p.Location, p.JobType, p.Compensation, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to save job posting", err)
	}
	return nil
}

func (r *postgresJobRepo) Update(ctx context.Context, p *job.Posting) error {
	query := `
		UPDATE job_postings
		SET title = $1, description = $2, requirements = $3, required_skills = $4,
			location = $5, job_type = $6, compensation = $7, updated_at = $8
		WHERE id = $9 AND founder_id = $10
	`
	tag, err := r.db.Exec(ctx, query,
		p.Title, p.Description, p.Requirements, skillsOrEmpty(p.RequiredSkills),
		p.Location, p.JobType, p.Compensation, p.UpdatedAt, p.ID, p.FounderID,
	)
	if err != nil {
		return apperror.NewInternal("failed to update job posting", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("job", p.ID.String())
	}
	return nil
}

func (r *postgresJobRepo) Delete(ctx context.Context, id, founderID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_postings WHERE id = $1 AND founder_id = $2`, id, founderID)
	if err != nil {
		return apperror.NewInternal("failed to delete job posting", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("job", id.String())
	}
	return nil
}

func (r *postgresJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*job.Posting, error) {
	query := `SELECT ` + jobColumns + ` FROM job_postings WHERE id = $1`
	p, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("job", id.String())
		}
		return nil, apperror.NewInternal("failed to query job posting", err)
	}
	return p, nil
}

func (r *postgresJobRepo) ListByFounder(ctx context.Context, founderID uuid.UUID) ([]*job.Posting, error) {
	sql, args, err := psql.Select(jobColumns).
		From("job_postings").
		Where("founder_id = ?", founderID).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build job list query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list job postings", err)
	}
	defer rows.Close()

	out := make([]*job.Posting, 0)
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan job posting row", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating job posting rows", err)
	}
	return out, nil
}
