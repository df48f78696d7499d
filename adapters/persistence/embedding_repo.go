package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type postgresEmbeddingRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresEmbeddingRepo(db *pgxpool.Pool, logger logger.Logger) embedding.Repository {
	return &postgresEmbeddingRepo{db: db, logger: logger}
}

// latestOrder ranks a user's sources the same way embedding.Latest does.
const latestOrder = `CASE text_source WHEN 'role_posting' THEN 1 ELSE 0 END, generated_at DESC`

func scanEmbedding(row pgx.Row) (*embedding.Embedding, error) {
	e := &embedding.Embedding{}
	var vec pgvector.Vector
	if err := row.Scan(&e.UserID, &e.Source, &vec, &e.GeneratedAt); err != nil {
		return nil, err
	}
	e.Vector = embedding.Vector(vec.Slice())
	return e, nil
}

func (r *postgresEmbeddingRepo) Put(ctx context.Context, e embedding.Embedding) error {
	query := `
		INSERT INTO embeddings (user_id, text_source, embedding, generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, text_source) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			generated_at = EXCLUDED.generated_at
		WHERE embeddings.generated_at < EXCLUDED.generated_at
	`
	_, err := r.db.Exec(ctx, query, e.UserID, string(e.Source), pgvector.NewVector(e.Vector), e.GeneratedAt)
	if err != nil {
		return apperror.NewInternal("failed to store embedding", err)
	}
	return nil
}

func (r *postgresEmbeddingRepo) Get(ctx context.Context, userID uuid.UUID, source embedding.TextSource) (*embedding.Embedding, error) {
	query := `
		SELECT user_id, text_source, embedding, generated_at
		FROM embeddings
		WHERE user_id = $1 AND text_source = $2
	`
	e, err := scanEmbedding(r.db.QueryRow(ctx, query, userID, string(source)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("embedding", userID.String()+"/"+string(source))
		}
		return nil, apperror.NewInternal("failed to query embedding", err)
	}
	return e, nil
}

func (r *postgresEmbeddingRepo) GetLatest(ctx context.Context, userID uuid.UUID) (*embedding.Embedding, error) {
	query := `
		SELECT user_id, text_source, embedding, generated_at
		FROM embeddings
		WHERE user_id = $1
		ORDER BY ` + latestOrder + `
		LIMIT 1
	`
	e, err := scanEmbedding(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("embedding", userID.String())
		}
		return nil, apperror.NewInternal("failed to query latest embedding", err)
	}
	return e, nil
}

func (r *postgresEmbeddingRepo) GetLatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]embedding.Embedding, error) {
	out := make(map[uuid.UUID]embedding.Embedding, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT DISTINCT ON (user_id) user_id, text_source, embedding, generated_at
		FROM embeddings
		WHERE user_id = ANY($1)
		ORDER BY user_id, ` + latestOrder
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, apperror.NewInternal("failed to query candidate embeddings", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEmbedding(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan embedding row", err)
		}
		out[e.UserID] = *e
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating embedding rows", err)
	}
	return out, nil
}
