package embedding

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/pkg/apperror"
)

// Store guards an embedding repository so that only vectors of the configured
// dimension and a known text source ever reach storage.
type Store struct {
	repo      embedding.Repository
	dimension int
}

func NewStore(repo embedding.Repository, dimension int) *Store {
	return &Store{repo: repo, dimension: dimension}
}

func (s *Store) Put(ctx context.Context, e embedding.Embedding) error {
	if !e.Source.Valid() {
		return apperror.NewInvalidInput(string(e.Source), embedding.ErrInvalidSource)
	}
	if e.UserID == uuid.Nil {
		return apperror.NewInvalidInput("embedding owner is required", nil)
	}
	if len(e.Vector) != s.dimension {
		return apperror.NewDimensionMismatch(s.dimension, len(e.Vector))
	}
	return s.repo.Put(ctx, e)
}

func (s *Store) Get(ctx context.Context, userID uuid.UUID, source embedding.TextSource) (*embedding.Embedding, error) {
	return s.repo.Get(ctx, userID, source)
}

func (s *Store) GetLatest(ctx context.Context, userID uuid.UUID) (*embedding.Embedding, error) {
	return s.repo.GetLatest(ctx, userID)
}

func (s *Store) GetLatestForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]embedding.Embedding, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID]embedding.Embedding{}, nil
	}
	return s.repo.GetLatestForUsers(ctx, userIDs)
}

var _ embedding.Repository = (*Store)(nil)
