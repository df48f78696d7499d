package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// ReembedUseCase regenerates the current embedding of one (user, source) pair
// from the text that source is derived from.
type ReembedUseCase struct {
	generator   *Generator
	store       embedding.Repository
	profileRepo profile.Repository
	jobRepo     job.Repository
	logger      logger.Logger
	now         func() time.Time
}

func NewReembedUseCase(gen *Generator, store embedding.Repository, pr profile.Repository, jr job.Repository, log logger.Logger) *ReembedUseCase {
	return &ReembedUseCase{
		generator:   gen,
		store:       store,
		profileRepo: pr,
		jobRepo:     jr,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type ReembedInput struct {
	UserID uuid.UUID
	Source embedding.TextSource
}

func (uc *ReembedUseCase) Execute(ctx context.Context, input ReembedInput) (*embedding.Embedding, error) {
	switch input.Source {
	case embedding.SourceProfile, embedding.SourceThesis:
		p, err := uc.profileRepo.GetByUserID(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("load profile for reembed failed: %w", err)
		}
		if p.Source() != input.Source {
			return nil, apperror.NewInvalidInput(
				fmt.Sprintf("%s profiles are embedded as %s, not %s", p.Role(), p.Source(), input.Source), nil)
		}
		return uc.IndexProfile(ctx, p)
	case embedding.SourceRolePosting:
		postings, err := uc.jobRepo.ListByFounder(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("load job postings for reembed failed: %w", err)
		}
		return uc.Index(ctx, input.UserID, embedding.SourceRolePosting, job.RolePostingText(postings))
	}
	return nil, apperror.NewInvalidInput(string(input.Source), embedding.ErrInvalidSource)
}

func (uc *ReembedUseCase) IndexProfile(ctx context.Context, p profile.Profile) (*embedding.Embedding, error) {
	return uc.Index(ctx, p.Meta().UserID, p.Source(), p.EmbeddingText())
}

// Index generates and stores the embedding for text. The stored timestamp is
// taken before the provider call so a slower, older generation cannot
// overwrite a newer one.
func (uc *ReembedUseCase) Index(ctx context.Context, userID uuid.UUID, source embedding.TextSource, text string) (*embedding.Embedding, error) {
	generatedAt := uc.now()

	vec, err := uc.generator.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	e := embedding.Embedding{
		UserID:      userID,
		Source:      source,
		Vector:      vec,
		GeneratedAt: generatedAt,
	}
	if err := uc.store.Put(ctx, e); err != nil {
		return nil, err
	}

	uc.logger.Info("Embedding stored",
		zap.String("user_id", userID.String()),
		zap.String("text_source", string(source)),
		zap.Int("dimension", len(vec)),
	)
	return &e, nil
}
