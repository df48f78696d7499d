package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/profile"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type Config struct {
	MaxTopK         int
	MinCompleteness float64
	Workers         int
	// LazyCandidateEmbedding generates missing candidate embeddings during a
	// ranking request instead of leaving those candidates out.
	LazyCandidateEmbedding bool
}

type RankCandidatesUseCase struct {
	userRepo    user.Repository
	profileRepo profile.Repository
	store       embedding.Repository
	indexer     *embeddinguc.ReembedUseCase
	cfg         Config
	logger      logger.Logger
}

func NewRankCandidatesUseCase(ur user.Repository, pr profile.Repository, store embedding.Repository, indexer *embeddinguc.ReembedUseCase, cfg Config, log logger.Logger) *RankCandidatesUseCase {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &RankCandidatesUseCase{
		userRepo:    ur,
		profileRepo: pr,
		store:       store,
		indexer:     indexer,
		cfg:         cfg,
		logger:      log,
	}
}

type RankCandidatesInput struct {
	SeekerID uuid.UUID
	// Role restricts the pool. Empty means the seeker's counterpart role.
	Role     user.Role
	TopK     int
	MinScore float64
}

type RankedCandidate struct {
	UserID  uuid.UUID       `json:"user_id"`
	Role    user.Role       `json:"role"`
	Score   float64         `json:"score"`
	Profile profile.Profile `json:"profile"`
}

type RankCandidatesOutput struct {
	Candidates []RankedCandidate
}

var tracer = otel.Tracer("ranking_usecase")

// CounterpartRole is the pool a seeker browses by default: founders look for
// talent, everyone else looks for founders.
func CounterpartRole(r user.Role) user.Role {
	if r == user.RoleFounder {
		return user.RoleTalent
	}
	return user.RoleFounder
}

func (uc *RankCandidatesUseCase) Execute(ctx context.Context, input RankCandidatesInput) (*RankCandidatesOutput, error) {
	ctx, span := tracer.Start(ctx, "RankCandidates")
	defer span.End()

	seeker, err := uc.userRepo.FindByID(ctx, input.SeekerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = CounterpartRole(seeker.Role)
	}
	if !role.Valid() {
		return nil, apperror.NewInvalidInput(string(role), user.ErrInvalidRole)
	}
	topK := input.TopK
	if uc.cfg.MaxTopK > 0 && topK > uc.cfg.MaxTopK {
		topK = uc.cfg.MaxTopK
	}
	span.SetAttributes(
		attribute.String("seeker_id", input.SeekerID.String()),
		attribute.String("role", string(role)),
		attribute.Int("top_k", topK),
	)

	seekerVec, err := uc.seekerVector(ctx, input.SeekerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pool, err := uc.profileRepo.ListByRole(ctx, role, uc.cfg.MinCompleteness, input.SeekerID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load candidate pool failed: %w", err)
	}
	ids := make([]uuid.UUID, len(pool))
	byID := make(map[uuid.UUID]profile.Profile, len(pool))
	for i, p := range pool {
		ids[i] = p.Meta().UserID
		byID[ids[i]] = p
	}

	latest, err := uc.store.GetLatestForUsers(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load candidate embeddings failed: %w", err)
	}

	candidates := make([]Candidate, 0, len(pool))
	for _, p := range pool {
		id := p.Meta().UserID
		if e, ok := latest[id]; ok {
			candidates = append(candidates, Candidate{UserID: id, Vector: e.Vector})
			continue
		}
		if !uc.cfg.LazyCandidateEmbedding {
			continue
		}
		e, err := uc.indexer.IndexProfile(ctx, p)
		if err != nil {
			uc.logger.Warn("Skipping candidate without embedding",
				zap.String("candidate_id", id.String()), zap.Error(err))
			continue
		}
		candidates = append(candidates, Candidate{UserID: id, Vector: e.Vector})
	}

	scored, err := Rank(ctx, seekerVec, candidates, topK, input.MinScore, uc.cfg.Workers)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := make([]RankedCandidate, len(scored))
	for i, s := range scored {
		out[i] = RankedCandidate{UserID: s.UserID, Role: role, Score: s.Score, Profile: byID[s.UserID]}
	}
	span.SetAttributes(attribute.Int("pool_size", len(pool)), attribute.Int("result_count", len(out)))
	uc.logger.Debug("Candidates ranked",
		zap.String("seeker_id", input.SeekerID.String()),
		zap.Int("pool_size", len(pool)),
		zap.Int("scored", len(candidates)),
		zap.Int("returned", len(out)),
	)
	return &RankCandidatesOutput{Candidates: out}, nil
}

// seekerVector returns the seeker's current embedding, generating it from the
// seeker's profile when none has been stored yet.
func (uc *RankCandidatesUseCase) seekerVector(ctx context.Context, seekerID uuid.UUID) (embedding.Vector, error) {
	e, err := uc.store.GetLatest(ctx, seekerID)
	if err == nil {
		return e.Vector, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("load seeker embedding failed: %w", err)
	}

	p, err := uc.profileRepo.GetByUserID(ctx, seekerID)
	if err != nil {
		return nil, err
	}
	generated, err := uc.indexer.IndexProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	return generated.Vector, nil
}
