package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/job"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/internal/domain/user"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

var tracer = otel.Tracer("match_usecase")

type ProposeMatchUseCase struct {
	matchRepo match.Repository
	userRepo  user.Repository
	jobRepo   job.Repository
	store     embedding.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewProposeMatchUseCase(mr match.Repository, ur user.Repository, jr job.Repository, store embedding.Repository, pub service.EventPublisher, log logger.Logger) *ProposeMatchUseCase {
	return &ProposeMatchUseCase{
		matchRepo: mr,
		userRepo:  ur,
		jobRepo:   jr,
		store:     store,
		publisher: pub,
		logger:    log,
	}
}

type ProposeMatchInput struct {
	RequesterID uuid.UUID
	TargetID    uuid.UUID
	JobID       *uuid.UUID
	Message     *string
}

type ProposeMatchOutput struct {
	Match *match.Match
}

func (uc *ProposeMatchUseCase) Execute(ctx context.Context, input ProposeMatchInput) (*ProposeMatchOutput, error) {
	ctx, span := tracer.Start(ctx, "ProposeMatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("requester_id", input.RequesterID.String()),
		attribute.String("target_id", input.TargetID.String()),
	)

	if input.RequesterID == input.TargetID {
		err := apperror.NewSelfMatch(input.RequesterID.String())
		span.RecordError(err)
		return nil, err
	}
	if _, err := uc.userRepo.FindByID(ctx, input.TargetID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if input.JobID != nil {
		if _, err := uc.jobRepo.FindByID(ctx, *input.JobID); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	score, err := uc.score(ctx, input.RequesterID, input.TargetID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m, err := match.New(input.RequesterID, input.TargetID, input.JobID, input.Message, score, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.matchRepo.Create(ctx, m); err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("Match proposed",
		zap.String("match_id", m.ID.String()),
		zap.String("requester_id", m.RequesterID.String()),
		zap.String("target_id", m.TargetID.String()),
	)
	publishMatchEvent(uc.publisher, uc.logger, service.MatchEventProposed, m)
	return &ProposeMatchOutput{Match: m}, nil
}

// score is the similarity of the two users' current embeddings, or nil when
// either side has none.
func (uc *ProposeMatchUseCase) score(ctx context.Context, requesterID, targetID uuid.UUID) (*float64, error) {
	a, err := uc.store.GetLatest(ctx, requesterID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load requester embedding failed: %w", err)
	}
	b, err := uc.store.GetLatest(ctx, targetID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load target embedding failed: %w", err)
	}

	s, err := embedding.Cosine(a.Vector, b.Vector)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func publishMatchEvent(pub service.EventPublisher, log logger.Logger, eventType service.MatchEventType, m *match.Match) {
	payload := service.MatchEventPayload{
		EventType:   eventType,
		MatchID:     m.ID,
		RequesterID: m.RequesterID,
		TargetID:    m.TargetID,
		JobID:       m.JobID,
		OccurredAt:  time.Now().UTC(),
	}
	go func() {
		if err := pub.PublishMatchEvent(context.Background(), payload); err != nil {
			log.Error("Failed to publish match event", err,
				zap.String("match_id", payload.MatchID.String()), zap.String("event_type", string(eventType)))
		}
	}()
}
