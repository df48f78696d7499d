package match

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	"github.com/khoahotran/neplaunch/internal/domain/match"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type RespondMatchUseCase struct {
	matchRepo match.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewRespondMatchUseCase(mr match.Repository, pub service.EventPublisher, log logger.Logger) *RespondMatchUseCase {
	return &RespondMatchUseCase{matchRepo: mr, publisher: pub, logger: log}
}

type RespondMatchInput struct {
	MatchID     uuid.UUID
	ResponderID uuid.UUID
	Accept      bool
}

type RespondMatchOutput struct {
	Match *match.Match
}

func (uc *RespondMatchUseCase) Execute(ctx context.Context, input RespondMatchInput) (*RespondMatchOutput, error) {
	ctx, span := tracer.Start(ctx, "RespondMatch")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", input.MatchID.String()), attribute.Bool("accept", input.Accept))

	m, err := uc.matchRepo.FindByID(ctx, input.MatchID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	expected := m.Version
	if err := m.Respond(input.ResponderID, input.Accept, time.Now().UTC()); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.matchRepo.UpdateStatus(ctx, m, expected); err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("Match responded",
		zap.String("match_id", m.ID.String()),
		zap.String("status", string(m.Status)),
	)
	eventType := service.MatchEventRejected
	if m.Status == match.StatusAccepted {
		eventType = service.MatchEventAccepted
	}
	publishMatchEvent(uc.publisher, uc.logger, eventType, m)
	return &RespondMatchOutput{Match: m}, nil
}
