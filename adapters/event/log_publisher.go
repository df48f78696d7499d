package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// LogPublisher stands in for Kafka when no brokers are configured. Events are
// only logged, so deferred re-embedding does not happen.
type LogPublisher struct {
	logger logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) PublishMatchEvent(_ context.Context, payload service.MatchEventPayload) error {
	p.logger.Info("Match event",
		zap.String("event_type", string(payload.EventType)),
		zap.String("match_id", payload.MatchID.String()),
		zap.String("requester_id", payload.RequesterID.String()),
		zap.String("target_id", payload.TargetID.String()),
	)
	return nil
}

func (p *LogPublisher) PublishReembedRequest(_ context.Context, req service.ReembedRequest) error {
	p.logger.Warn("Re-embed request dropped, no broker configured",
		zap.String("user_id", req.UserID.String()),
		zap.String("text_source", req.Source),
		zap.String("reason", req.Reason),
	)
	return nil
}

var _ service.EventPublisher = (*LogPublisher)(nil)
