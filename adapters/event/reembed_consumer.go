package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Reembedder interface {
	Execute(ctx context.Context, input embeddinguc.ReembedInput) (*embedding.Embedding, error)
}

// ReembedConsumer drains profile.reembed and regenerates each requested
// embedding, retrying provider outages with exponential backoff.
type ReembedConsumer struct {
	reader     MessageReader
	reembedder Reembedder
	logger     logger.Logger
	// MaxElapsed bounds the retries for a single message.
	MaxElapsed time.Duration
}

func NewReembedConsumer(reader MessageReader, reembedder Reembedder, log logger.Logger) *ReembedConsumer {
	return &ReembedConsumer{reader: reader, reembedder: reembedder, logger: log, MaxElapsed: 2 * time.Minute}
}

func (c *ReembedConsumer) Run(ctx context.Context) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicReembedRequest))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		if err := c.Handle(ctx, msg); err != nil {
			c.logger.Error("Failed to process re-embed request", err, zap.String("key", string(msg.Key)))
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message", err)
		}
	}
}

// Handle returns nil for messages that should be committed, including ones
// that can never succeed.
func (c *ReembedConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var req service.ReembedRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Warn("Skipping undecodable re-embed request", zap.Error(err))
		return nil
	}
	input := embeddinguc.ReembedInput{UserID: req.UserID, Source: embedding.TextSource(req.Source)}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.MaxElapsed
	attempt := 0
	op := func() error {
		attempt++
		_, err := c.reembedder.Execute(ctx, input)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperror.ErrEmbeddingUnavailable) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("Embedding provider unavailable, will retry",
			zap.String("user_id", req.UserID.String()), zap.Int("attempt", attempt))
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	if err == nil {
		c.logger.Info("Re-embedded", zap.String("user_id", req.UserID.String()), zap.String("text_source", req.Source))
		return nil
	}
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrInvalidInput) {
		c.logger.Warn("Dropping re-embed request", zap.String("user_id", req.UserID.String()), zap.Error(err))
		return nil
	}
	return err
}
