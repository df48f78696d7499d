package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

const (
	TopicMatchEvents    = "match.events"
	TopicReembedRequest = "profile.reembed"
)

type KafkaProducerClient struct {
	MatchEventsWriter *kafka.Writer
	ReembedWriter     *kafka.Writer
	logger            logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'match.events'
	matchWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicMatchEvents,
		Balancer: &kafka.Hash{},
	}

	// writer 'profile.reembed'
	reembedWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicReembedRequest,
		Balancer: &kafka.Hash{},
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		MatchEventsWriter: matchWriter,
		ReembedWriter:     reembedWriter,
		logger:            log,
	}, nil
}

// Messages are keyed by match or user ID so events for one entity stay ordered
// within a partition.
func (c *KafkaProducerClient) PublishMatchEvent(ctx context.Context, payload service.MatchEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal match event: %w", err)
	}
	return c.MatchEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.MatchID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) PublishReembedRequest(ctx context.Context, req service.ReembedRequest) error {
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal reembed request: %w", err)
	}
	return c.ReembedWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.UserID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.MatchEventsWriter != nil {
		c.MatchEventsWriter.Close()
	}
	if c.ReembedWriter != nil {
		c.ReembedWriter.Close()
	}
	c.logger.Info("Closed Kafka Producers")
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)
