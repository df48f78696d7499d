package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	embeddingAdapter "github.com/khoahotran/neplaunch/adapters/embedding"
	"github.com/khoahotran/neplaunch/adapters/event"
	"github.com/khoahotran/neplaunch/adapters/persistence"
	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/pkg/logger"
	"github.com/khoahotran/neplaunch/pkg/tracing"
)

func main() {
	fmt.Println("Starting NepLaunch Re-embed Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("FATAL: cannot load config: %v", err))
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("worker needs kafka.brokers", errors.New("no brokers configured"))
	}

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "neplaunch-worker")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Storage
	repos, closeRepos, err := persistence.Open(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot open storage", err)
	}
	defer closeRepos()

	// Embedding
	provider, err := embeddingAdapter.NewOpenAIAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding provider", err)
	}
	generator := embeddinguc.NewGenerator(provider, embeddinguc.GeneratorConfig{
		Dimension:              cfg.Embedding.Dimension,
		Timeout:                cfg.Embedding.Timeout,
		MaxConsecutiveFailures: cfg.Embedding.BreakerFailures,
		OpenTimeout:            cfg.Embedding.BreakerOpenTimeout,
	}, appLogger)
	store := embeddinguc.NewStore(repos.Embeddings, cfg.Embedding.Dimension)
	reembedUseCase := embeddinguc.NewReembedUseCase(generator, store, repos.Profiles, repos.Jobs, appLogger)

	// Kafka Consumer
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicReembedRequest,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := event.NewReembedConsumer(reader, reembedUseCase, appLogger)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Worker stopped", err)
	}
	appLogger.Info("Worker shut down", zap.String("group_id", cfg.Kafka.GroupID))
}
