package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	embeddingAdapter "github.com/khoahotran/neplaunch/adapters/embedding"
	"github.com/khoahotran/neplaunch/adapters/event"
	httpAdapter "github.com/khoahotran/neplaunch/adapters/http"
	"github.com/khoahotran/neplaunch/adapters/media_storage"
	"github.com/khoahotran/neplaunch/adapters/persistence"
	"github.com/khoahotran/neplaunch/internal/application/service"
	authUC "github.com/khoahotran/neplaunch/internal/application/usecase/auth"
	embeddinguc "github.com/khoahotran/neplaunch/internal/application/usecase/embedding"
	jobUC "github.com/khoahotran/neplaunch/internal/application/usecase/job"
	matchUC "github.com/khoahotran/neplaunch/internal/application/usecase/match"
	profileUC "github.com/khoahotran/neplaunch/internal/application/usecase/profile"
	"github.com/khoahotran/neplaunch/internal/application/usecase/ranking"
	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/pkg/auth"
	"github.com/khoahotran/neplaunch/pkg/logger"
	"github.com/khoahotran/neplaunch/pkg/tracing"
)

func main() {
	fmt.Println("Start NepLaunch API Server...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("FATAL: cannot load config: %v", err))
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "neplaunch-api")
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

	// Events
	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("No Kafka brokers configured, events are only logged")
		publisher = event.NewLogPublisher(appLogger)
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize uploader", err)
		}
	}

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
	indexer := embeddinguc.NewReembedUseCase(generator, store, repos.Profiles, repos.Jobs, appLogger)

	// Use Cases
	registerUseCase := authUC.NewRegisterUseCase(repos.Users, jwtSvc, appLogger)
	loginUseCase := authUC.NewLoginUseCase(repos.Users, jwtSvc, appLogger)
	profileUseCase := profileUC.NewProfileUseCase(repos.Profiles, repos.Users, store, indexer, publisher, uploader, appLogger)
	rankUseCase := ranking.NewRankCandidatesUseCase(repos.Users, repos.Profiles, store, indexer, ranking.Config{
		MaxTopK:                cfg.Matching.MaxTopK,
		MinCompleteness:        cfg.Matching.MinCompleteness,
		Workers:                cfg.Matching.Workers,
		LazyCandidateEmbedding: cfg.Matching.LazyCandidateEmbedding,
	}, appLogger)
	proposeUseCase := matchUC.NewProposeMatchUseCase(repos.Matches, repos.Users, repos.Jobs, store, publisher, appLogger)
	respondUseCase := matchUC.NewRespondMatchUseCase(repos.Matches, publisher, appLogger)
	listMatchesUseCase := matchUC.NewListMatchesUseCase(repos.Matches, appLogger)
	getMatchUseCase := matchUC.NewGetMatchUseCase(repos.Matches)
	jobUseCase := jobUC.NewJobUseCase(repos.Jobs, repos.Users, indexer, publisher, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth:    httpAdapter.NewAuthHandler(registerUseCase, loginUseCase, appLogger),
		Profile: httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		Match: httpAdapter.NewMatchHandler(
			rankUseCase,
			proposeUseCase,
			respondUseCase,
			listMatchesUseCase,
			getMatchUseCase,
			httpAdapter.CandidateDefaults{TopK: cfg.Matching.DefaultTopK, MinScore: cfg.Matching.DefaultMinScore},
			appLogger,
		),
		Job: httpAdapter.NewJobHandler(jobUseCase, appLogger),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(handlers, jwtSvc, appLogger)

	srv := &http.Server{Addr: ":" + cfg.App.Port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("storage", cfg.App.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
