package embedding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	"github.com/khoahotran/neplaunch/internal/domain/embedding"
	"github.com/khoahotran/neplaunch/pkg/apperror"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

type GeneratorConfig struct {
	Dimension int
	Timeout   time.Duration
	// Breaker opens after this many consecutive provider failures.
	MaxConsecutiveFailures uint32
	// OpenTimeout is how long an open breaker rejects calls before probing.
	OpenTimeout time.Duration
}

// Generator wraps the external embedding provider with input normalization,
// a per-call timeout and a circuit breaker.
type Generator struct {
	provider service.EmbeddingService
	breaker  *gobreaker.CircuitBreaker
	cfg      GeneratorConfig
	logger   logger.Logger
}

func NewGenerator(provider service.EmbeddingService, cfg GeneratorConfig, log logger.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxConsecutiveFailures == 0 {
		cfg.MaxConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "embedding-provider",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Embedding circuit breaker changed state",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Generator{provider: provider, breaker: breaker, cfg: cfg, logger: log}
}

func (g *Generator) Dimension() int {
	return g.cfg.Dimension
}

// Normalize collapses all whitespace runs to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Generate returns the embedding of text. Empty text yields the zero vector,
// which scores 0 against everything. Provider failures, timeouts and an open
// breaker all surface as ErrEmbeddingUnavailable.
func (g *Generator) Generate(ctx context.Context, text string) (embedding.Vector, error) {
	text = Normalize(text)
	if text == "" {
		return make(embedding.Vector, g.cfg.Dimension), nil
	}

	res, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
		return g.provider.GenerateEmbeddings(callCtx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperror.NewEmbeddingUnavailable("embedding provider circuit is open", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.NewEmbeddingUnavailable("embedding provider timed out", err)
		}
		return nil, apperror.NewEmbeddingUnavailable("embedding provider call failed", err)
	}

	vec := embedding.Vector(res.(pgvector.Vector).Slice())
	if g.cfg.Dimension > 0 && len(vec) != g.cfg.Dimension {
		return nil, apperror.NewDimensionMismatch(g.cfg.Dimension, len(vec))
	}
	return vec, nil
}
