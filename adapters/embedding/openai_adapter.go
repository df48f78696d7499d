package embedding

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/neplaunch/internal/application/service"
	"github.com/khoahotran/neplaunch/internal/config"
	"github.com/khoahotran/neplaunch/pkg/logger"
)

// openAIAdapter talks to any OpenAI-compatible embeddings endpoint. With an
// empty API key it targets a local Ollama server at embedding.host.
type openAIAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

func NewOpenAIAdapter(cfg config.Config, log logger.Logger) (service.EmbeddingService, error) {
	if cfg.Embedding.Host == "" && cfg.Embedding.APIKey == "" {
		return nil, fmt.Errorf("embedding host or api key is not configured")
	}

	apiKey := cfg.Embedding.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Embedding.Host != "" {
		clientCfg.BaseURL = cfg.Embedding.Host
	}

	log.Info("Embedding adapter initialized",
		zap.String("base_url", clientCfg.BaseURL), zap.String("model", cfg.Embedding.Model))
	return &openAIAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Embedding.Model,
		log:    log,
	}, nil
}

func (a *openAIAdapter) GenerateEmbeddings(ctx context.Context, text string) (pgvector.Vector, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(a.model),
	}

	resp, err := a.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("provider returned no embeddings")
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}
