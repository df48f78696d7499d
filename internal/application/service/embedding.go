package service

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingService is the external text-to-vector provider.
type EmbeddingService interface {
	GenerateEmbeddings(ctx context.Context, text string) (pgvector.Vector, error)
}
