package embedding

import (
	"context"
	"errors"
)

// ErrEmbedding marks a failed embedding call. Callers treat it as recoverable.
var ErrEmbedding = errors.New("embedding failed")

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
