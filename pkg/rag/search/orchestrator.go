package search

import (
	"context"
	"log"

	"biomeai-be/internal/entity"
	"biomeai-be/pkg/embedding"
	"biomeai-be/pkg/metrics"

	"github.com/google/uuid"
)

const DefaultTopK = 5

// Mode names the strategy that produced a Result.
type Mode string

const (
	ModeVector     Mode = "vector"
	ModePositional Mode = "positional"
	ModeEmpty      Mode = "empty"
)

// ChunkStore is the subset of the datastore retrieval needs.
type ChunkStore interface {
	FindChunksByIndex(ctx context.Context, reportId uuid.UUID, limit int) ([]*entity.ReportChunk, error)
	SearchChunks(ctx context.Context, reportId uuid.UUID, embedding []float32, limit int) ([]*entity.ReportChunk, error)
	SupportsVectorSearch(ctx context.Context) bool
}

type Result struct {
	Chunks []*entity.ReportChunk
	Mode   Mode
}

// ChunkIds returns the ids of the retrieved chunks in result order.
func (r Result) ChunkIds() []string {
	ids := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		ids[i] = c.Id.String()
	}
	return ids
}

// Contents returns the chunk bodies in result order.
func (r Result) Contents() []string {
	out := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.Content
	}
	return out
}

// Orchestrator picks the k chunks of a report most relevant to a query.
// The strategy is fixed at construction: vector search when an embedding
// provider exists and the store can rank by distance, positional otherwise.
type Orchestrator struct {
	store             ChunkStore
	embeddingProvider embedding.EmbeddingProvider
	vectorEnabled     bool
	logger            *log.Logger
}

// NewOrchestrator creates a new search orchestrator. embeddingProvider may be nil.
func NewOrchestrator(ctx context.Context, store ChunkStore, embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Orchestrator {
	vectorEnabled := embeddingProvider != nil && store.SupportsVectorSearch(ctx)
	if vectorEnabled {
		logger.Printf("[INFO] Retrieval strategy: vector")
	} else {
		logger.Printf("[INFO] Retrieval strategy: positional")
	}
	return &Orchestrator{
		store:             store,
		embeddingProvider: embeddingProvider,
		vectorEnabled:     vectorEnabled,
		logger:            logger,
	}
}

func (o *Orchestrator) VectorEnabled() bool {
	return o.vectorEnabled
}

// Retrieve never fails: embedding or vector errors fall back to the first k
// chunks by index, and a failing positional read yields an empty result.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, reportId uuid.UUID, k int) Result {
	if k <= 0 {
		k = DefaultTopK
	}

	if o.vectorEnabled {
		if chunks, err := o.vectorSearch(ctx, query, reportId, k); err == nil && len(chunks) > 0 {
			return o.result(chunks, ModeVector)
		} else if err != nil {
			o.logger.Printf("[WARN] Vector retrieval failed, falling back to positional: %v", err)
		}
	}

	chunks, err := o.store.FindChunksByIndex(ctx, reportId, k)
	if err != nil {
		o.logger.Printf("[ERROR] Positional retrieval failed: %v", err)
		return o.result(nil, ModeEmpty)
	}
	if len(chunks) == 0 {
		return o.result(nil, ModeEmpty)
	}
	return o.result(chunks, ModePositional)
}

func (o *Orchestrator) vectorSearch(ctx context.Context, query string, reportId uuid.UUID, k int) ([]*entity.ReportChunk, error) {
	vector, err := o.embeddingProvider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return o.store.SearchChunks(ctx, reportId, vector, k)
}

func (o *Orchestrator) result(chunks []*entity.ReportChunk, mode Mode) Result {
	metrics.RetrievalTotal.WithLabelValues(string(mode)).Inc()
	o.logger.Printf("[DEBUG] Retrieved %d chunks (%s)", len(chunks), mode)
	return Result{Chunks: chunks, Mode: mode}
}
