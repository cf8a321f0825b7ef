package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/memory"
	"biomeai-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, s.err
}

func (s *stubEmbedder) Dimensions() int { return len(s.vector) }

type brokenStore struct {
	vector bool
}

func (b *brokenStore) FindChunksByIndex(ctx context.Context, reportId uuid.UUID, limit int) ([]*entity.ReportChunk, error) {
	return nil, errors.New("connection reset")
}

func (b *brokenStore) SearchChunks(ctx context.Context, reportId uuid.UUID, v []float32, limit int) ([]*entity.ReportChunk, error) {
	return nil, errors.New("connection reset")
}

func (b *brokenStore) SupportsVectorSearch(ctx context.Context) bool { return b.vector }

var quiet = log.New(io.Discard, "", 0)

func seed(t *testing.T, n int) (*memory.Datastore, uuid.UUID) {
	t.Helper()
	ds := memory.NewDatastore()
	report := &entity.Report{UserId: "u", ThreadId: "t", Metadata: map[string]interface{}{}}
	var chunks []*entity.ReportChunk
	for i := 0; i < n; i++ {
		chunks = append(chunks, &entity.ReportChunk{
			ChunkIndex: i,
			Content:    fmt.Sprintf("chunk %d", i),
			Embedding:  []float32{float32(i), 1},
		})
	}
	_, err := ds.ReplaceReport(context.Background(), report, chunks)
	require.NoError(t, err)
	return ds, report.Id
}

func TestRetrieve_VectorOrdersByDistance(t *testing.T) {
	ds, reportId := seed(t, 8)
	o := NewOrchestrator(context.Background(), ds, &stubEmbedder{vector: []float32{7, 1}}, quiet)

	res := o.Retrieve(context.Background(), "fiber intake", reportId, 3)

	require.True(t, o.VectorEnabled())
	assert.Equal(t, ModeVector, res.Mode)
	require.Len(t, res.Chunks, 3)
	assert.Equal(t, "chunk 7", res.Chunks[0].Content)
	assert.Len(t, res.ChunkIds(), 3)
}

func TestRetrieve_EmbeddingFailureFallsBackToIndexOrder(t *testing.T) {
	ds, reportId := seed(t, 8)
	o := NewOrchestrator(context.Background(), ds, &stubEmbedder{err: embedding.ErrEmbedding}, quiet)

	res := o.Retrieve(context.Background(), "anything", reportId, 5)

	assert.Equal(t, ModePositional, res.Mode)
	require.Len(t, res.Chunks, 5)
	for i, c := range res.Chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}
}

func TestRetrieve_NoProviderIsPositional(t *testing.T) {
	ds, reportId := seed(t, 2)
	o := NewOrchestrator(context.Background(), ds, nil, quiet)

	res := o.Retrieve(context.Background(), "anything", reportId, 0)

	assert.False(t, o.VectorEnabled())
	assert.Equal(t, ModePositional, res.Mode)
	assert.Equal(t, []string{"chunk 0", "chunk 1"}, res.Contents())
}

func TestRetrieve_StoreFailureYieldsEmpty(t *testing.T) {
	o := NewOrchestrator(context.Background(), &brokenStore{vector: true}, &stubEmbedder{vector: []float32{1}}, quiet)

	res := o.Retrieve(context.Background(), "anything", uuid.New(), 5)

	assert.Equal(t, ModeEmpty, res.Mode)
	assert.Empty(t, res.Chunks)
}

func TestRetrieve_UnknownReportIsEmpty(t *testing.T) {
	ds, _ := seed(t, 3)
	o := NewOrchestrator(context.Background(), ds, &stubEmbedder{vector: []float32{1, 1}}, quiet)

	res := o.Retrieve(context.Background(), "q", uuid.New(), 5)

	assert.Equal(t, ModeEmpty, res.Mode)
	assert.Empty(t, res.Chunks)
}
