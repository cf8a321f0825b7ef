package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(userId, threadId string) *entity.Report {
	return &entity.Report{
		UserId:           userId,
		ThreadId:         threadId,
		OriginalFilename: "viome.pdf",
		Stage:            "awaiting_antibiotics",
		Metadata:         map[string]interface{}{},
	}
}

func newChunks(n int) []*entity.ReportChunk {
	chunks := make([]*entity.ReportChunk, n)
	for i := range chunks {
		chunks[i] = &entity.ReportChunk{ChunkIndex: i, Content: fmt.Sprintf("chunk %d", i)}
	}
	return chunks
}

func TestDatastore_ReplaceReportPurgesPriorReport(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore()

	first := newReport("u1", "t1")
	purged, err := ds.ReplaceReport(ctx, first, newChunks(4))
	require.NoError(t, err)
	assert.Nil(t, purged)

	for i := 0; i < 3; i++ {
		require.NoError(t, ds.AppendMessage(ctx, &entity.Message{Id: fmt.Sprintf("m%d", i), ReportId: first.Id, Role: "user", Content: "hi"}))
	}

	second := newReport("u1", "t1")
	purged, err = ds.ReplaceReport(ctx, second, newChunks(2))
	require.NoError(t, err)
	require.NotNil(t, purged)
	assert.Equal(t, first.Id, *purged)

	assert.Equal(t, 2, ds.ChunkCount())
	assert.Equal(t, 0, ds.MessageCount())

	found, err := ds.FindReportByThreadId(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, second.Id, found.Id)

	old, err := ds.FindMessages(ctx, first.Id)
	require.NoError(t, err)
	assert.Empty(t, old)
}

func TestDatastore_ReplaceReportRejectsOtherOwner(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore()

	_, err := ds.ReplaceReport(ctx, newReport("u1", "t1"), newChunks(1))
	require.NoError(t, err)

	_, err = ds.ReplaceReport(ctx, newReport("u2", "t1"), newChunks(1))
	assert.ErrorIs(t, err, contract.ErrThreadOwnedByAnotherUser)
	assert.Equal(t, 1, ds.ChunkCount())
}

func TestDatastore_MessagesKeepAppendOrder(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore()
	report := newReport("u1", "t1")
	_, err := ds.ReplaceReport(ctx, report, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = ds.AppendMessage(ctx, &entity.Message{Id: fmt.Sprintf("m%d", i), ReportId: report.Id, Role: "user"})
		}(i)
	}
	wg.Wait()

	msgs, err := ds.FindMessages(ctx, report.Id)
	require.NoError(t, err)
	require.Len(t, msgs, 20)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].Sequence, msgs[i-1].Sequence)
	}
}

func TestDatastore_DuplicateMessageId(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore()
	report := newReport("u1", "t1")
	_, err := ds.ReplaceReport(ctx, report, nil)
	require.NoError(t, err)

	require.NoError(t, ds.AppendMessage(ctx, &entity.Message{Id: "m1", ReportId: report.Id}))
	assert.Error(t, ds.AppendMessage(ctx, &entity.Message{Id: "m1", ReportId: report.Id}))
}

func TestDatastore_SearchChunksByDistance(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore()
	report := newReport("u1", "t1")
	chunks := []*entity.ReportChunk{
		{ChunkIndex: 0, Content: "far", Embedding: []float32{0, 1}},
		{ChunkIndex: 1, Content: "unembedded"},
		{ChunkIndex: 2, Content: "near", Embedding: []float32{1, 0.1}},
	}
	_, err := ds.ReplaceReport(ctx, report, chunks)
	require.NoError(t, err)

	found, err := ds.SearchChunks(ctx, report.Id, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "near", found[0].Content)
	assert.Equal(t, "far", found[1].Content)

	byIndex, err := ds.FindChunksByIndex(ctx, report.Id, 2)
	require.NoError(t, err)
	require.Len(t, byIndex, 2)
	assert.Equal(t, 0, byIndex[0].ChunkIndex)
	assert.Equal(t, 1, byIndex[1].ChunkIndex)
}

func TestDatastore_UpdateProgressAndStats(t *testing.T) {
	ctx := context.Background()
	ds := NewDatastore()

	require.NoError(t, ds.UpsertUser(ctx, &entity.User{Id: "u1", Username: "old"}))
	user := &entity.User{Id: "u1", Username: "new"}
	require.NoError(t, ds.UpsertUser(ctx, user))
	assert.Equal(t, "new", user.Username)

	report := newReport("u1", "t1")
	_, err := ds.ReplaceReport(ctx, report, newChunks(1))
	require.NoError(t, err)

	report.Stage = "awaiting_diet_prediction"
	report.Metadata["antibiotics_response"] = "no"
	require.NoError(t, ds.UpdateReportProgress(ctx, report))

	stored, err := ds.FindReportByThreadId(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "awaiting_diet_prediction", stored.Stage)
	assert.Equal(t, "no", stored.MetadataString("antibiotics_response"))

	require.NoError(t, ds.AppendMessage(ctx, &entity.Message{Id: "a1", ReportId: report.Id, CostUsd: 0.25}))
	require.NoError(t, ds.AppendMessage(ctx, &entity.Message{Id: "a2", ReportId: report.Id, CostUsd: 0.5}))

	stats, err := ds.UsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(1), stats.Reports)
	assert.Equal(t, int64(2), stats.Messages)
	assert.InDelta(t, 0.75, stats.TotalCostUsd, 1e-9)
}
