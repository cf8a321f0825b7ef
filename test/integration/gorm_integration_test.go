package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/repository/store"
	"biomeai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run `go run ./cmd/migrate` against the same database first.
func newStore(t *testing.T) *store.GormStore {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err, "Failed to connect to DB")

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	return store.NewGormStore(gormDB)
}

func unitVector(hot int) []float32 {
	v := make([]float32, 1536)
	v[hot] = 1
	return v
}

func TestGormStore_ReportLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	userId := "it-user-" + uuid.NewString()[:8]
	threadId := "it-thread-" + uuid.NewString()[:8]

	require.NoError(t, s.UpsertUser(ctx, &entity.User{Id: userId, Username: "Integration"}))

	report := &entity.Report{
		UserId:           userId,
		ThreadId:         threadId,
		OriginalFilename: "viome.pdf",
		Metadata:         map[string]interface{}{"provider": "Viome"},
		Stage:            "awaiting_prediction",
	}
	chunks := []*entity.ReportChunk{
		{ChunkIndex: 0, Content: "Diversity score: 62", Embedding: unitVector(0)},
		{ChunkIndex: 1, Content: "Bacteroides elevated", Embedding: unitVector(1)},
		{ChunkIndex: 2, Content: "Embedding failed for this one"},
	}

	purged, err := s.ReplaceReport(ctx, report, chunks)
	require.NoError(t, err)
	assert.Nil(t, purged)
	t.Cleanup(func() { _ = s.PurgeReport(context.Background(), report.Id) })

	t.Run("Find by thread", func(t *testing.T) {
		found, err := s.FindReportByThreadId(ctx, threadId)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, report.Id, found.Id)
		assert.Equal(t, "Viome", found.MetadataString("provider"))
	})

	t.Run("Positional chunks are ordered", func(t *testing.T) {
		got, err := s.FindChunksByIndex(ctx, report.Id, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].ChunkIndex)
		assert.Equal(t, 1, got[1].ChunkIndex)
	})

	t.Run("Vector search ranks by cosine distance", func(t *testing.T) {
		if !s.SupportsVectorSearch(ctx) {
			t.Skip("pgvector extension not available")
		}
		got, err := s.SearchChunks(ctx, report.Id, unitVector(1), 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Bacteroides elevated", got[0].Content)
	})

	t.Run("Messages keep append order", func(t *testing.T) {
		for _, role := range []string{"user", "assistant", "user"} {
			require.NoError(t, s.AppendMessage(ctx, &entity.Message{
				Id:       uuid.NewString(),
				ReportId: report.Id,
				Role:     role,
				Content:  role + " turn",
			}))
		}
		msgs, err := s.FindMessages(ctx, report.Id)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "assistant", msgs[1].Role)
		assert.Less(t, msgs[0].Sequence, msgs[2].Sequence)
	})

	t.Run("Another user cannot replace the report", func(t *testing.T) {
		_, err := s.ReplaceReport(ctx, &entity.Report{UserId: "someone-else", ThreadId: threadId, Stage: "awaiting_prediction"}, nil)
		assert.ErrorIs(t, err, contract.ErrThreadOwnedByAnotherUser)
	})

	t.Run("Usage stats", func(t *testing.T) {
		stats, err := s.UsageStats(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stats.Reports, int64(1))
	})
}
