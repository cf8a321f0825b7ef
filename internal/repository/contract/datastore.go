package contract

import (
	"context"
	"errors"

	"biomeai-be/internal/entity"

	"github.com/google/uuid"
)

var (
	// ErrThreadOwnedByAnotherUser is returned when a re-upload targets a thread
	// whose report belongs to someone else.
	ErrThreadOwnedByAnotherUser = errors.New("thread belongs to another user")
	ErrReportNotFound           = errors.New("report not found")
)

// Datastore is the persistence boundary used by the conversation core.
// Multi-step writes (ReplaceReport, PurgeReport) are atomic.
type Datastore interface {
	UpsertUser(ctx context.Context, user *entity.User) error

	FindReportByThreadId(ctx context.Context, threadId string) (*entity.Report, error)
	// ReplaceReport purges any prior report on the same thread owned by the
	// same user, then stores report and chunks. It returns the purged report id.
	ReplaceReport(ctx context.Context, report *entity.Report, chunks []*entity.ReportChunk) (*uuid.UUID, error)
	PurgeReport(ctx context.Context, reportId uuid.UUID) error
	UpdateReportProgress(ctx context.Context, report *entity.Report) error

	FindChunksByIndex(ctx context.Context, reportId uuid.UUID, limit int) ([]*entity.ReportChunk, error)
	SearchChunks(ctx context.Context, reportId uuid.UUID, embedding []float32, limit int) ([]*entity.ReportChunk, error)
	SupportsVectorSearch(ctx context.Context) bool

	AppendMessage(ctx context.Context, message *entity.Message) error
	FindMessages(ctx context.Context, reportId uuid.UUID) ([]*entity.Message, error)

	UsageStats(ctx context.Context) (*entity.UsageStats, error)
}
