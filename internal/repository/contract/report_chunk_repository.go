package contract

import (
	"context"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReportChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.ReportChunk) error
	DeleteByReportId(ctx context.Context, reportId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReportChunk, error)
	SearchSimilar(ctx context.Context, reportId uuid.UUID, embedding []float32, limit int) ([]*entity.ReportChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
