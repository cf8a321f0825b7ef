package contract

import (
	"context"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	UpdateProgress(ctx context.Context, report *entity.Report) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Report, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
