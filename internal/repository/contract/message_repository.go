package contract

import (
	"context"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	DeleteByReportId(ctx context.Context, reportId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SumCost(ctx context.Context) (float64, error)
}
