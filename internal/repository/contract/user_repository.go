package contract

import (
	"context"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/specification"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
