package unitofwork

import (
	"context"

	"biomeai-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ReportRepository() contract.ReportRepository
	ReportChunkRepository() contract.ReportChunkRepository
	MessageRepository() contract.MessageRepository
}
