package store

import (
	"context"
	"fmt"
	"sync"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/repository/specification"
	"biomeai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements contract.Datastore on Postgres through the unit of work.
type GormStore struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory

	vectorOnce sync.Once
	vectorOK   bool
}

var _ contract.Datastore = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:         db,
		uowFactory: unitofwork.NewRepositoryFactory(db),
	}
}

func (s *GormStore) UpsertUser(ctx context.Context, user *entity.User) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().Upsert(ctx, user)
}

func (s *GormStore) FindReportByThreadId(ctx context.Context, threadId string) (*entity.Report, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ReportRepository().FindOne(ctx, specification.ByThreadID{ThreadID: threadId})
}

func (s *GormStore) ReplaceReport(ctx context.Context, report *entity.Report, chunks []*entity.ReportChunk) (*uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// 1. Purge the prior report on this thread, if any
	var purged *uuid.UUID
	existing, err := uow.ReportRepository().FindOne(ctx, specification.ByThreadID{ThreadID: report.ThreadId})
	if err != nil {
		return nil, fmt.Errorf("find existing report: %w", err)
	}
	if existing != nil {
		if existing.UserId != report.UserId {
			return nil, contract.ErrThreadOwnedByAnotherUser
		}
		if err := purge(ctx, uow, existing.Id); err != nil {
			return nil, err
		}
		id := existing.Id
		purged = &id
	}

	// 2. Create the report, then its chunks
	if report.Id == uuid.Nil {
		report.Id = uuid.New()
	}
	if err := uow.ReportRepository().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	for _, c := range chunks {
		c.ReportId = report.Id
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
	}
	if err := uow.ReportChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, fmt.Errorf("create chunks: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return purged, nil
}

func (s *GormStore) PurgeReport(ctx context.Context, reportId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := purge(ctx, uow, reportId); err != nil {
		return err
	}
	return uow.Commit()
}

func purge(ctx context.Context, uow unitofwork.UnitOfWork, reportId uuid.UUID) error {
	if err := uow.MessageRepository().DeleteByReportId(ctx, reportId); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := uow.ReportChunkRepository().DeleteByReportId(ctx, reportId); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := uow.ReportRepository().Delete(ctx, reportId); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateReportProgress(ctx context.Context, report *entity.Report) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ReportRepository().UpdateProgress(ctx, report)
}

func (s *GormStore) FindChunksByIndex(ctx context.Context, reportId uuid.UUID, limit int) ([]*entity.ReportChunk, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ReportChunkRepository().FindAll(ctx,
		specification.ByReportID{ReportID: reportId},
		specification.OrderBy{Field: "chunk_index"},
		specification.Limit{Limit: limit},
	)
}

func (s *GormStore) SearchChunks(ctx context.Context, reportId uuid.UUID, embedding []float32, limit int) ([]*entity.ReportChunk, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ReportChunkRepository().SearchSimilar(ctx, reportId, embedding, limit)
}

// SupportsVectorSearch reports whether the pgvector extension is installed.
// The answer is computed once per process.
func (s *GormStore) SupportsVectorSearch(ctx context.Context) bool {
	s.vectorOnce.Do(func() {
		var count int64
		err := s.db.WithContext(ctx).
			Raw("SELECT COUNT(*) FROM pg_extension WHERE extname = ?", "vector").
			Scan(&count).Error
		s.vectorOK = err == nil && count > 0
	})
	return s.vectorOK
}

func (s *GormStore) AppendMessage(ctx context.Context, message *entity.Message) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MessageRepository().Create(ctx, message)
}

func (s *GormStore) FindMessages(ctx context.Context, reportId uuid.UUID) ([]*entity.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MessageRepository().FindAll(ctx,
		specification.ByReportID{ReportID: reportId},
		specification.OrderBy{Field: "sequence"},
	)
}

func (s *GormStore) UsageStats(ctx context.Context) (*entity.UsageStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := uow.ReportRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := uow.MessageRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	cost, err := uow.MessageRepository().SumCost(ctx)
	if err != nil {
		return nil, err
	}

	return &entity.UsageStats{
		Users:        users,
		Reports:      reports,
		Messages:     messages,
		TotalCostUsd: cost,
	}, nil
}
