package implementation

import (
	"context"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/mapper"
	"biomeai-be/internal/model"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ReportChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReportMapper
}

func NewReportChunkRepository(db *gorm.DB) contract.ReportChunkRepository {
	return &ReportChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewReportMapper(),
	}
}

func (r *ReportChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReportChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ReportChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ChunksToModels(chunks)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *ReportChunkRepositoryImpl) DeleteByReportId(ctx context.Context, reportId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("report_id = ?", reportId).Delete(&model.ReportChunk{}).Error
}

func (r *ReportChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReportChunk, error) {
	var models []*model.ReportChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChunksToEntities(models), nil
}

// SearchSimilar orders the report's embedded chunks by cosine distance to the query vector.
func (r *ReportChunkRepositoryImpl) SearchSimilar(ctx context.Context, reportId uuid.UUID, embedding []float32, limit int) ([]*entity.ReportChunk, error) {
	var models []*model.ReportChunk
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByReportID{ReportID: reportId},
		specification.WithEmbedding{},
		specification.Limit{Limit: limit},
	)
	err := query.Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ChunksToEntities(models), nil
}

func (r *ReportChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReportChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
