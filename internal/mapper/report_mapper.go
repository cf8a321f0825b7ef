package mapper

import (
	"time"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

func (m *ReportMapper) ToEntity(r *model.Report) *entity.Report {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	metadata := map[string]interface{}{}
	for k, v := range r.Metadata {
		metadata[k] = v
	}

	return &entity.Report{
		Id:               r.Id,
		UserId:           r.UserId,
		ThreadId:         r.ThreadId,
		OriginalFilename: r.OriginalFilename,
		SampleDate:       r.SampleDate,
		Metadata:         metadata,
		Stage:            r.Stage,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *ReportMapper) ToModel(r *entity.Report) *model.Report {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	metadata := datatypes.JSONMap{}
	for k, v := range r.Metadata {
		metadata[k] = v
	}

	return &model.Report{
		Id:               r.Id,
		UserId:           r.UserId,
		ThreadId:         r.ThreadId,
		OriginalFilename: r.OriginalFilename,
		SampleDate:       r.SampleDate,
		Metadata:         metadata,
		Stage:            r.Stage,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *ReportMapper) ChunkToEntity(c *model.ReportChunk) *entity.ReportChunk {
	if c == nil {
		return nil
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	return &entity.ReportChunk{
		Id:         c.Id,
		ReportId:   c.ReportId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  embedding,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ReportMapper) ChunkToModel(c *entity.ReportChunk) *model.ReportChunk {
	if c == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	return &model.ReportChunk{
		Id:         c.Id,
		ReportId:   c.ReportId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  embedding,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ReportMapper) ChunksToEntities(chunks []*model.ReportChunk) []*entity.ReportChunk {
	entities := make([]*entity.ReportChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ChunkToEntity(c)
	}
	return entities
}

func (m *ReportMapper) ChunksToModels(chunks []*entity.ReportChunk) []*model.ReportChunk {
	models := make([]*model.ReportChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ChunkToModel(c)
	}
	return models
}
