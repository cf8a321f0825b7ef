package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByThreadID struct {
	ThreadID string
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}

type ByReportID struct {
	ReportID uuid.UUID
}

func (s ByReportID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("report_id = ?", s.ReportID)
}

// WithEmbedding keeps only chunks that were embedded at ingestion.
type WithEmbedding struct{}

func (s WithEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL")
}
