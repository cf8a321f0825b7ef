package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ReportChunk struct {
	Id         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReportId   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChunkIndex int              `gorm:"not null"` // 0-based, contiguous per report
	Content    string           `gorm:"type:text;not null"`
	Embedding  *pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small
	CreatedAt  time.Time        `gorm:"autoCreateTime"`
}

func (ReportChunk) TableName() string {
	return "report_chunks"
}
