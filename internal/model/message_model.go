package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Message struct {
	Id                string         `gorm:"type:varchar(64);primaryKey"`
	ReportId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId            *string        `gorm:"type:varchar(64)"`
	Role              string         `gorm:"type:varchar(20);not null"`
	Content           string         `gorm:"type:text;not null"`
	InputTokens       int            `gorm:"default:0"`
	OutputTokens      int            `gorm:"default:0"`
	CostUsd           float64        `gorm:"type:numeric(10,6);default:0"`
	RetrievedChunkIds pq.StringArray `gorm:"type:text[]"`
	Sequence          int64          `gorm:"type:bigserial;->"` // append order, assigned by postgres
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
