package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id                string // platform message id
	ReportId          uuid.UUID
	UserId            *string
	Role              string
	Content           string
	InputTokens       int
	OutputTokens      int
	CostUsd           float64
	RetrievedChunkIds []string
	Sequence          int64
	CreatedAt         time.Time
}

type UsageStats struct {
	Users        int64
	Reports      int64
	Messages     int64
	TotalCostUsd float64
}
