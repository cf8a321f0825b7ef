package entity

import (
	"time"

	"github.com/google/uuid"
)

type Report struct {
	Id               uuid.UUID
	UserId           string
	ThreadId         string
	OriginalFilename string
	SampleDate       *time.Time
	Metadata         map[string]interface{}
	Stage            string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// MetadataString returns the metadata value for key when it is a non-empty string.
func (r *Report) MetadataString(key string) string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	if s, ok := r.Metadata[key].(string); ok {
		return s
	}
	return ""
}

type ReportChunk struct {
	Id         uuid.UUID
	ReportId   uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  []float32 // nil when the embedding call failed
	CreatedAt  time.Time
}
