package dto

import (
	"time"

	"github.com/google/uuid"
)

type OutboundMessage struct {
	Id        string    `json:"id"`
	ChannelId string    `json:"channel_id"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

type UploadReportResponse struct {
	ReportId         uuid.UUID         `json:"report_id"`
	ThreadId         string            `json:"thread_id"`
	Chunks           int               `json:"chunks"`
	Embedded         int               `json:"embedded"`
	ReplacedReportId *uuid.UUID        `json:"replaced_report_id,omitempty"`
	Messages         []OutboundMessage `json:"messages"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type SendMessageResponse struct {
	ReportId     uuid.UUID         `json:"report_id"`
	FromStage    string            `json:"from_stage"`
	Stage        string            `json:"stage"`
	Action       string            `json:"action"`
	Retrieval    string            `json:"retrieval"`
	ChunkIds     []string          `json:"chunk_ids"`
	InputTokens  int               `json:"input_tokens"`
	OutputTokens int               `json:"output_tokens"`
	CostUsd      float64           `json:"cost_usd"`
	Messages     []OutboundMessage `json:"messages"`
}

type ReportResponse struct {
	Id               uuid.UUID              `json:"id"`
	ThreadId         string                 `json:"thread_id"`
	OriginalFilename string                 `json:"original_filename"`
	SampleDate       *time.Time             `json:"sample_date,omitempty"`
	Stage            string                 `json:"stage"`
	Metadata         map[string]interface{} `json:"metadata"`
	CreatedAt        time.Time              `json:"created_at"`
}

type MessageResponse struct {
	Id                string    `json:"id"`
	Role              string    `json:"role"`
	Content           string    `json:"content"`
	InputTokens       int       `json:"input_tokens"`
	OutputTokens      int       `json:"output_tokens"`
	CostUsd           float64   `json:"cost_usd"`
	RetrievedChunkIds []string  `json:"retrieved_chunk_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Report   ReportResponse    `json:"report"`
	Messages []MessageResponse `json:"messages"`
}

type UsageStatsResponse struct {
	Users        int64   `json:"users"`
	Reports      int64   `json:"reports"`
	Messages     int64   `json:"messages"`
	TotalCostUsd float64 `json:"total_cost_usd"`
}

type LogQueryRequest struct {
	Level  string `query:"level" validate:"omitempty,oneof=debug info warn error"`
	Module string `query:"module"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
