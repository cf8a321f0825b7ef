package message

import (
	"biomeai-be/internal/constant"
	"biomeai-be/internal/entity"
	"biomeai-be/pkg/llm"

	"github.com/google/uuid"
)

// Factory builds message records for the append-only conversation log
type Factory struct{}

// NewFactory creates a new message factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateUserMessage records inbound text under the platform's message id
func (f *Factory) CreateUserMessage(id string, reportId uuid.UUID, userId string, content string) *entity.Message {
	uid := userId
	return &entity.Message{
		Id:       id,
		ReportId: reportId,
		UserId:   &uid,
		Role:     constant.MessageRoleUser,
		Content:  content,
	}
}

// CreateAssistantMessage records a reply under the id of its first delivered segment
func (f *Factory) CreateAssistantMessage(id string, reportId uuid.UUID, content string, usage *llm.Completion, costUsd float64, chunkIds []string) *entity.Message {
	m := &entity.Message{
		Id:                id,
		ReportId:          reportId,
		Role:              constant.MessageRoleAssistant,
		Content:           content,
		CostUsd:           costUsd,
		RetrievedChunkIds: chunkIds,
	}
	if usage != nil {
		m.InputTokens = usage.InputTokens
		m.OutputTokens = usage.OutputTokens
	}
	return m
}
