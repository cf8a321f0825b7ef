package mapper

import (
	"biomeai-be/internal/entity"
	"biomeai-be/internal/model"

	"github.com/lib/pq"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:                msg.Id,
		ReportId:          msg.ReportId,
		UserId:            msg.UserId,
		Role:              msg.Role,
		Content:           msg.Content,
		InputTokens:       msg.InputTokens,
		OutputTokens:      msg.OutputTokens,
		CostUsd:           msg.CostUsd,
		RetrievedChunkIds: []string(msg.RetrievedChunkIds),
		Sequence:          msg.Sequence,
		CreatedAt:         msg.CreatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:                msg.Id,
		ReportId:          msg.ReportId,
		UserId:            msg.UserId,
		Role:              msg.Role,
		Content:           msg.Content,
		InputTokens:       msg.InputTokens,
		OutputTokens:      msg.OutputTokens,
		CostUsd:           msg.CostUsd,
		RetrievedChunkIds: pq.StringArray(msg.RetrievedChunkIds),
		Sequence:          msg.Sequence,
		CreatedAt:         msg.CreatedAt,
	}
}

func (m *MessageMapper) ToEntities(messages []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(messages))
	for i, msg := range messages {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
