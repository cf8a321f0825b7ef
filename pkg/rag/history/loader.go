package history

import (
	"context"

	"biomeai-be/internal/constant"
	"biomeai-be/internal/entity"
	"biomeai-be/pkg/llm"

	"github.com/google/uuid"
)

// MessageSource lists a report's messages in append order.
type MessageSource interface {
	FindMessages(ctx context.Context, reportId uuid.UUID) ([]*entity.Message, error)
}

// Loader handles conversation history for LLM context
type Loader struct {
	source MessageSource
}

// NewLoader creates a new history loader
func NewLoader(source MessageSource) *Loader {
	return &Loader{source: source}
}

// LoadConversationHistory returns the full conversation of a report, oldest first.
// Trimming to the context window is the budgeter's job.
func (l *Loader) LoadConversationHistory(ctx context.Context, reportId uuid.UUID) ([]llm.Message, error) {
	stored, err := l.source.FindMessages(ctx, reportId)
	if err != nil {
		return nil, err
	}
	return ToLLMMessages(stored), nil
}

func ToLLMMessages(stored []*entity.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(stored))
	for _, m := range stored {
		role := llm.RoleUser
		if m.Role == constant.MessageRoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: m.Content,
		})
	}
	return messages
}
