package budget

import (
	"strings"

	"biomeai-be/pkg/llm"
)

const (
	DefaultTokenBudget = 12800
	DefaultKeepRecent  = 10

	wordsToTokens = 1.3
)

// EstimateTokens approximates the model token count of text as words * 1.3.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * wordsToTokens)
}

// EstimateMessages sums EstimateTokens over every message body.
func EstimateMessages(messages []llm.Message) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokens(m.Content)
	}
	return total
}

// Budgeter trims conversation history so a prompt fits the context window.
type Budgeter struct {
	Budget     int
	KeepRecent int
}

func NewBudgeter(budget, keepRecent int) *Budgeter {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecent
	}
	return &Budgeter{Budget: budget, KeepRecent: keepRecent}
}

// Fit returns system messages followed by history. When the estimate exceeds
// the budget every system message is kept together with the most recent
// KeepRecent non-system messages, in their original order.
func (b *Budgeter) Fit(system []llm.Message, history []llm.Message) []llm.Message {
	all := make([]llm.Message, 0, len(system)+len(history))
	all = append(all, system...)
	all = append(all, history...)

	if EstimateMessages(all) <= b.Budget {
		return all
	}

	var kept []llm.Message
	var conversation []llm.Message
	for _, m := range all {
		if m.Role == llm.RoleSystem {
			kept = append(kept, m)
			continue
		}
		conversation = append(conversation, m)
	}
	if len(conversation) > b.KeepRecent {
		conversation = conversation[len(conversation)-b.KeepRecent:]
	}

	return append(kept, conversation...)
}
