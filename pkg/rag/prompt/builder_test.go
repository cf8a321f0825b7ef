package prompt

import (
	"strings"
	"testing"

	"biomeai-be/internal/constant"
	"biomeai-be/pkg/llm"
	"biomeai-be/pkg/rag/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemMessages(t *testing.T) {
	b := NewBuilder("")

	bare := b.SystemMessages(nil)
	require.Len(t, bare, 1)
	assert.Equal(t, constant.AnalystSystemPrompt, bare[0].Content)

	withContext := b.SystemMessages([]string{"Shannon index 3.1", "Akkermansia low"})
	require.Len(t, withContext, 2)
	assert.Equal(t, llm.RoleSystem, withContext[1].Role)
	assert.True(t, strings.HasPrefix(withContext[1].Content, constant.ReportContextHeader))
	assert.Contains(t, withContext[1].Content, "Report Section: Shannon index 3.1\n\nReport Section: Akkermansia low")
}

func TestStageMessages_IncludesLifestyleAndChunks(t *testing.T) {
	b := NewBuilder("persona")
	metadata := map[string]interface{}{
		"lab_name":            "Viome",
		state.KeyAntibiotics:  "none",
		state.KeyDiet:         "keto",
		"diversity_metrics":   map[string]interface{}{"shannon": 2.9},
		"unrelated_internal":  "ignored",
		state.KeySymptoms:     "",
	}

	msgs, err := b.StageMessages(state.ActionExecutiveSummary, []string{"Bifidobacterium 0.2%"}, metadata)

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "persona", msgs[0].Content)
	body := msgs[1].Content
	assert.Contains(t, body, "Lab: Viome")
	assert.Contains(t, body, "Recent antibiotics: none")
	assert.Contains(t, body, "Diet: keto")
	assert.Contains(t, body, "Diversity shannon: 2.9")
	assert.Contains(t, body, "Report Section: Bifidobacterium 0.2%")
	assert.NotContains(t, body, "Digestive symptoms:")
	assert.NotContains(t, body, "ignored")
}

func TestStageMessages_EmptyContext(t *testing.T) {
	msgs, err := NewBuilder("").StageMessages(state.ActionDietPrediction, nil, nil)

	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "No additional lifestyle information provided.")
	assert.Contains(t, msgs[1].Content, "(no report sections available)")
}

func TestStageMessages_RejectsAnswerAction(t *testing.T) {
	_, err := NewBuilder("").StageMessages(state.ActionAnswer, nil, nil)
	assert.Error(t, err)
}
