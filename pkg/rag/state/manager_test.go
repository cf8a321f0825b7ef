package state

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(log.New(io.Discard, "", 0))
}

func TestManager_ProgressionReachesOpenQA(t *testing.T) {
	m := newTestManager()
	stage := InitialStage
	metadata := map[string]interface{}{}

	answers := []string{"no antibiotics", "mostly vegetarian", "some bloating"}
	expected := []Stage{StageAwaitingDietPrediction, StageAwaitingSymptomsPrediction, StageExecutiveSummaryReady}

	for i, answer := range answers {
		tr, err := m.Next(stage)
		require.NoError(t, err)
		stage, metadata = m.Apply(tr, metadata, answer)
		assert.Equal(t, expected[i], stage)
	}

	tr, err := m.Next(stage)
	require.NoError(t, err)
	assert.Equal(t, ActionAnswer, tr.Action)
	stage, _ = m.Apply(tr, metadata, "what about fiber?")
	assert.Equal(t, StageOpenQA, stage)

	for i := 0; i < 3; i++ {
		tr, err = m.Next(stage)
		require.NoError(t, err)
		stage, _ = m.Apply(tr, metadata, "another question")
		assert.Equal(t, StageOpenQA, stage)
		assert.True(t, stage.IsTerminal())
	}

	assert.Equal(t, "no antibiotics", metadata[KeyAntibiotics])
	assert.Equal(t, "mostly vegetarian", metadata[KeyDiet])
	assert.Equal(t, "some bloating", metadata[KeySymptoms])
}

func TestManager_ApplyDoesNotMutateInput(t *testing.T) {
	m := newTestManager()
	tr, err := m.Next(StageAwaitingAntibiotics)
	require.NoError(t, err)

	original := map[string]interface{}{"lab_name": "Viome"}
	_, next := m.Apply(tr, original, "yes, amoxicillin")

	assert.Len(t, original, 1)
	assert.Equal(t, "yes, amoxicillin", next[KeyAntibiotics])
	assert.Equal(t, "Viome", next["lab_name"])
}

func TestManager_AnswerStagesRecordNothing(t *testing.T) {
	m := newTestManager()
	tr, err := m.Next(StageOpenQA)
	require.NoError(t, err)

	_, next := m.Apply(tr, map[string]interface{}{}, "question")

	assert.Empty(t, next)
	assert.Empty(t, tr.RetrievalQuery)
}

func TestParse(t *testing.T) {
	for _, s := range []Stage{StageAwaitingAntibiotics, StageAwaitingDietPrediction, StageAwaitingSymptomsPrediction, StageExecutiveSummaryReady, StageOpenQA} {
		got, err := Parse(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := Parse("completed")
	assert.Error(t, err)
}
