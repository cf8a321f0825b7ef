package state

import (
	"fmt"
	"log"
)

// Stage is the position of a report in the guided conversation.
type Stage string

const (
	StageAwaitingAntibiotics        Stage = "awaiting_antibiotics"
	StageAwaitingDietPrediction     Stage = "awaiting_diet_prediction"
	StageAwaitingSymptomsPrediction Stage = "awaiting_symptoms_prediction"
	StageExecutiveSummaryReady      Stage = "executive_summary_ready"
	StageOpenQA                     Stage = "open_qa"

	InitialStage = StageAwaitingAntibiotics
)

// Action is what the assistant produces on a transition.
type Action string

const (
	ActionDietPrediction     Action = "diet_prediction"
	ActionSymptomsPrediction Action = "symptoms_prediction"
	ActionExecutiveSummary   Action = "executive_summary"
	ActionAnswer             Action = "answer"
)

// Metadata keys written while the report moves through its stages.
const (
	KeyAntibiotics = "antibiotics_response"
	KeyDiet        = "diet_response"
	KeySymptoms    = "symptoms_response"
)

// Transition describes how an inbound message is handled in a given stage.
// MetadataKey is empty when the message is not recorded as an answer.
// RetrievalQuery is empty when the inbound message itself is the query.
type Transition struct {
	From           Stage
	To             Stage
	MetadataKey    string
	Action         Action
	RetrievalQuery string
}

var transitions = map[Stage]Transition{
	StageAwaitingAntibiotics: {
		From:           StageAwaitingAntibiotics,
		To:             StageAwaitingDietPrediction,
		MetadataKey:    KeyAntibiotics,
		Action:         ActionDietPrediction,
		RetrievalQuery: "diet microbiome bacteria",
	},
	StageAwaitingDietPrediction: {
		From:           StageAwaitingDietPrediction,
		To:             StageAwaitingSymptomsPrediction,
		MetadataKey:    KeyDiet,
		Action:         ActionSymptomsPrediction,
		RetrievalQuery: "digestive symptoms bloating bacteria",
	},
	StageAwaitingSymptomsPrediction: {
		From:           StageAwaitingSymptomsPrediction,
		To:             StageExecutiveSummaryReady,
		MetadataKey:    KeySymptoms,
		Action:         ActionExecutiveSummary,
		RetrievalQuery: "key findings diversity dysbiosis recommendations",
	},
	StageExecutiveSummaryReady: {
		From:   StageExecutiveSummaryReady,
		To:     StageOpenQA,
		Action: ActionAnswer,
	},
	StageOpenQA: {
		From:   StageOpenQA,
		To:     StageOpenQA,
		Action: ActionAnswer,
	},
}

// Parse validates a stored stage value.
func Parse(s string) (Stage, error) {
	stage := Stage(s)
	if _, ok := transitions[stage]; !ok {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return stage, nil
}

func (s Stage) IsTerminal() bool {
	return s == StageOpenQA
}

func (s Stage) String() string {
	return string(s)
}

// Manager resolves and applies stage transitions
type Manager struct {
	logger *log.Logger
}

// NewManager creates a new state manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger}
}

// Next returns the transition for stage.
func (m *Manager) Next(stage Stage) (Transition, error) {
	t, ok := transitions[stage]
	if !ok {
		return Transition{}, fmt.Errorf("no transition from stage %q", stage)
	}
	return t, nil
}

// Apply returns a copy of metadata with the inbound answer recorded, and the
// stage the report moves to. The input map is not modified.
func (m *Manager) Apply(t Transition, metadata map[string]interface{}, answer string) (Stage, map[string]interface{}) {
	next := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		next[k] = v
	}
	if t.MetadataKey != "" {
		next[t.MetadataKey] = answer
	}
	if t.From != t.To {
		m.logger.Printf("[STATE] %s -> %s", t.From, t.To)
	}
	return t.To, next
}
