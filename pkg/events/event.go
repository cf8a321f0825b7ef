package events

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	TypeReportIngested = "REPORT_INGESTED"
	TypeStageAdvanced  = "STAGE_ADVANCED"
	TypeUsageRecorded  = "USAGE_RECORDED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STAGE_ADVANCED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Decode parses a JSON envelope produced by marshalling a BaseEvent.
func Decode(data []byte) (BaseEvent, error) {
	var event BaseEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return BaseEvent{}, err
	}
	if event.Type == "" {
		return BaseEvent{}, errors.New("event envelope has no type")
	}
	return event, nil
}

func NewReportIngested(reportId, userId, threadId string, chunks, embedded int) BaseEvent {
	return BaseEvent{
		Type: TypeReportIngested,
		Data: map[string]interface{}{
			"report_id": reportId,
			"user_id":   userId,
			"thread_id": threadId,
			"chunks":    chunks,
			"embedded":  embedded,
		},
		OccurredAt: time.Now(),
	}
}

func NewStageAdvanced(reportId, from, to string) BaseEvent {
	return BaseEvent{
		Type: TypeStageAdvanced,
		Data: map[string]interface{}{
			"report_id":  reportId,
			"from_stage": from,
			"to_stage":   to,
		},
		OccurredAt: time.Now(),
	}
}

func NewUsageRecorded(reportId, messageId string, inputTokens, outputTokens int, costUsd float64) BaseEvent {
	return BaseEvent{
		Type: TypeUsageRecorded,
		Data: map[string]interface{}{
			"report_id":     reportId,
			"message_id":    messageId,
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
			"cost_usd":      costUsd,
		},
		OccurredAt: time.Now(),
	}
}
