package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTripsEnvelope(t *testing.T) {
	evt := NewStageAdvanced("r-1", "awaiting_antibiotics", "awaiting_diet_prediction")
	data, err := json.Marshal(evt)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeStageAdvanced, got.EventType())
	assert.Equal(t, "awaiting_diet_prediction", got.Payload()["to_stage"])
	assert.True(t, evt.OccurredAt.Equal(got.Timestamp()))
}

func TestDecode_RejectsUntyped(t *testing.T) {
	_, err := Decode([]byte(`{"data": {}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewUsageRecorded(t *testing.T) {
	evt := NewUsageRecorded("r-1", "m-1", 100, 20, 0.00045)

	assert.Equal(t, TypeUsageRecorded, evt.EventType())
	assert.Equal(t, 100, evt.Payload()["input_tokens"])
	assert.Equal(t, 0.00045, evt.Payload()["cost_usd"])
}
