package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	gpt4o := Rates{InputPer1K: 0.0025, OutputPer1K: 0.01}

	tests := []struct {
		name   string
		in     int
		out    int
		rates  Rates
		expect float64
	}{
		{"zero usage", 0, 0, gpt4o, 0},
		{"input only", 1000, 0, gpt4o, 0.0025},
		{"output only", 0, 1000, gpt4o, 0.01},
		{"typical answer", 1200, 350, gpt4o, 0.0065},
		{"zero rates", 5000, 5000, Rates{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, Cost(tt.in, tt.out, tt.rates), 1e-9)
		})
	}
}

func TestAccountant(t *testing.T) {
	a := NewAccountant(Rates{InputPer1K: 0.0025, OutputPer1K: 0.01}, 0.00002)

	assert.InDelta(t, 0.0035, a.ChatCost(1000, 100), 1e-9)
	assert.InDelta(t, 0.0002, a.EmbeddingCost(10000), 1e-12)
}
