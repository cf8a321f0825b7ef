package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrGeneration is returned by providers when the model call fails or yields no text.
var ErrGeneration = errors.New("generation failed")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Completion is a generated reply together with the token usage the backend reported.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// NewOptions applies opts over the provider defaults.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Complete sends a chat history to the model and returns the reply with usage
	Complete(ctx context.Context, messages []Message, options ...Option) (*Completion, error)

	// Name reports the model used when no override is given
	Name() string
}
