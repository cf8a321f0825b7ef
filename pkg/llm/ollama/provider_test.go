package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"biomeai-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Complete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           got.Model,
			Message:         ollamaMessage{Role: "assistant", Content: "Your Bacteroides levels look healthy."},
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       14,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	out, err := p.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "how is my gut?"},
	}, llm.WithMaxTokens(400))

	require.NoError(t, err)
	assert.Equal(t, "Your Bacteroides levels look healthy.", out.Text)
	assert.Equal(t, 120, out.InputTokens)
	assert.Equal(t, 14, out.OutputTokens)
	assert.Equal(t, "llama3", out.Model)
	assert.Equal(t, 400, got.Options.NumPredict)
	assert.Len(t, got.Messages, 2)
	assert.False(t, got.Stream)
}

func TestOllamaProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing")
	_, err := p.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrGeneration))
}

func TestOllamaProvider_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})

	assert.ErrorIs(t, err, llm.ErrGeneration)
}
