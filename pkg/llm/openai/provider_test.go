package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"biomeai-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Key Finding: low diversity."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 812, "completion_tokens": 96, "total_tokens": 908}
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "gpt-4o", srv.URL)
	out, err := p.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "summarize"}}, llm.WithMaxTokens(800))

	require.NoError(t, err)
	assert.Equal(t, "Key Finding: low diversity.", out.Text)
	assert.Equal(t, 812, out.InputTokens)
	assert.Equal(t, 96, out.OutputTokens)
	assert.Equal(t, "gpt-4o", body["model"])
	assert.EqualValues(t, 800, body["max_tokens"])
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("sk-test", "gpt-4o", srv.URL).Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})

	assert.ErrorIs(t, err, llm.ErrGeneration)
}
