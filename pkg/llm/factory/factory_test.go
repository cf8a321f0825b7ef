package factory

import (
	"testing"

	"biomeai-be/pkg/llm/ollama"
	"biomeai-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		p, err := NewLLMProvider("openai", "gpt-4o", "", "sk-test")
		require.NoError(t, err)
		assert.IsType(t, &openai.OpenAIProvider{}, p)
		assert.Equal(t, "gpt-4o", p.Name())
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := NewLLMProvider("openai", "gpt-4o", "", "")
		assert.Error(t, err)
	})

	t.Run("huggingface uses the compatible client", func(t *testing.T) {
		p, err := NewLLMProvider("huggingface", "meta-llama/Llama-3.1-8B-Instruct", "", "hf_test")
		require.NoError(t, err)
		assert.IsType(t, &openai.OpenAIProvider{}, p)
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		p, err := NewLLMProvider("ollama", "llama3", "", "")
		require.NoError(t, err)
		assert.IsType(t, &ollama.OllamaProvider{}, p)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewLLMProvider("gemini", "x", "", "k")
		assert.ErrorContains(t, err, "unsupported LLM provider")
	})
}
