package factory

import (
	"biomeai-be/pkg/llm"
	"biomeai-be/pkg/llm/ollama"
	"biomeai-be/pkg/llm/openai"
	"fmt"
)

// DefaultHuggingFaceURL is the OpenAI-compatible inference router.
const DefaultHuggingFaceURL = "https://router.huggingface.co/v1"

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(apiKey, modelName, baseURL), nil
	case "huggingface":
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		if baseURL == "" {
			baseURL = DefaultHuggingFaceURL
		}
		return openai.NewOpenAIProvider(apiKey, modelName, baseURL), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
