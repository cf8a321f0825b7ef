package embedding

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements EmbeddingProvider on the OpenAI embeddings endpoint
type OpenAIProvider struct {
	client     *goopenai.Client
	Model      string
	dimensions int
}

func NewOpenAIProvider(apiKey, model string, dimensions int, baseURL string) EmbeddingProvider {
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dimensions <= 0 {
		dimensions = 1536
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIProvider{
		client:     goopenai.NewClientWithConfig(cfg),
		Model:      model,
		dimensions: dimensions,
	}
}

func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrEmbedding)
	}

	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:      []string{text},
		Model:      goopenai.EmbeddingModel(p.Model),
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrEmbedding)
	}
	if len(resp.Data[0].Embedding) != p.dimensions {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrEmbedding, len(resp.Data[0].Embedding), p.dimensions)
	}

	return NormalizeVector(resp.Data[0].Embedding), nil
}
