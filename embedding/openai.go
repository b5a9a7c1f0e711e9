package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider embeds through the OpenAI embeddings API, which accepts a
// whole batch in one call.
type OpenAIProvider struct {
	llm       *openai.LLM
	dimension int
}

func NewOpenAI(apiKey, model string, dimension int) (*OpenAIProvider, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return &OpenAIProvider{llm: llm, dimension: dimension}, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("openai embedding call failed: %w", err)
	}
	return vectors, nil
}

func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}
