package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Answers stay close to the retrieved text: low temperature, bounded length.
const (
	chatTemperature = 0.2
	chatMaxTokens   = 400
)

type OpenAIProvider struct {
	llm *openai.LLM
}

func NewOpenAI(apiKey, model string) (*OpenAIProvider, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return &OpenAIProvider{llm: llm}, nil
}

func (p *OpenAIProvider) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := p.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(chatTemperature),
		llms.WithMaxTokens(chatMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("openai chat call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat returned no choices")
	}
	return resp.Choices[0].Content, nil
}
