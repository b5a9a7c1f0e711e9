package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Answer runs a single-turn chat with the system prompt installed as the
// session instruction.
func (p *GeminiProvider) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	chat, err := p.client.Chats.Create(ctx, p.model, &genai.GenerateContentConfig{
		SystemInstruction: systemContent(systemPrompt),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("could not start chat session: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: userPrompt})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini chat returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func systemContent(prompt string) *genai.Content {
	contents := genai.Text(prompt)
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}
