package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndisplan/ragserver/config"
)

// Provider produces one grounded answer per call. Implementations keep no
// conversation state.
type Provider interface {
	Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New selects the chat backend from config, falling back to a per-provider
// default model when CHAT_MODEL is unset.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai", "":
		model := cfg.ChatModel
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAI(cfg.OpenAIAPIKey, model)
	case "gemini":
		model := cfg.ChatModel
		if model == "" {
			model = "gemini-2.5-flash"
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, model)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.LLMProvider)
	}
}
