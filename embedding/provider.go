package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ndisplan/ragserver/config"
)

// Provider turns texts into vectors. Implementations return exactly one
// vector per input, in input order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// New selects the embedding backend from config. Model and dimension fall
// back to per-provider defaults when unset.
func New(cfg *config.Config, client *http.Client) (Provider, error) {
	switch strings.ToLower(cfg.EmbeddingProvider) {
	case "openai", "":
		model := cfg.EmbeddingModel
		if model == "" {
			model = "text-embedding-3-small"
		}
		dim := cfg.EmbeddingDim
		if dim == 0 {
			dim = 1536
		}
		return NewOpenAI(cfg.OpenAIAPIKey, model, dim)
	case "gemini":
		model := cfg.EmbeddingModel
		if model == "" {
			model = "text-embedding-004"
		}
		dim := cfg.EmbeddingDim
		if dim == 0 {
			dim = 768
		}
		return NewGemini(client, cfg.GeminiAPIKey, model, dim), nil
	case "ollama":
		model := cfg.EmbeddingModel
		if model == "" {
			model = "nomic-embed-text:v1.5"
		}
		dim := cfg.EmbeddingDim
		if dim == 0 {
			dim = 768
		}
		return NewOllama(client, cfg.OllamaBaseURL, model, dim), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.EmbeddingProvider)
	}
}
