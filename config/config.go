package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, resolved once at startup from the
// environment (optionally seeded from a .env file).
type Config struct {
	AppPort     string
	GoEnv       string
	LogFilePath string

	DataDir string
	OutDir  string
	OrgName string

	ChunkSize       int
	ChunkOverlap    int
	WebChunkSize    int
	WebChunkOverlap int

	ScrapeURL       string
	CrawlerMaxPages int
	CrawlerDelaySec float64
	MaxBytes        int64
	MaxTextChars    int

	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingDim      int
	EmbedBatch        int

	LLMProvider string
	ChatModel   string
	RAGTopK     int

	OpenAIAPIKey  string
	GeminiAPIKey  string
	OllamaBaseURL string

	ChromaURL        string
	ChromaCollection string

	ReindexOnStart bool
	WatchEnabled   bool
	RetryMax       int
}

// Load reads the environment into a Config. Every setting has a usable
// default so a bare `go run .` against local services works.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		GoEnv:       getEnv("GO_ENV", "development"),
		LogFilePath: getEnv("LOG_FILE_PATH", ""),

		DataDir: getEnv("DATA_DIR", "data"),
		OutDir:  getEnv("OUT_DIR", "out"),
		OrgName: getEnv("ORG_NAME", "NDIS Support"),

		ChunkSize:       getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 100),
		WebChunkSize:    getEnvAsInt("WEB_CHUNK_SIZE", 2500),
		WebChunkOverlap: getEnvAsInt("WEB_CHUNK_OVERLAP", 100),

		ScrapeURL:       getEnv("SCRAPE_URL", ""),
		CrawlerMaxPages: getEnvAsInt("CRAWLER_MAX_PAGES", 50),
		CrawlerDelaySec: getEnvAsFloat("CRAWLER_DELAY_SEC", 1.0),
		MaxBytes:        getEnvAsInt64("MAX_BYTES", 2*1024*1024),
		MaxTextChars:    getEnvAsInt("MAX_TEXT_CHARS", 20000),

		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
		EmbeddingDim:      getEnvAsInt("EMBEDDING_DIM", 0),
		EmbedBatch:        getEnvAsInt("EMBED_BATCH", 16),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),
		ChatModel:   getEnv("CHAT_MODEL", ""),
		RAGTopK:     getEnvAsInt("RAG_TOP_K", 5),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),

		ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "ndis-docs"),

		ReindexOnStart: getEnvAsBool("REINDEX_ON_START", false),
		WatchEnabled:   getEnvAsBool("WATCH_ENABLED", true),
		RetryMax:       getEnvAsInt("RETRY_MAX", 3),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("WARN: invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("WARN: invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Printf("WARN: invalid number for %s, using default %v", key, fallback)
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("WARN: invalid boolean for %s, using default %v", key, fallback)
	}
	return fallback
}
