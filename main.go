package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/config"
	"github.com/ndisplan/ragserver/controller"
	"github.com/ndisplan/ragserver/corpus"
	"github.com/ndisplan/ragserver/crawler"
	"github.com/ndisplan/ragserver/embedding"
	"github.com/ndisplan/ragserver/llm"
	"github.com/ndisplan/ragserver/logger"
	"github.com/ndisplan/ragserver/services"
	"github.com/ndisplan/ragserver/vectorstore"
)

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create logger: %v", err)
	}
	defer logg.Sync()

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	// Chroma client for the vector index
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		logg.Fatal("failed to create chroma client", zap.Error(err))
	}
	defer func() {
		if cerr := chromaClient.Close(); cerr != nil {
			logg.Warn("failed to close chroma client", zap.Error(cerr))
		}
	}()

	embedder, err := embedding.New(cfg, httpClient)
	if err != nil {
		logg.Fatal("failed to create embedding provider", zap.Error(err))
	}

	chatProvider, err := llm.New(context.Background(), cfg)
	if err != nil {
		logg.Fatal("failed to create chat provider", zap.Error(err))
	}

	store := vectorstore.NewChroma(chromaClient, cfg.ChromaCollection, embedder.Dimension(), cfg.RetryMax, logg)
	if err := store.Connect(context.Background()); err != nil {
		logg.Fatal("failed to connect to collection", zap.Error(err))
	}

	builder := corpus.NewBuilder(cfg.DataDir, cfg.ChunkSize, cfg.ChunkOverlap, logg)
	siteCrawler := crawler.New(httpClient, crawler.Options{
		MaxPages:     cfg.CrawlerMaxPages,
		MaxBytes:     cfg.MaxBytes,
		MaxTextChars: cfg.MaxTextChars,
		ChunkSize:    cfg.WebChunkSize,
		ChunkOverlap: cfg.WebChunkOverlap,
		DelaySec:     cfg.CrawlerDelaySec,
	}, logg)
	batcher := embedding.NewBatcher(embedder, cfg.EmbedBatch, cfg.RetryMax, logg)

	ingestService := services.NewIngestService(cfg, builder, siteCrawler, batcher, store, logg)
	ragService := services.NewRAGService(cfg, embedder, store, chatProvider, logg)
	ragController := controller.NewRAGController(ragService, ingestService, logg)

	// Setup Gin router
	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginzap.Ginzap(logg, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logg, true))
	router.Use(requestID())

	// CORS middleware so the chat page can be served from elsewhere in dev
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/", ragController.ChatPage)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "NDIS RAG API",
			"version": "1.0.0",
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/plan", ragController.Plan)       // Ask a question over the corpus
		apiV1.POST("/reindex", ragController.Reindex) // Rebuild the index from scratch
		apiV1.GET("/stats", ragController.Stats)      // Indexed document count
	}

	ctx := context.Background()
	if cfg.ReindexOnStart {
		go func() {
			if _, rerr := ingestService.Reindex(ctx); rerr != nil {
				logg.Error("startup rebuild failed", zap.Error(rerr))
			}
		}()
	}
	if cfg.WatchEnabled {
		watchService := services.NewWatchService(ingestService, cfg.DataDir, logg)
		go watchService.WatchDirectory(ctx)
	}

	logg.Info("server starting",
		zap.String("port", cfg.AppPort),
		zap.String("collection", cfg.ChromaCollection))
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logg.Fatal("failed to start server", zap.Error(err))
	}
}

// requestID tags every request, reusing the caller's id when one is sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
