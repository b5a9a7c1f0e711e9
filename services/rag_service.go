package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/config"
	"github.com/ndisplan/ragserver/embedding"
	"github.com/ndisplan/ragserver/llm"
	"github.com/ndisplan/ragserver/models"
	"github.com/ndisplan/ragserver/retry"
	"github.com/ndisplan/ragserver/vectorstore"
)

// RAGService answers questions over the document index.
type RAGService interface {
	Answer(ctx context.Context, query string) (*models.PlanResponse, error)
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	embedder   embedding.Provider
	store      vectorstore.Store
	chat       llm.Provider
	topK       int
	retryMax   int
	orgName    string
	collection string
	log        *zap.Logger
}

// NewRAGService creates a new RAG service instance
func NewRAGService(cfg *config.Config, embedder embedding.Provider, store vectorstore.Store, chat llm.Provider, log *zap.Logger) RAGService {
	return &ragServiceImpl{
		embedder:   embedder,
		store:      store,
		chat:       chat,
		topK:       cfg.RAGTopK,
		retryMax:   cfg.RetryMax,
		orgName:    cfg.OrgName,
		collection: cfg.ChromaCollection,
		log:        log.Named("rag"),
	}
}

// Answer runs the retrieval pipeline for one question: embed the query, pull
// the nearest chunks, assemble the numbered context and ask the chat model.
// With nothing retrieved (or a blank question) it returns the fixed
// no-context answer without calling the model.
func (r *ragServiceImpl) Answer(ctx context.Context, query string) (*models.PlanResponse, error) {
	hits, err := r.retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	contextBlock := BuildContext(hits)
	if contextBlock == "" {
		r.log.Info("no context retrieved", zap.String("query", query))
		return &models.PlanResponse{Answer: NoContextAnswer}, nil
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer the question using only the context above.", contextBlock, strings.TrimSpace(query))

	var answer string
	err = retry.Do(ctx, r.retryMax, func() error {
		a, cerr := r.chat.Answer(ctx, SystemPrompt(r.orgName), userPrompt)
		if cerr != nil {
			return cerr
		}
		answer = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate answer: %w", err)
	}

	r.log.Info("answered query",
		zap.String("query", query),
		zap.Int("context_chunks", len(hits)))
	return &models.PlanResponse{Answer: answer}, nil
}

// retrieve embeds the query and searches the store. A blank query returns no
// hits without touching the embedder or the store.
func (r *ragServiceImpl) retrieve(ctx context.Context, query string) ([]vectorstore.SearchHit, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	var vectors [][]float32
	err := retry.Do(ctx, r.retryMax, func() error {
		v, eerr := r.embedder.Embed(ctx, []string{q})
		if eerr != nil {
			return eerr
		}
		vectors = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	hits, err := r.store.Search(ctx, vectors[0], r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	r.log.Debug("retrieved documents", zap.Int("hits", len(hits)))
	return hits, nil
}

func (r *ragServiceImpl) Stats(ctx context.Context) (*models.StatsResponse, error) {
	count, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index stats: %w", err)
	}
	return &models.StatsResponse{
		Collection:       r.collection,
		IndexedDocuments: count,
	}, nil
}
