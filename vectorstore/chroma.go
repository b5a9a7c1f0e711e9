package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/retry"
)

const (
	uploadBatchSize = 500
	// The index keeps at most this many characters of a chunk.
	maxContentChars = 32766
)

// ChromaStore implements Store on a Chroma collection. The collection handle
// is replaced on every Reset/EnsureSchema cycle, so access goes through a
// lock shared with the query path.
type ChromaStore struct {
	client    chromago.Client
	name      string
	dimension int
	retryMax  int
	log       *zap.Logger

	mu  sync.RWMutex
	col chromago.Collection
}

func NewChroma(client chromago.Client, name string, dimension, retryMax int, log *zap.Logger) *ChromaStore {
	return &ChromaStore{
		client:    client,
		name:      name,
		dimension: dimension,
		retryMax:  retryMax,
		log:       log.Named("chroma"),
	}
}

// Connect binds to the collection so queries work before the first rebuild,
// creating it if this is a fresh database.
func (s *ChromaStore) Connect(ctx context.Context) error {
	return s.EnsureSchema(ctx)
}

// Reset drops the collection. A collection that does not exist yet counts as
// already reset.
func (s *ChromaStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.col = nil
	s.mu.Unlock()

	err := s.client.DeleteCollection(ctx, s.name)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete collection %s: %w", s.name, err)
	}
	s.log.Info("collection reset", zap.String("collection", s.name))
	return nil
}

// EnsureSchema creates the collection with cosine distance and records the
// embedding dimension in its metadata, then swaps the live handle.
func (s *ChromaStore) EnsureSchema(ctx context.Context) error {
	col, err := s.client.GetOrCreateCollection(
		ctx,
		s.name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
				chromago.NewIntAttribute("embedding_dim", int64(s.dimension)),
				chromago.NewStringAttribute("created_by", "ragserver"),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to get or create collection %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.col = col
	s.mu.Unlock()

	s.log.Info("collection ready",
		zap.String("collection", s.name),
		zap.Int("dimension", s.dimension))
	return nil
}

// Upload pushes documents in batches. Ids are sanitised and content capped
// here, at the index boundary; a vector of the wrong width fails the whole
// upload before anything is sent.
func (s *ChromaStore) Upload(ctx context.Context, docs []Document) (int, error) {
	col, err := s.collection()
	if err != nil {
		return 0, err
	}

	for _, doc := range docs {
		if len(doc.Embedding) != s.dimension {
			return 0, fmt.Errorf("document %s has embedding of %d dims, index expects %d", doc.ID, len(doc.Embedding), s.dimension)
		}
	}

	uploaded := 0
	for start := 0; start < len(docs); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		ids := make([]chromago.DocumentID, len(batch))
		texts := make([]string, len(batch))
		embeds := make([]embeddings.Embedding, len(batch))
		metas := make([]chromago.DocumentMetadata, len(batch))
		for i, doc := range batch {
			ids[i] = chromago.DocumentID(SanitizeDocumentKey(doc.ID))
			texts[i] = capContent(doc.Content)
			embeds[i] = embeddings.NewEmbeddingFromFloat32(doc.Embedding)
			metas[i] = documentMetadata(doc)
		}

		err := retry.Do(ctx, s.retryMax, func() error {
			return col.Add(ctx,
				chromago.WithIDs(ids...),
				chromago.WithTexts(texts...),
				chromago.WithEmbeddings(embeds...),
				chromago.WithMetadatas(metas...),
			)
		})
		if err != nil {
			return uploaded, fmt.Errorf("failed to add batch starting at document %d: %w", start, err)
		}
		uploaded += len(batch)
		s.log.Debug("batch uploaded", zap.Int("from", start), zap.Int("count", len(batch)))
	}

	s.log.Info("upload finished", zap.Int("documents", uploaded))
	return uploaded, nil
}

func documentMetadata(doc Document) chromago.DocumentMetadata {
	attrs := []*chromago.MetaAttribute{
		chromago.NewStringAttribute("source", sourceOrLocal(doc.Source)),
		chromago.NewStringAttribute("source_type", doc.SourceType),
		chromago.NewIntAttribute("chunk_index", int64(doc.ChunkIndex)),
	}
	if doc.Title != "" {
		attrs = append(attrs, chromago.NewStringAttribute("title", doc.Title))
	}
	if doc.Page > 0 {
		attrs = append(attrs, chromago.NewIntAttribute("page", int64(doc.Page)))
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// Search embeds vector-only nearest-neighbour retrieval; hits keep the
// store's ranking order.
func (s *ChromaStore) Search(ctx context.Context, vector []float32, k int) ([]SearchHit, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query embedding has %d dims, index expects %d", len(vector), s.dimension)
	}
	if k < 1 {
		return nil, nil
	}

	var results chromago.QueryResult
	err = retry.Do(ctx, s.retryMax, func() error {
		r, qerr := col.Query(ctx,
			chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
			chromago.WithNResults(k),
		)
		if qerr != nil {
			return qerr
		}
		results = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	var hits []SearchHit
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return hits, nil
	}

	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		hit := SearchHit{Content: doc.ContentString()}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			applyMetadata(&hit, metadataGroups[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// applyMetadata converts a chroma metadata value the way the client library
// expects: marshal to JSON, unmarshal into a plain map.
func applyMetadata(hit *SearchHit, metadata chromago.DocumentMetadata) {
	if metadata == nil {
		return
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		return
	}

	if v, ok := metaMap["source"].(string); ok {
		hit.Source = v
	}
	if v, ok := metaMap["source_type"].(string); ok {
		hit.SourceType = v
	}
	if v, ok := metaMap["title"].(string); ok {
		hit.Title = v
	}
	if v, ok := metaMap["page"].(float64); ok {
		hit.Page = int(v)
	}
}

func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	col, err := s.collection()
	if err != nil {
		return 0, err
	}
	count, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

func (s *ChromaStore) collection() (chromago.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.col == nil {
		return nil, fmt.Errorf("collection %s not initialised", s.name)
	}
	return s.col, nil
}

func capContent(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContentChars {
		return content
	}
	return string(runes[:maxContentChars])
}

func sourceOrLocal(source string) string {
	if source == "" {
		return "local"
	}
	return source
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}
