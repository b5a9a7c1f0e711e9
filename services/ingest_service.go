package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/config"
	"github.com/ndisplan/ragserver/corpus"
	"github.com/ndisplan/ragserver/models"
	"github.com/ndisplan/ragserver/vectorstore"
)

// ErrRebuildRunning is returned when a rebuild is requested while another one
// holds the pipeline.
var ErrRebuildRunning = errors.New("a rebuild is already running")

// CorpusBuilder produces chunk records from the documents directory.
type CorpusBuilder interface {
	Build(ctx context.Context) ([]models.Record, error)
}

// WebCrawler produces chunk records from a website.
type WebCrawler interface {
	Crawl(ctx context.Context, startURL string) ([]models.Record, int, error)
}

// RecordEmbedder attaches vectors to records.
type RecordEmbedder interface {
	EmbedRecords(ctx context.Context, records []models.Record) ([]models.Record, error)
}

// IngestService rebuilds the whole index from scratch: collect, combine,
// embed, then swap the index.
type IngestService interface {
	Reindex(ctx context.Context) (*models.ReindexResponse, error)
}

type ingestServiceImpl struct {
	cfg      *config.Config
	builder  CorpusBuilder
	crawler  WebCrawler
	embedder RecordEmbedder
	store    vectorstore.Store
	log      *zap.Logger
	mu       sync.Mutex
}

func NewIngestService(cfg *config.Config, builder CorpusBuilder, crawler WebCrawler, embedder RecordEmbedder, store vectorstore.Store, log *zap.Logger) IngestService {
	return &ingestServiceImpl{
		cfg:      cfg,
		builder:  builder,
		crawler:  crawler,
		embedder: embedder,
		store:    store,
		log:      log.Named("ingest"),
	}
}

// Reindex runs one full rebuild. Only one run may be active at a time; a
// second caller gets ErrRebuildRunning instead of queueing. The index is not
// touched until the entire snapshot is embedded, so any failure up to that
// point leaves the previous index generation serving queries.
func (s *ingestServiceImpl) Reindex(ctx context.Context) (*models.ReindexResponse, error) {
	if !s.mu.TryLock() {
		return nil, ErrRebuildRunning
	}
	defer s.mu.Unlock()

	started := time.Now()
	runID := uuid.New().String()
	log := s.log.With(zap.String("run_id", runID))
	log.Info("rebuild started")

	resp := &models.ReindexResponse{RunID: runID}

	parsedPath := filepath.Join(s.cfg.OutDir, "parsed.jsonl")
	webPath := filepath.Join(s.cfg.OutDir, "web.jsonl")
	combinedPath := filepath.Join(s.cfg.OutDir, "combined.jsonl")
	embeddedPath := filepath.Join(s.cfg.OutDir, "embedded.jsonl")

	// 1. Documents directory. A missing or unreadable directory is not fatal
	// when a site crawl can still feed the corpus.
	fileRecords, err := s.builder.Build(ctx)
	if err != nil {
		log.Warn("document corpus build failed", zap.Error(err))
		fileRecords = nil
	}
	resp.FileChunks = len(fileRecords)
	if err := corpus.WriteRecords(parsedPath, fileRecords); err != nil {
		return nil, fmt.Errorf("failed to write parsed corpus: %w", err)
	}

	// 2. Site crawl, when configured.
	sources := []string{parsedPath}
	if s.cfg.ScrapeURL != "" {
		webRecords, pages, err := s.crawler.Crawl(ctx, s.cfg.ScrapeURL)
		if err != nil {
			return nil, fmt.Errorf("crawl failed: %w", err)
		}
		resp.WebPages = pages
		resp.WebChunks = len(webRecords)
		if err := corpus.WriteRecords(webPath, webRecords); err != nil {
			return nil, fmt.Errorf("failed to write web corpus: %w", err)
		}
		sources = append(sources, webPath)
	}

	// 3. Merge the streams, dropping duplicates.
	combined, err := corpus.CombineFiles(combinedPath, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to combine corpus files: %w", err)
	}
	resp.CombinedRecords = combined

	records, skipped, err := corpus.ReadRecords(combinedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read combined corpus: %w", err)
	}
	if skipped > 0 {
		log.Warn("skipped malformed corpus lines", zap.Int("lines", skipped))
	}

	// 4. Embed the full snapshot before the index is touched.
	embedded, err := s.embedder.EmbedRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("embedding failed, index left untouched: %w", err)
	}
	resp.EmbeddedRecords = len(embedded)
	if err := corpus.WriteRecords(embeddedPath, embedded); err != nil {
		return nil, fmt.Errorf("failed to write embedded corpus: %w", err)
	}
	if len(embedded) == 0 {
		return nil, fmt.Errorf("corpus is empty, refusing to rebuild the index")
	}

	// 5. Swap the index: drop, recreate, upload.
	if err := s.store.Reset(ctx); err != nil {
		return nil, err
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	docs := make([]vectorstore.Document, 0, len(embedded))
	for i := range embedded {
		docs = append(docs, indexDocument(&embedded[i]))
	}
	uploaded, err := s.store.Upload(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("upload failed after %d documents: %w", uploaded, err)
	}
	resp.UploadedDocuments = uploaded
	resp.ElapsedSeconds = time.Since(started).Seconds()

	log.Info("rebuild finished",
		zap.Int("file_chunks", resp.FileChunks),
		zap.Int("web_pages", resp.WebPages),
		zap.Int("web_chunks", resp.WebChunks),
		zap.Int("combined", resp.CombinedRecords),
		zap.Int("uploaded", resp.UploadedDocuments),
		zap.Float64("seconds", resp.ElapsedSeconds))
	return resp, nil
}

// indexDocument shapes a record for upload. File chunks cite their file name,
// web chunks their full URL.
func indexDocument(rec *models.Record) vectorstore.Document {
	source := rec.FileName
	if rec.SourceType == models.SourceTypeWeb {
		source = rec.URL
	}
	return vectorstore.Document{
		ID:         rec.ID,
		Content:    rec.Body(),
		Source:     source,
		SourceType: rec.SourceType,
		Title:      rec.Title,
		ChunkIndex: rec.Meta.ChunkIndex,
		Page:       rec.Meta.Page,
		Embedding:  rec.Embedding,
	}
}
