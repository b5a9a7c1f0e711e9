package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/config"
	"github.com/ndisplan/ragserver/models"
)

type fakeBuilder struct {
	records []models.Record
	err     error
}

func (f *fakeBuilder) Build(context.Context) ([]models.Record, error) {
	return f.records, f.err
}

type fakeCrawler struct {
	records []models.Record
	pages   int
	err     error
}

func (f *fakeCrawler) Crawl(context.Context, string) ([]models.Record, int, error) {
	return f.records, f.pages, f.err
}

// fakeRecordEmbedder attaches a one-float vector to every record. When block
// is set it waits for a release signal first, so tests can hold a rebuild
// mid-flight.
type fakeRecordEmbedder struct {
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRecordEmbedder) EmbedRecords(_ context.Context, records []models.Record) ([]models.Record, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		rec.Content = rec.Body()
		rec.Text = ""
		rec.Embedding = []float32{1}
		rec.EmbeddingDim = 1
		out = append(out, rec)
	}
	return out, nil
}

func fileRecord(id, text string) models.Record {
	return models.Record{
		ID:         id,
		SourceType: models.SourceTypeFile,
		FileName:   id + ".txt",
		Path:       "/data/" + id + ".txt",
		Text:       text,
		SHA1:       id + "-fp-" + text,
		Meta:       models.RecordMeta{ChunkIndex: 1, TotalChunks: 1},
	}
}

func ingestConfig(t *testing.T, scrapeURL string) *config.Config {
	t.Helper()
	return &config.Config{
		OutDir:    t.TempDir(),
		ScrapeURL: scrapeURL,
		RetryMax:  0,
	}
}

func TestReindexFullRebuild(t *testing.T) {
	builder := &fakeBuilder{records: []models.Record{
		fileRecord("guide_1", "chunk one"),
		fileRecord("guide_2", "chunk two"),
	}}
	web := models.Record{
		ID:         "example.com/#1",
		SourceType: models.SourceTypeWeb,
		FileName:   "index.html",
		URL:        "https://example.com/",
		Text:       "web chunk",
		SHA1:       "web-fp",
		Meta:       models.RecordMeta{ChunkIndex: 1, TotalChunks: 1},
	}
	crawler := &fakeCrawler{records: []models.Record{web}, pages: 1}
	store := &fakeStore{}
	svc := NewIngestService(ingestConfig(t, "https://example.com"), builder, crawler, &fakeRecordEmbedder{}, store, zap.NewNop())

	resp, err := svc.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.FileChunks)
	assert.Equal(t, 1, resp.WebPages)
	assert.Equal(t, 1, resp.WebChunks)
	assert.Equal(t, 3, resp.CombinedRecords)
	assert.Equal(t, 3, resp.EmbeddedRecords)
	assert.Equal(t, 3, resp.UploadedDocuments)

	assert.Equal(t, 1, store.resetCalls)
	assert.Equal(t, 1, store.ensureCalls)
	require.Len(t, store.uploaded, 3)
	// File chunks cite the file name, web chunks the full URL.
	assert.Equal(t, "guide_1.txt", store.uploaded[0].Source)
	assert.Equal(t, "https://example.com/", store.uploaded[2].Source)
}

func TestReindexDeduplicatesAcrossStreams(t *testing.T) {
	shared := fileRecord("guide_1", "chunk one")
	builder := &fakeBuilder{records: []models.Record{shared, fileRecord("guide_2", "chunk two")}}
	crawler := &fakeCrawler{records: []models.Record{shared}, pages: 1}
	store := &fakeStore{}
	svc := NewIngestService(ingestConfig(t, "https://example.com"), builder, crawler, &fakeRecordEmbedder{}, store, zap.NewNop())

	resp, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CombinedRecords)
	assert.Len(t, store.uploaded, 2)
}

func TestReindexEmbedFailureLeavesIndexUntouched(t *testing.T) {
	builder := &fakeBuilder{records: []models.Record{fileRecord("guide_1", "chunk one")}}
	store := &fakeStore{}
	embedder := &fakeRecordEmbedder{err: errors.New("embedding service down")}
	svc := NewIngestService(ingestConfig(t, ""), builder, &fakeCrawler{}, embedder, store, zap.NewNop())

	_, err := svc.Reindex(context.Background())
	require.Error(t, err)

	assert.Zero(t, store.resetCalls, "a failed embed must not reset the live index")
	assert.Zero(t, store.ensureCalls)
	assert.Empty(t, store.uploaded)
}

func TestReindexEmptyCorpusRefusesRebuild(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("no data directory")}
	store := &fakeStore{}
	svc := NewIngestService(ingestConfig(t, ""), builder, &fakeCrawler{}, &fakeRecordEmbedder{}, store, zap.NewNop())

	_, err := svc.Reindex(context.Background())
	require.Error(t, err)
	assert.Zero(t, store.resetCalls)
}

func TestReindexRejectsConcurrentRun(t *testing.T) {
	builder := &fakeBuilder{records: []models.Record{fileRecord("guide_1", "chunk one")}}
	embedder := &fakeRecordEmbedder{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	svc := NewIngestService(ingestConfig(t, ""), builder, &fakeCrawler{}, embedder, &fakeStore{}, zap.NewNop())

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Reindex(context.Background())
		firstDone <- err
	}()

	select {
	case <-embedder.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first rebuild never reached the embedding stage")
	}

	_, err := svc.Reindex(context.Background())
	assert.ErrorIs(t, err, ErrRebuildRunning)

	close(embedder.block)
	require.NoError(t, <-firstDone)
}
