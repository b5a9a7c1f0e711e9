package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/models"
)

// fakeProvider records the size of every batch it receives and returns a
// recognisable vector per text.
type fakeProvider struct {
	batchSizes []int
	failOn     int // 1-based call number to fail on, 0 = never
	calls      int
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failOn > 0 && f.calls == f.failOn {
		return nil, errors.New("embedding service unavailable")
	}
	f.batchSizes = append(f.batchSizes, len(texts))
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i]))}
	}
	return vectors, nil
}

func (f *fakeProvider) Dimension() int { return 1 }

func testRecords(n int) []models.Record {
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.Record{
			ID:   fmt.Sprintf("doc_%d", i+1),
			Text: fmt.Sprintf("chunk number %d", i+1),
		}
	}
	return records
}

func TestEmbedRecordsBatchSizes(t *testing.T) {
	provider := &fakeProvider{}
	batcher := NewBatcher(provider, 16, 0, zap.NewNop())

	out, err := batcher.EmbedRecords(context.Background(), testRecords(35))
	require.NoError(t, err)

	assert.Equal(t, []int{16, 16, 3}, provider.batchSizes)
	require.Len(t, out, 35)
	for i, rec := range out {
		assert.Equal(t, fmt.Sprintf("doc_%d", i+1), rec.ID, "input order must survive batching")
		assert.NotEmpty(t, rec.Embedding)
	}
}

func TestEmbedRecordsMovesTextToContent(t *testing.T) {
	provider := &fakeProvider{}
	batcher := NewBatcher(provider, 4, 0, zap.NewNop())

	out, err := batcher.EmbedRecords(context.Background(), testRecords(2))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "chunk number 1", out[0].Content)
	assert.Empty(t, out[0].Text)
	assert.Equal(t, 1, out[0].EmbeddingDim)
}

func TestEmbedRecordsSkipsBodylessRecords(t *testing.T) {
	provider := &fakeProvider{}
	batcher := NewBatcher(provider, 16, 0, zap.NewNop())

	records := []models.Record{
		{ID: "a_1", Text: "has text"},
		{ID: "b_1"}, // nothing to embed
		{ID: "c_1", Content: "already renamed"},
	}

	out, err := batcher.EmbedRecords(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "a_1", out[0].ID)
	assert.Equal(t, "c_1", out[1].ID)
	assert.Equal(t, []int{2}, provider.batchSizes)
}

func TestEmbedRecordsFailedBatchAbortsRun(t *testing.T) {
	provider := &fakeProvider{failOn: 2}
	batcher := NewBatcher(provider, 4, 0, zap.NewNop())

	out, err := batcher.EmbedRecords(context.Background(), testRecords(10))
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestEmbedRecordsVectorCountMismatch(t *testing.T) {
	batcher := NewBatcher(&shortProvider{}, 4, 0, zap.NewNop())

	_, err := batcher.EmbedRecords(context.Background(), testRecords(4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 3 vectors for 4 texts")
}

func TestEmbedRecordsEmptyInput(t *testing.T) {
	provider := &fakeProvider{}
	batcher := NewBatcher(provider, 16, 0, zap.NewNop())

	out, err := batcher.EmbedRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, provider.calls)
}

// shortProvider violates the one-vector-per-text contract.
type shortProvider struct{}

func (s *shortProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts)-1; i++ {
		vectors = append(vectors, []float32{0})
	}
	return vectors, nil
}

func (s *shortProvider) Dimension() int { return 1 }
