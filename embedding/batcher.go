package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/models"
	"github.com/ndisplan/ragserver/retry"
)

// Batcher runs corpus records through an embedding provider in fixed-size
// batches, pairing vectors back to records by position.
type Batcher struct {
	provider  Provider
	batchSize int
	retryMax  int
	log       *zap.Logger
}

func NewBatcher(provider Provider, batchSize, retryMax int, log *zap.Logger) *Batcher {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Batcher{
		provider:  provider,
		batchSize: batchSize,
		retryMax:  retryMax,
		log:       log.Named("embedder"),
	}
}

// EmbedRecords embeds every record that carries text. Records without a body
// are dropped before batching. At this stage each record's Text moves to
// Content and the vector is attached; records come back in input order. A
// batch that still fails after retries aborts the whole run.
func (b *Batcher) EmbedRecords(ctx context.Context, records []models.Record) ([]models.Record, error) {
	todo := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if !rec.HasBody() {
			b.log.Warn("record has no text, skipping", zap.String("id", rec.ID))
			continue
		}
		todo = append(todo, rec)
	}

	out := make([]models.Record, 0, len(todo))
	for start := 0; start < len(todo); start += b.batchSize {
		end := start + b.batchSize
		if end > len(todo) {
			end = len(todo)
		}
		batch := todo[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Body()
		}

		var vectors [][]float32
		err := retry.Do(ctx, b.retryMax, func() error {
			v, err := b.provider.Embed(ctx, texts)
			if err != nil {
				return err
			}
			vectors = v
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("embedding batch starting at record %d failed: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding batch starting at record %d returned %d vectors for %d texts", start, len(vectors), len(batch))
		}

		for i := range batch {
			rec := batch[i]
			rec.Content = rec.Body()
			rec.Text = ""
			rec.Embedding = vectors[i]
			rec.EmbeddingDim = len(vectors[i])
			out = append(out, rec)
		}
	}

	b.log.Info("embedding finished",
		zap.Int("records", len(out)),
		zap.Int("skipped", len(records)-len(todo)))
	return out, nil
}
