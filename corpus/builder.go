package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/models"
)

// Builder turns a directory of source documents into chunk records.
type Builder struct {
	dataDir      string
	chunkSize    int
	chunkOverlap int
	log          *zap.Logger
}

func NewBuilder(dataDir string, chunkSize, chunkOverlap int, log *zap.Logger) *Builder {
	return &Builder{
		dataDir:      dataDir,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		log:          log.Named("builder"),
	}
}

// Build walks the data directory and returns one record per chunk of every
// supported document. A file that cannot be parsed, or that yields no text,
// is logged and skipped; the walk carries on. Hidden files and directories
// (including AppleDouble "._" companions) are ignored.
func (b *Builder) Build(ctx context.Context) ([]models.Record, error) {
	if _, err := os.Stat(b.dataDir); err != nil {
		return nil, fmt.Errorf("data directory %s not readable: %w", b.dataDir, err)
	}

	var records []models.Record
	err := filepath.Walk(b.dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		base := filepath.Base(path)
		if info.IsDir() {
			if path != b.dataDir && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "._") {
			return nil
		}
		if !IsSupportedFile(path) {
			return nil
		}

		recs, err := b.buildFile(path, info)
		if err != nil {
			b.log.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if len(recs) == 0 {
			b.log.Warn("no text extracted", zap.String("path", path))
			return nil
		}
		records = append(records, recs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", b.dataDir, err)
	}

	b.log.Info("corpus built",
		zap.String("dir", b.dataDir),
		zap.Int("chunks", len(records)))
	return records, nil
}

func (b *Builder) buildFile(path string, info os.FileInfo) ([]models.Record, error) {
	raw, err := ExtractTextFromFile(path)
	if err != nil {
		return nil, err
	}

	text := NormalizeText(raw)
	if text == "" {
		return nil, nil
	}

	chunks := Split(text, b.chunkSize, b.chunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	records := make([]models.Record, 0, len(chunks))
	for i, chunk := range chunks {
		records = append(records, models.Record{
			ID:         fmt.Sprintf("%s_%d", stem, i+1),
			SourceType: models.SourceTypeFile,
			FileName:   base,
			FileType:   strings.TrimPrefix(strings.ToLower(ext), "."),
			Path:       absPath,
			Text:       chunk,
			SHA1:       FileFingerprint(absPath, chunk),
			Meta: models.RecordMeta{
				SizeBytes:   info.Size(),
				ChunkIndex:  i + 1,
				TotalChunks: len(chunks),
			},
		})
	}

	b.log.Debug("file chunked",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)))
	return records, nil
}
