package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuildChunksTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plan_guide.txt", strings.Repeat("funding details ", 20))

	builder := NewBuilder(dir, 100, 10, zap.NewNop())
	records, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, records)

	for i, rec := range records {
		assert.Equal(t, "plan_guide_"+strconv.Itoa(i+1), rec.ID)
		assert.Equal(t, models.SourceTypeFile, rec.SourceType)
		assert.Equal(t, "plan_guide.txt", rec.FileName)
		assert.Equal(t, "txt", rec.FileType)
		assert.NotEmpty(t, rec.Text)
		assert.NotEmpty(t, rec.SHA1)
		assert.Equal(t, i+1, rec.Meta.ChunkIndex)
		assert.Equal(t, len(records), rec.Meta.TotalChunks)
		assert.Positive(t, rec.Meta.SizeBytes)
	}
}

func TestBuildSkipsHiddenAndUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# Visible notes\nsome content")
	writeFile(t, dir, ".hidden.txt", "should not appear")
	writeFile(t, dir, "._notes.md", "apple double companion")
	writeFile(t, dir, "image.png", "binary-ish")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".git"), "config.txt", "not corpus data")

	builder := NewBuilder(dir, 1000, 100, zap.NewNop())
	records, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "notes.md", records[0].FileName)
}

func TestBuildWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "policies")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, sub, "transport.txt", "transport funding rules")

	builder := NewBuilder(dir, 1000, 100, zap.NewNop())
	records, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "transport_1", records[0].ID)
}

func TestBuildSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "   \n\n ")
	writeFile(t, dir, "real.txt", "actual content")

	builder := NewBuilder(dir, 1000, 100, zap.NewNop())
	records, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "real_1", records[0].ID)
}

func TestBuildMissingDirectory(t *testing.T) {
	builder := NewBuilder(filepath.Join(t.TempDir(), "nope"), 1000, 100, zap.NewNop())
	_, err := builder.Build(context.Background())
	require.Error(t, err)
}
