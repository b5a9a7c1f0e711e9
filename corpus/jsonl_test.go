package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisplan/ragserver/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{ID: "a_1", SourceType: models.SourceTypeFile, Text: "first chunk", SHA1: "fp-a"},
		{ID: "a_2", SourceType: models.SourceTypeFile, Text: "second chunk", SHA1: "fp-b"},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "corpus.jsonl")
	require.NoError(t, WriteRecords(path, sampleRecords()))

	got, skipped, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, sampleRecords(), got)
}

func TestReadRecordsSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	content := `{"id":"a_1","text":"good"}
this line is not json
{"id":"a_2","text":"also good"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, skipped, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, "a_1", got[0].ID)
	assert.Equal(t, "a_2", got[1].ID)
}

func TestCombineFilesMergeWithEmptyEqualsDedupe(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.jsonl")
	out := filepath.Join(dir, "combined.jsonl")
	require.NoError(t, WriteRecords(in, sampleRecords()))

	n, err := CombineFiles(out, in, filepath.Join(dir, "does-not-exist.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _, err := ReadRecords(out)
	require.NoError(t, err)
	assert.Equal(t, Dedupe(sampleRecords()), got)
}

func TestCombineFilesSelfMergeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.jsonl")
	out := filepath.Join(dir, "combined.jsonl")
	require.NoError(t, WriteRecords(in, sampleRecords()))

	n, err := CombineFiles(out, in, in)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _, err := ReadRecords(out)
	require.NoError(t, err)
	assert.Equal(t, Dedupe(sampleRecords()), got)
}

func TestCombineFilesFirstSeenWinsAcrossStreams(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "files.jsonl")
	second := filepath.Join(dir, "web.jsonl")
	out := filepath.Join(dir, "combined.jsonl")

	require.NoError(t, WriteRecords(first, []models.Record{
		{ID: "a_1", Text: "original", SHA1: "shared-fp"},
	}))
	require.NoError(t, WriteRecords(second, []models.Record{
		{ID: "b_1", Text: "duplicate", SHA1: "shared-fp"},
		{ID: "b_2", Text: "fresh", SHA1: "other-fp"},
	}))

	n, err := CombineFiles(out, first, second)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _, err := ReadRecords(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a_1", got[0].ID, "first stream owns the shared fingerprint")
	assert.Equal(t, "b_2", got[1].ID)
}

func TestCombineFilesAllInputsMissing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "combined.jsonl")

	n, err := CombineFiles(out, filepath.Join(dir, "nope.jsonl"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
