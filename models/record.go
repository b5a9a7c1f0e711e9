package models

// RecordMeta carries per-chunk bookkeeping written at corpus build time.
type RecordMeta struct {
	SizeBytes   int64 `json:"size_bytes,omitempty"`
	ChunkIndex  int   `json:"chunk_index"`
	TotalChunks int   `json:"total_chunks"`
	Page        int   `json:"page,omitempty"`
}

// Record is one corpus line: a single chunk of a source document, from
// extraction through embedding. File-sourced records carry Path, web-sourced
// records carry URL and Title. Text holds the chunk until the embedding stage
// renames it to Content; after that the record is never modified.
type Record struct {
	ID           string     `json:"id"`
	SourceType   string     `json:"source_type"`
	FileName     string     `json:"file_name,omitempty"`
	FileType     string     `json:"file_type,omitempty"`
	Path         string     `json:"path,omitempty"`
	URL          string     `json:"url,omitempty"`
	Title        string     `json:"title,omitempty"`
	Text         string     `json:"text,omitempty"`
	Content      string     `json:"content,omitempty"`
	SHA1         string     `json:"sha1,omitempty"`
	Meta         RecordMeta `json:"meta"`
	Embedding    []float32  `json:"embedding,omitempty"`
	EmbeddingDim int        `json:"embedding_dim,omitempty"`
}

// Source type values used across the pipeline.
const (
	SourceTypeFile = "file"
	SourceTypeWeb  = "web"
)

// Body returns the chunk text regardless of pipeline stage: Content once the
// record has been embedded, Text before that.
func (r *Record) Body() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Text
}

// HasBody reports whether the record carries any chunk text at all.
func (r *Record) HasBody() bool {
	return r.Body() != ""
}

// DedupeKey is the identity used by the in-run deduplicator: the content
// fingerprint when present, the record id otherwise.
func (r *Record) DedupeKey() string {
	if r.SHA1 != "" {
		return r.SHA1
	}
	return r.ID
}
