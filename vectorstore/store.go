package vectorstore

import "context"

// Document is one indexed chunk, shaped for upload.
type Document struct {
	ID         string
	Content    string
	Source     string
	SourceType string
	Title      string
	ChunkIndex int
	Page       int
	Embedding  []float32
}

// SearchHit is one retrieved chunk with the provenance needed to cite it.
type SearchHit struct {
	Content    string
	Source     string
	SourceType string
	Title      string
	Page       int
}

// Store is the vector index behind retrieval. The only way to change its
// contents is Reset followed by EnsureSchema and a fresh Upload; there is no
// partial update.
type Store interface {
	// Reset drops the index. A missing index counts as success.
	Reset(ctx context.Context) error
	// EnsureSchema creates the index for the configured dimension.
	EnsureSchema(ctx context.Context) error
	// Upload adds documents in batches, sanitising ids and capping content
	// at the boundary. Every embedding must match the index dimension.
	Upload(ctx context.Context, docs []Document) (int, error)
	// Search runs vector-only nearest neighbours and returns hits in store
	// order.
	Search(ctx context.Context, vector []float32, k int) ([]SearchHit, error)
	Count(ctx context.Context) (int, error)
}
