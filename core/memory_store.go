package core

import "context"

// SearchResult represents a retrieved memory item with a relevance score and
// arbitrary metadata. Scores are descending-sorted by implementations and lie
// in [0,1].
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// MemoryStore defines persistence + retrieval (similarity search) for agent
// findings. Implementations back search with embeddings over stored text and
// must survive process restart when constructed with a persist path.
//
// Upsert appends a new record and returns its id; duplicate content creates
// distinct records. Query returns up to k results ordered by descending
// similarity; an empty store yields an empty slice, not an error.
type MemoryStore interface {
	Upsert(ctx context.Context, content string, metadata map[string]any) (string, error)
	Query(ctx context.Context, query string, k int) ([]SearchResult, error)
}
