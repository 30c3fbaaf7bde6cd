package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// One instance is created per process and shared by every open handle.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Handle is a live read handle over one collection namespace.
// Opening a name the store has never seen yields a handle with count 0.
type Handle interface {
	Name() string
	Count(ctx context.Context) (int, error)
	// PeekMetadata returns at most limit chunk metadata entries. It is a
	// best-effort diagnostic and must not load the whole collection.
	PeekMetadata(ctx context.Context, limit int) ([]map[string]string, error)
	// Search runs an unscored similarity search, best match first.
	Search(ctx context.Context, text string, topK int) ([]Chunk, error)
}

// ScoredSearcher is implemented by handles able to attach relevance scores.
// A capable handle may still report ErrScoringUnsupported at call time.
type ScoredSearcher interface {
	SearchWithScores(ctx context.Context, text string, topK int) ([]ScoredChunk, error)
}

// Store opens collection handles over a shared persisted vector store and
// enumerates the namespaces it holds. Open never creates a namespace.
type Store interface {
	Open(name string) (Handle, error)
	Collections() ([]string, error)
}

// Retriever produces a normalized retrieval result for a handle and query.
type Retriever interface {
	Retrieve(ctx context.Context, h Handle, q Query) (RetrievalResult, error)
}
