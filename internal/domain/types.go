package domain

// Chunk is one embedded span of document text stored inside a collection.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Source returns the originating document recorded at ingestion time,
// or the empty string when the chunk carries no source metadata.
func (c Chunk) Source() string { return c.Metadata["source"] }

// Query is a retrieval request against one collection.
type Query struct {
	Text string
	TopK int
}

// ScoredChunk pairs a retrieved chunk with the store's relevance score.
// Whether lower or higher is better depends on the store's convention.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult is an ordered sequence of retrieved chunks, best first.
// When Scored is false the store could not attach relevance scores and the
// Score fields are meaningless.
type RetrievalResult struct {
	Results []ScoredChunk
	Scored  bool
}

// CollectionStats describes one collection discovered in the persisted store.
// A collection that failed inspection is reported with Degraded set, a zero
// count and an empty sample set instead of aborting the whole listing.
type CollectionStats struct {
	Name          string
	Count         int
	SampleSources []string
	Degraded      bool
	Reason        string
}

// RAGAnswer is the outcome of a single question-answering chain invocation.
type RAGAnswer struct {
	Question string
	Answer   string
}
