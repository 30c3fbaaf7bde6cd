// Package retrieval executes top-k similarity queries against a collection
// handle, absorbing capability differences between scoring and non-scoring
// stores.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

// Service implements domain.Retriever.
type Service struct{}

// New creates a retrieval service.
func New() *Service { return &Service{} }

// Retrieve runs a scored search when the handle supports it and falls back
// to an unscored search when scoring is the only missing capability. Any
// other failure wraps ErrRetrievalFailed. Result order is exactly the order
// the chosen search mode returned; nothing is re-ranked or deduplicated.
// A negative top-k is clamped to zero and zero yields an empty result
// without touching the store.
func (s *Service) Retrieve(ctx context.Context, h domain.Handle, q domain.Query) (domain.RetrievalResult, error) {
	topK := q.TopK
	if topK <= 0 {
		return domain.RetrievalResult{}, nil
	}
	if scorer, ok := h.(domain.ScoredSearcher); ok {
		results, err := scorer.SearchWithScores(ctx, q.Text, topK)
		switch {
		case err == nil:
			return domain.RetrievalResult{Results: results, Scored: true}, nil
		case errors.Is(err, domain.ErrScoringUnsupported):
			// fall through to the unscored search
		default:
			return domain.RetrievalResult{}, fmt.Errorf("%w: scored search in %q: %w", domain.ErrRetrievalFailed, h.Name(), err)
		}
	}
	chunks, err := h.Search(ctx, q.Text, topK)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("%w: search in %q: %w", domain.ErrRetrievalFailed, h.Name(), err)
	}
	results := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		results[i] = domain.ScoredChunk{Chunk: c}
	}
	return domain.RetrievalResult{Results: results, Scored: false}, nil
}
