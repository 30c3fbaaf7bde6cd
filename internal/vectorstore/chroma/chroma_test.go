package chroma

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

type stubEmbedder struct{}

func (stubEmbedder) Name() string   { return "stub" }
func (stubEmbedder) Dimension() int { return 3 }
func (stubEmbedder) Embed(context.Context, string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

// newTestStore serves a one-collection Chroma API where the query endpoint
// replies with queryJSON.
func newTestStore(t *testing.T, queryJSON string) *Store {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"nanosecond heartbeat":1}`)
	})
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"id":"col-1","name":"Sample"}]`)
	})
	mux.HandleFunc("/api/v1/collections/Sample", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":"col-1","name":"Sample"}`)
	})
	mux.HandleFunc("/api/v1/collections/col-1/count", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `3`)
	})
	mux.HandleFunc("/api/v1/collections/col-1/get", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"metadatas":[{"source":"sample.pdf","chunk":0},{"source":"sample.pdf","chunk":1}]}`)
	})
	mux.HandleFunc("/api/v1/collections/col-1/query", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, queryJSON)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s, err := Open(Config{URL: srv.URL}, stubEmbedder{})
	require.NoError(t, err)
	return s
}

const scoredQueryJSON = `{
	"ids": [["a", "b"]],
	"documents": [["termination clause", "notice period"]],
	"metadatas": [[{"source": "sample.pdf", "chunk": 0}, {"source": "sample.pdf", "chunk": 1}]],
	"distances": [[0.12, 0.34]]
}`

func TestOpenUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := Open(Config{URL: srv.URL}, stubEmbedder{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestOpenUnknownCollectionIsEmpty(t *testing.T) {
	s := newTestStore(t, scoredQueryJSON)

	h, err := s.Open("Missing")
	require.NoError(t, err, "a collection the server has never seen is not an error")

	count, err := h.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	scored, err := h.(domain.ScoredSearcher).SearchWithScores(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, scored)

	chunks, err := h.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCollections(t *testing.T) {
	s := newTestStore(t, scoredQueryJSON)

	names, err := s.Collections()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample"}, names)
}

func TestCountAndPeekMetadata(t *testing.T) {
	s := newTestStore(t, scoredQueryJSON)
	h, err := s.Open("Sample")
	require.NoError(t, err)

	count, err := h.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	metas, err := h.PeekMetadata(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "sample.pdf", metas[0]["source"])
	assert.Equal(t, "0", metas[0]["chunk"])
}

func TestSearchWithScoresParsesDistances(t *testing.T) {
	s := newTestStore(t, scoredQueryJSON)
	h, err := s.Open("Sample")
	require.NoError(t, err)

	scored, err := h.(domain.ScoredSearcher).SearchWithScores(context.Background(), "termination", 2)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].Chunk.ID)
	assert.Equal(t, "termination clause", scored[0].Chunk.Content)
	assert.Equal(t, "sample.pdf", scored[0].Chunk.Source())
	assert.InDelta(t, 0.12, scored[0].Score, 1e-9)
	assert.InDelta(t, 0.34, scored[1].Score, 1e-9)
}

func TestSearchWithoutDistancesReportsScoringUnsupported(t *testing.T) {
	unscored := `{
		"ids": [["a", "b"]],
		"documents": [["termination clause", "notice period"]],
		"metadatas": [[{"source": "sample.pdf"}, {"source": "sample.pdf"}]]
	}`
	s := newTestStore(t, unscored)
	h, err := s.Open("Sample")
	require.NoError(t, err)

	_, err = h.(domain.ScoredSearcher).SearchWithScores(context.Background(), "q", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrScoringUnsupported))

	// The unscored path still works against the same server.
	chunks, err := h.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a", chunks[0].ID)
}

func TestSearchWithScoresShortDistancesRow(t *testing.T) {
	short := `{
		"ids": [["a", "b"]],
		"documents": [["termination clause", "notice period"]],
		"metadatas": [[{"source": "sample.pdf"}, {"source": "sample.pdf"}]],
		"distances": [[0.12]]
	}`
	s := newTestStore(t, short)
	h, err := s.Open("Sample")
	require.NoError(t, err)

	_, err = h.(domain.ScoredSearcher).SearchWithScores(context.Background(), "q", 2)
	require.Error(t, err, "a distances row shorter than the ids row is an error, not a crash")
	assert.False(t, errors.Is(err, domain.ErrScoringUnsupported))
	assert.Contains(t, err.Error(), "distances")
}
