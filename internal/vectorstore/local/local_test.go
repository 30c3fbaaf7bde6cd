package local

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

// vocabEmbedder maps three known words onto fixed dimensions so test
// rankings are easy to reason about.
type vocabEmbedder struct{}

var vocab = []string{"alpha", "beta", "gamma"}

func (vocabEmbedder) Name() string   { return "vocab" }
func (vocabEmbedder) Dimension() int { return len(vocab) }
func (vocabEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, len(vocab))
	for _, word := range strings.Fields(strings.ToLower(text)) {
		for i, v := range vocab {
			if word == v {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func testChunks() ([]domain.Chunk, [][]float64) {
	chunks := []domain.Chunk{
		{ID: "d:0", Content: "alpha alpha", Metadata: map[string]string{"source": "sample.pdf", "chunk": "0"}},
		{ID: "d:1", Content: "beta beta", Metadata: map[string]string{"source": "sample.pdf", "chunk": "1"}},
		{ID: "d:2", Content: "gamma", Metadata: map[string]string{"source": "other.pdf", "chunk": "2"}},
	}
	emb := vocabEmbedder{}
	vectors := make([][]float64, len(chunks))
	for i, c := range chunks {
		vectors[i], _ = emb.Embed(context.Background(), c.Content)
	}
	return chunks, vectors
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), vocabEmbedder{})
	require.NoError(t, err)
	return s
}

func TestOpenMissingRoot(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"), vocabEmbedder{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestOpenAbsentCollectionIsEmpty(t *testing.T) {
	s := newTestStore(t)

	h, err := s.Open("NeverIngested")
	require.NoError(t, err)

	count, err := h.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	chunks, err := h.Search(context.Background(), "alpha", 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestAppendAndSearch(t *testing.T) {
	s := newTestStore(t)
	chunks, vectors := testChunks()
	require.NoError(t, s.Append("Sample", chunks, vectors))

	h, err := s.Open("Sample")
	require.NoError(t, err)

	count, err := h.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	scorer, ok := h.(domain.ScoredSearcher)
	require.True(t, ok)
	res, err := scorer.SearchWithScores(context.Background(), "alpha", 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "d:0", res[0].Chunk.ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.Greater(t, res[0].Score, res[1].Score)
	assert.Equal(t, "sample.pdf", res[0].Chunk.Source())
}

func TestSearchIsStableAcrossCalls(t *testing.T) {
	s := newTestStore(t)
	chunks, vectors := testChunks()
	require.NoError(t, s.Append("Sample", chunks, vectors))

	h, err := s.Open("Sample")
	require.NoError(t, err)

	scorer, ok := h.(domain.ScoredSearcher)
	require.True(t, ok)
	first, err := scorer.SearchWithScores(context.Background(), "beta gamma", 3)
	require.NoError(t, err)
	second, err := scorer.SearchWithScores(context.Background(), "beta gamma", 3)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Chunk.ID, second[i].Chunk.ID)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	root := t.TempDir()
	s1, err := Open(root, vocabEmbedder{})
	require.NoError(t, err)
	chunks, vectors := testChunks()
	require.NoError(t, s1.Append("Sample", chunks, vectors))

	// A fresh store over the same root must see the same data.
	s2, err := Open(root, vocabEmbedder{})
	require.NoError(t, err)
	h, err := s2.Open("Sample")
	require.NoError(t, err)
	count, err := h.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPeekMetadataIsBounded(t *testing.T) {
	s := newTestStore(t)
	chunks, vectors := testChunks()
	require.NoError(t, s.Append("Sample", chunks, vectors))

	h, err := s.Open("Sample")
	require.NoError(t, err)

	metas, err := h.PeekMetadata(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "sample.pdf", metas[0]["source"])

	metas, err = h.PeekMetadata(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, metas, 3)
}

func TestCollectionsListsNamespaces(t *testing.T) {
	s := newTestStore(t)
	chunks, vectors := testChunks()
	require.NoError(t, s.Append("B_Collection", chunks, vectors))
	require.NoError(t, s.Append("A_Collection", chunks[:1], vectors[:1]))

	names, err := s.Collections()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A_Collection", "B_Collection"}, names)
}

func TestAppendRejectsMismatchedVectors(t *testing.T) {
	s := newTestStore(t)
	chunks, vectors := testChunks()

	err := s.Append("Sample", chunks, vectors[:2])
	require.Error(t, err)

	err = s.Append("Sample", chunks[:1], [][]float64{{1, 2}})
	require.Error(t, err)
}
