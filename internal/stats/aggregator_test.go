package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

type fakeHandle struct {
	name     string
	count    int
	countErr error
	metas    []map[string]string
	peekErr  error
}

func (h *fakeHandle) Name() string { return h.name }
func (h *fakeHandle) Count(context.Context) (int, error) {
	return h.count, h.countErr
}
func (h *fakeHandle) PeekMetadata(_ context.Context, limit int) ([]map[string]string, error) {
	if h.peekErr != nil {
		return nil, h.peekErr
	}
	if limit > len(h.metas) {
		limit = len(h.metas)
	}
	return h.metas[:limit], nil
}
func (h *fakeHandle) Search(context.Context, string, int) ([]domain.Chunk, error) {
	return nil, nil
}

type fakeStore struct {
	names   []string
	handles map[string]*fakeHandle
	openErr map[string]error
	listErr error
}

func (s *fakeStore) Collections() ([]string, error) { return s.names, s.listErr }
func (s *fakeStore) Open(name string) (domain.Handle, error) {
	if err := s.openErr[name]; err != nil {
		return nil, err
	}
	return s.handles[name], nil
}

func TestListAllFollowsStoreOrder(t *testing.T) {
	store := &fakeStore{
		names: []string{"B", "A"},
		handles: map[string]*fakeHandle{
			"B": {name: "B", count: 2, metas: []map[string]string{{"source": "b.pdf"}}},
			"A": {name: "A", count: 1, metas: []map[string]string{{"source": "a.pdf"}}},
		},
	}

	all, err := New().ListAll(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].Name)
	assert.Equal(t, "A", all[1].Name)
	assert.Equal(t, 2, all[0].Count)
	assert.Equal(t, []string{"b.pdf"}, all[0].SampleSources)
}

func TestListAllDeduplicatesSources(t *testing.T) {
	store := &fakeStore{
		names: []string{"C"},
		handles: map[string]*fakeHandle{
			"C": {name: "C", count: 4, metas: []map[string]string{
				{"source": "doc.pdf"},
				{"source": "doc.pdf"},
				{"source": "other.pdf"},
				{"page": "3"},
			}},
		},
	}

	all, err := New().ListAll(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"doc.pdf", "other.pdf"}, all[0].SampleSources)
}

func TestListAllDegradesMalformedCollection(t *testing.T) {
	store := &fakeStore{
		names: []string{"Good", "Broken", "AlsoGood"},
		handles: map[string]*fakeHandle{
			"Good":     {name: "Good", count: 5, metas: []map[string]string{{"source": "g.pdf"}}},
			"Broken":   {name: "Broken", countErr: errors.New("corrupt chunk file")},
			"AlsoGood": {name: "AlsoGood", count: 1},
		},
	}

	all, err := New().ListAll(context.Background(), store)
	require.NoError(t, err, "one malformed collection must not fail the aggregation")
	require.Len(t, all, 3)

	assert.False(t, all[0].Degraded)
	assert.True(t, all[1].Degraded)
	assert.Equal(t, 0, all[1].Count)
	assert.Empty(t, all[1].SampleSources)
	assert.Contains(t, all[1].Reason, "corrupt chunk file")
	assert.False(t, all[2].Degraded)
}

func TestListAllDegradesOnOpenAndPeekErrors(t *testing.T) {
	store := &fakeStore{
		names: []string{"NoOpen", "NoPeek"},
		handles: map[string]*fakeHandle{
			"NoPeek": {name: "NoPeek", count: 2, peekErr: errors.New("peek failed")},
		},
		openErr: map[string]error{"NoOpen": errors.New("open failed")},
	}

	all, err := New().ListAll(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Degraded)
	assert.True(t, all[1].Degraded)
	assert.Equal(t, 0, all[1].Count)
}

func TestListAllFailsOnlyWhenEnumerationFails(t *testing.T) {
	store := &fakeStore{listErr: errors.New("root unreadable")}

	_, err := New().ListAll(context.Background(), store)
	require.Error(t, err)
}
