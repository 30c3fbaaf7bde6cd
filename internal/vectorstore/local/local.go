// Package local implements the persisted vector store on the local
// filesystem. Each collection is a sub-directory under a shared root holding
// one JSON file with the embedded chunks. Search is brute-force cosine
// similarity against the process-wide embedder, scores included.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

const chunksFile = "chunks.json"

type record struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float64         `json:"embedding"`
}

// Store is a disk-backed vector store rooted at a persist directory.
type Store struct {
	root     string
	embedder domain.Embedder
}

// Open binds a store to its root directory. A missing or unreadable root is
// ErrStoreUnavailable; nothing is created.
func Open(root string, embedder domain.Embedder) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: persist directory %q: %v", domain.ErrStoreUnavailable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: persist path %q is not a directory", domain.ErrStoreUnavailable, root)
	}
	return &Store{root: root, embedder: embedder}, nil
}

// Root returns the persist directory the store was opened on.
func (s *Store) Root() string { return s.root }

// Collections lists every namespace present under the root, in directory
// listing order.
func (s *Store) Collections() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections in %q: %v", domain.ErrStoreUnavailable, s.root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Open returns a read handle over one collection. Opening a name the store
// has never seen yields a handle with count 0, mirroring a collection that
// has not been ingested yet.
func (s *Store) Open(name string) (domain.Handle, error) {
	return &Handle{
		name:     name,
		path:     filepath.Join(s.root, name, chunksFile),
		embedder: s.embedder,
	}, nil
}

// Append persists additional chunks with their embeddings under a collection
// namespace, creating it on first write. This is the ingestion write path;
// read handles opened before an Append keep their loaded snapshot.
func (s *Store) Append(name string, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	dim := s.embedder.Dimension()
	for _, v := range vectors {
		if dim > 0 && len(v) != dim {
			return errors.New("vector dimension mismatch")
		}
	}
	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, chunksFile)
	records, err := readRecords(path)
	if err != nil {
		return err
	}
	for i := range chunks {
		records = append(records, record{
			ID:        chunks[i].ID,
			Content:   chunks[i].Content,
			Metadata:  chunks[i].Metadata,
			Embedding: vectors[i],
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Handle is an immutable snapshot over one collection, loaded lazily on
// first access. Safe for concurrent readers.
type Handle struct {
	name     string
	path     string
	embedder domain.Embedder

	once    sync.Once
	records []record
	loadErr error
}

// Name returns the collection name the handle was opened on.
func (h *Handle) Name() string { return h.name }

func (h *Handle) load() error {
	h.once.Do(func() {
		h.records, h.loadErr = readRecords(h.path)
	})
	return h.loadErr
}

// Count returns the number of chunks stored under the collection.
func (h *Handle) Count(_ context.Context) (int, error) {
	if err := h.load(); err != nil {
		return 0, err
	}
	return len(h.records), nil
}

// PeekMetadata returns at most limit chunk metadata entries.
func (h *Handle) PeekMetadata(_ context.Context, limit int) ([]map[string]string, error) {
	if err := h.load(); err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}
	if limit > len(h.records) {
		limit = len(h.records)
	}
	out := make([]map[string]string, 0, limit)
	for _, r := range h.records[:limit] {
		out = append(out, r.Metadata)
	}
	return out, nil
}

// SearchWithScores embeds the query and ranks every stored chunk by cosine
// similarity, best first. Ties keep storage order so repeated identical
// queries return the same sequence.
func (h *Handle) SearchWithScores(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error) {
	if err := h.load(); err != nil {
		return nil, err
	}
	if topK <= 0 || len(h.records) == 0 {
		return nil, nil
	}
	vec, err := h.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	scored := make([]domain.ScoredChunk, len(h.records))
	for i, r := range h.records {
		scored[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{ID: r.ID, Content: r.Content, Metadata: r.Metadata},
			Score: cosine(vec, r.Embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Search is the unscored variant of SearchWithScores.
func (h *Handle) Search(ctx context.Context, text string, topK int) ([]domain.Chunk, error) {
	scored, err := h.SearchWithScores(ctx, text, topK)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

func readRecords(path string) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
