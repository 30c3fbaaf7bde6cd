// Package chroma is a minimal REST client to a Chroma server, covering the
// read surface the application needs: collection lookup, count, metadata
// peek and embedding queries. Queries embed locally with the process-wide
// embedder and send raw vectors, so the server needs no embedding function.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

// Config contains connection details for a Chroma server.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Store talks to one Chroma server.
type Store struct {
	baseURL  string
	client   *http.Client
	embedder domain.Embedder
}

// Open verifies the server is reachable and returns a store bound to it.
// An unreachable server is ErrStoreUnavailable.
func Open(cfg Config, embedder domain.Embedder) (*Store, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	s := &Store{
		baseURL:  cfg.URL + "/api/v1",
		client:   &http.Client{Timeout: timeout},
		embedder: embedder,
	}
	if err := s.getJSON(s.baseURL+"/heartbeat", nil); err != nil {
		return nil, fmt.Errorf("%w: chroma at %q: %v", domain.ErrStoreUnavailable, cfg.URL, err)
	}
	return s, nil
}

// Collections lists every collection the server holds, in server order.
func (s *Store) Collections() ([]string, error) {
	var cols []struct {
		Name string `json:"name"`
	}
	if err := s.getJSON(s.baseURL+"/collections", &cols); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names, nil
}

// Open resolves a collection name to its server-side id. A name the server
// has never seen yields an empty handle with count 0, not an error.
func (s *Store) Open(name string) (domain.Handle, error) {
	var col struct {
		ID string `json:"id"`
	}
	err := s.getJSON(s.baseURL+"/collections/"+name, &col)
	if err != nil {
		var status statusError
		if asStatus(err, &status) && status.code == http.StatusNotFound {
			return &Handle{name: name, store: s}, nil
		}
		return nil, err
	}
	return &Handle{name: name, id: col.ID, store: s}, nil
}

// Handle is a read handle over one Chroma collection. An empty id marks a
// collection the server does not have.
type Handle struct {
	name  string
	id    string
	store *Store
}

// Name returns the collection name the handle was opened on.
func (h *Handle) Name() string { return h.name }

// Count returns the number of chunks stored under the collection.
func (h *Handle) Count(_ context.Context) (int, error) {
	if h.id == "" {
		return 0, nil
	}
	var count int
	if err := h.store.getJSON(h.store.baseURL+"/collections/"+h.id+"/count", &count); err != nil {
		return 0, err
	}
	return count, nil
}

// PeekMetadata fetches at most limit metadata entries from the server.
func (h *Handle) PeekMetadata(_ context.Context, limit int) ([]map[string]string, error) {
	if h.id == "" || limit <= 0 {
		return nil, nil
	}
	req := map[string]any{"limit": limit, "include": []string{"metadatas"}}
	var resp struct {
		Metadatas []map[string]any `json:"metadatas"`
	}
	if err := h.store.postJSON(h.store.baseURL+"/collections/"+h.id+"/get", req, &resp); err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(resp.Metadatas))
	for _, m := range resp.Metadatas {
		out = append(out, scalarMap(m))
	}
	return out, nil
}

// SearchWithScores queries the server with the embedded query vector and
// returns results with their distances. A server response without distances
// is reported as ErrScoringUnsupported so the caller can fall back.
func (h *Handle) SearchWithScores(ctx context.Context, text string, topK int) ([]domain.ScoredChunk, error) {
	if h.id == "" || topK <= 0 {
		return nil, nil
	}
	resp, err := h.query(ctx, text, topK, true)
	if err != nil {
		return nil, err
	}
	if len(resp.Distances) == 0 {
		return nil, domain.ErrScoringUnsupported
	}
	chunks := resp.chunks()
	if len(resp.Distances[0]) < len(chunks) {
		return nil, fmt.Errorf("chroma: %d results but %d distances", len(chunks), len(resp.Distances[0]))
	}
	scored := make([]domain.ScoredChunk, len(chunks))
	for i := range chunks {
		scored[i] = domain.ScoredChunk{Chunk: chunks[i], Score: resp.Distances[0][i]}
	}
	return scored, nil
}

// Search is the unscored query path.
func (h *Handle) Search(ctx context.Context, text string, topK int) ([]domain.Chunk, error) {
	resp, err := h.query(ctx, text, topK, false)
	if err != nil {
		return nil, err
	}
	return resp.chunks(), nil
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

func (r *queryResponse) chunks() []domain.Chunk {
	if len(r.IDs) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, len(r.IDs[0]))
	for i := range r.IDs[0] {
		c := domain.Chunk{ID: r.IDs[0][i]}
		if len(r.Documents) > 0 && i < len(r.Documents[0]) {
			c.Content = r.Documents[0][i]
		}
		if len(r.Metadatas) > 0 && i < len(r.Metadatas[0]) {
			c.Metadata = scalarMap(r.Metadatas[0][i])
		}
		chunks[i] = c
	}
	return chunks
}

func (h *Handle) query(ctx context.Context, text string, topK int, withDistances bool) (*queryResponse, error) {
	if h.id == "" || topK <= 0 {
		return &queryResponse{}, nil
	}
	vec, err := h.store.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	include := []string{"documents", "metadatas"}
	if withDistances {
		include = append(include, "distances")
	}
	req := map[string]any{
		"query_embeddings": [][]float64{vec},
		"n_results":        topK,
		"include":          include,
	}
	var resp queryResponse
	if err := h.store.postJSON(h.store.baseURL+"/collections/"+h.id+"/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type statusError struct {
	code int
	body string
}

func (e statusError) Error() string { return fmt.Sprintf("chroma: %d %s", e.code, e.body) }

func asStatus(err error, out *statusError) bool {
	se, ok := err.(statusError)
	if ok {
		*out = se
	}
	return ok
}

func (s *Store) getJSON(url string, out any) error {
	resp, err := s.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError{code: resp.StatusCode, body: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Store) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError{code: resp.StatusCode, body: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func scalarMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = formatFloat(t)
		case bool:
			out[k] = fmt.Sprintf("%t", t)
		}
	}
	return out
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
