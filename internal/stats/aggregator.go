// Package stats reports per-collection statistics across every namespace the
// persisted store holds, including dynamically ingested collections the
// registry does not know about.
package stats

import (
	"context"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

// DefaultSampleLimit bounds how many chunk metadata entries are peeked per
// collection when collecting sample sources.
const DefaultSampleLimit = 20

// Aggregator walks the store's namespaces and collects CollectionStats.
type Aggregator struct {
	sampleLimit int
}

// New creates an aggregator with the default sample bound.
func New() *Aggregator { return &Aggregator{sampleLimit: DefaultSampleLimit} }

// ListAll returns stats for every collection the store enumerates, in the
// store's listing order. A collection that fails inspection is reported as
// degraded with count 0 rather than aborting the listing; only a failure to
// enumerate the namespaces at all is an error.
func (a *Aggregator) ListAll(ctx context.Context, store domain.Store) ([]domain.CollectionStats, error) {
	names, err := store.Collections()
	if err != nil {
		return nil, err
	}
	out := make([]domain.CollectionStats, 0, len(names))
	for _, name := range names {
		out = append(out, a.inspect(ctx, store, name))
	}
	return out, nil
}

func (a *Aggregator) inspect(ctx context.Context, store domain.Store, name string) domain.CollectionStats {
	stats := domain.CollectionStats{Name: name}
	h, err := store.Open(name)
	if err != nil {
		return degraded(name, err)
	}
	count, err := h.Count(ctx)
	if err != nil {
		return degraded(name, err)
	}
	metas, err := h.PeekMetadata(ctx, a.sampleLimit)
	if err != nil {
		return degraded(name, err)
	}
	stats.Count = count
	seen := make(map[string]struct{})
	for _, m := range metas {
		src, ok := m["source"]
		if !ok || src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		stats.SampleSources = append(stats.SampleSources, src)
	}
	return stats
}

func degraded(name string, err error) domain.CollectionStats {
	return domain.CollectionStats{Name: name, Degraded: true, Reason: err.Error()}
}
