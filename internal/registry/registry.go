// Package registry maps logical collection names to the documents they were
// built from. It is pure configuration; storage is never consulted.
package registry

import (
	"fmt"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

// Entry is one registered collection with its display document.
type Entry struct {
	Name     string
	Document string
}

// Registry holds the configured collections in registration order.
type Registry struct {
	order  []Entry
	byName map[string]string
}

// New creates a registry pre-populated with the given entries, kept in order.
func New(entries ...Entry) *Registry {
	r := &Registry{byName: make(map[string]string, len(entries))}
	for _, e := range entries {
		r.Register(e.Name, e.Document)
	}
	return r
}

// Register appends a collection. Registration is append-only; a duplicate
// name keeps the first registration.
func (r *Registry) Register(name, document string) {
	if _, ok := r.byName[name]; ok {
		return
	}
	r.byName[name] = document
	r.order = append(r.order, Entry{Name: name, Document: document})
}

// List returns the registered collections in registration order.
func (r *Registry) List() []Entry {
	out := make([]Entry, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns the document registered for name, or ErrUnknownCollection.
func (r *Registry) Resolve(name string) (string, error) {
	doc, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCollection, name)
	}
	return doc, nil
}

// Len reports the number of registered collections.
func (r *Registry) Len() int { return len(r.order) }
