// Package hash provides a deterministic feature-hashing embedder that needs
// no network and no corpus preparation. It is the offline default and the
// embedder used in tests.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const defaultDimension = 256

var tokenRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Embedder hashes lowercase word tokens into a fixed number of buckets and
// L2-normalizes the resulting count vector.
type Embedder struct {
	dimension int
}

// New creates a feature-hashing embedder. A non-positive dimension selects
// the default bucket count.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hash" }

// Dimension returns the fixed bucket count.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed maps the text onto the bucket vector. The zero vector is returned
// for text with no word tokens.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
