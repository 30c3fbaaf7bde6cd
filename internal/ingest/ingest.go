// Package ingest populates a local-store collection from a source PDF:
// extract text, chunk, embed, append. The read-only application core never
// calls into this package; it only reads what ingestion wrote.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/nagendra-sahaj/contracts-rag/internal/chunker"
	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
	"github.com/nagendra-sahaj/contracts-rag/internal/summarizer"
	"github.com/nagendra-sahaj/contracts-rag/internal/vectorstore/local"
)

// Report describes one completed ingestion run.
type Report struct {
	Collection string
	Source     string
	Chunks     int
	Summary    string
}

// Pipeline turns a source PDF into an embedded, persisted collection.
type Pipeline struct {
	chunker          *chunker.SentenceChunker
	embedder         domain.Embedder
	store            *local.Store
	summarizer       *summarizer.Frequency
	summarySentences int
}

// New assembles an ingestion pipeline over the given store and embedder.
func New(ch *chunker.SentenceChunker, embedder domain.Embedder, store *local.Store, summarySentences int) *Pipeline {
	return &Pipeline{
		chunker:          ch,
		embedder:         embedder,
		store:            store,
		summarizer:       summarizer.NewFrequency(),
		summarySentences: summarySentences,
	}
}

// IngestPDF extracts the PDF's plain text, chunks and embeds it, and appends
// the chunks to the named collection. Must not run concurrently with itself
// on the same collection; the store assumes a single writer.
func (p *Pipeline) IngestPDF(ctx context.Context, collection, pdfPath string) (Report, error) {
	text, err := extractText(pdfPath)
	if err != nil {
		return Report{}, fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	source := filepath.Base(pdfPath)
	chunks := p.chunker.Chunk(docID(pdfPath), source, text)
	if len(chunks) == 0 {
		return Report{}, fmt.Errorf("no text extracted from %s", pdfPath)
	}
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := p.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return Report{}, fmt.Errorf("embed chunk %s: %w", chunks[i].ID, err)
		}
		vectors[i] = vec
	}
	if err := p.store.Append(collection, chunks, vectors); err != nil {
		return Report{}, fmt.Errorf("persist collection %q: %w", collection, err)
	}
	return Report{
		Collection: collection,
		Source:     source,
		Chunks:     len(chunks),
		Summary:    p.summarizer.Summarize(text, p.summarySentences),
	}, nil
}

func extractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func docID(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:8])
}
