// Package chunker splits extracted document text into overlapping
// sentence-based chunks ready for embedding.
package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nagendra-sahaj/contracts-rag/internal/domain"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// SentenceChunker groups consecutive sentences into chunks with a configurable
// overlap between neighbours.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

// NewSentenceChunker creates a chunker. Non-positive sizes fall back to five
// sentences per chunk with no overlap.
func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{sentencesPerChunk: sentencesPerChunk, overlapSentences: overlapSentences}
}

// Chunk splits text into chunks carrying the originating document in their
// source metadata. Text without sentence punctuation becomes a single chunk.
func (c *SentenceChunker) Chunk(docID, source, text string) []domain.Chunk {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []domain.Chunk
	idx := 0
	for start := 0; start < len(sentences); {
		end := start + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, domain.Chunk{
			ID:      docID + ":" + strconv.Itoa(idx),
			Content: strings.Join(sentences[start:end], " "),
			Metadata: map[string]string{
				"source": source,
				"chunk":  strconv.Itoa(idx),
			},
		})
		if end == len(sentences) {
			break
		}
		start = end - c.overlapSentences
		idx++
	}
	return chunks
}
