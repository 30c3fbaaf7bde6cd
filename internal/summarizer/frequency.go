// Package summarizer produces a short extractive summary of an ingested
// document by ranking its sentences on normalized word frequency.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	tokenRe    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// Frequency is a frequency-based sentence ranker.
type Frequency struct {
	stopwords map[string]struct{}
}

// NewFrequency creates the summarizer with a built-in English stopword list.
func NewFrequency() *Frequency {
	return &Frequency{stopwords: stopwords()}
}

// Summarize returns up to maxSentences of the text's highest-scoring
// sentences, in their original order.
func (f *Frequency) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	freq := f.tokenFrequencies(sentences)

	type ranked struct {
		idx   int
		score float64
	}
	order := make([]ranked, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if n := float64(len(toks)); n > 0 {
			score /= math.Sqrt(n)
		}
		order[i] = ranked{idx: i, score: score}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].score > order[j].score })

	if maxSentences > len(order) {
		maxSentences = len(order)
	}
	picked := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		picked[i] = order[i].idx
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(out, " ")
}

// tokenFrequencies counts non-stopword tokens across all sentences and
// normalizes by the most frequent one.
func (f *Frequency) tokenFrequencies(sentences []string) map[string]float64 {
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			if _, stop := f.stopwords[tok]; stop {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k := range freq {
			freq[k] /= maxF
		}
	}
	return freq
}

func tokens(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

func stopwords() map[string]struct{} {
	words := strings.Fields(
		"a an the and or but if then else for to of in on at by with as is are was were be been being " +
			"it this that these those from up down over under than so such into about between through " +
			"during before after above below out off own same too very can will just should now shall " +
			"hereby herein thereof party parties")
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
