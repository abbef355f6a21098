// Package tfidf implements term-frequency / inverse-document-frequency weighting, used to pick
// which token of a sentence to mask or replace: rare terms are favoured.
//
// A Model is fitted once over a whole batch of tokenized documents, before any per sentence
// sampling.
package tfidf

import (
	"math"
	"math/rand/v2"
)

// Model holds the inverse document frequencies fitted over a batch.
type Model struct {
	// NumDocs is the number of documents the model was fitted on.
	NumDocs int

	// IDF maps each term seen during Fit to its smoothed inverse document frequency.
	IDF map[string]float64
}

// Fit computes the smoothed inverse document frequency of every term in docs:
//
//	idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// where N is the number of documents and df(t) the number of documents containing t.
func Fit(docs [][]string) *Model {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}
	m := &Model{
		NumDocs: len(docs),
		IDF:     make(map[string]float64, len(df)),
	}
	n := float64(len(docs))
	for term, count := range df {
		m.IDF[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return m
}

// Weights returns one weight per token of doc: the L2 normalized tf-idf of the token's term,
// clipped to at most 1. Tokens whose term was not seen during Fit have weight 0.
func (m *Model) Weights(doc []string) []float64 {
	tf := make(map[string]int, len(doc))
	for _, term := range doc {
		tf[term]++
	}
	scores := make(map[string]float64, len(tf))
	var norm float64
	for term, count := range tf {
		idf, found := m.IDF[term]
		if !found {
			continue
		}
		score := float64(count) * idf
		scores[term] = score
		norm += score * score
	}
	weights := make([]float64, len(doc))
	if norm == 0 {
		return weights
	}
	norm = math.Sqrt(norm)
	for ii, term := range doc {
		weights[ii] = min(1.0, scores[term]/norm)
	}
	return weights
}

// Sample draws an index with probability proportional to its weight. It returns -1 if no weight
// is positive. Zero and negative weights are never drawn.
func Sample(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := rng.Float64() * total
	last := -1
	for ii, w := range weights {
		if w <= 0 {
			continue
		}
		last = ii
		if target < w {
			return ii
		}
		target -= w
	}
	// Rounding may leave target marginally above the last positive weight.
	return last
}
