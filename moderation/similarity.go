package moderation

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// ViolationThreshold is the cosine similarity at or above which a post is
	// treated as a duplicate of an earlier ad.
	ViolationThreshold = 0.75

	// ReviewThreshold is the lower bound of the band that is flagged to
	// administrators without any enforcement.
	ReviewThreshold = 0.35
)

// Score is the result of a similarity computation. Computable is false when
// the two-document corpus has no usable vocabulary, e.g. both texts are
// empty or contain only single-character tokens; callers treat that as no
// match.
type Score struct {
	Value      float64
	Computable bool
}

// Similarity computes the TF-IDF cosine similarity of two normalized texts.
// The corpus is just the pair itself: term frequencies are taken per text,
// inverse document frequencies over the two documents, and each vector is
// L2-normalized before the dot product. The result is symmetric and equals 1
// for identical non-empty texts.
func Similarity(textA, textB string) Score {
	docA := termFrequencies(textA)
	docB := termFrequencies(textB)
	if len(docA) == 0 || len(docB) == 0 {
		return Score{}
	}

	vocab := make(map[string]int, len(docA)+len(docB))
	for term := range docA {
		vocab[term]++
	}
	for term := range docB {
		vocab[term]++
	}

	var dot, normA, normB float64
	for term, docCount := range vocab {
		// Smoothed IDF over the two-document corpus, so terms shared by both
		// texts still contribute.
		idf := math.Log(3.0/float64(1+docCount)) + 1

		weightA := float64(docA[term]) * idf
		weightB := float64(docB[term]) * idf
		dot += weightA * weightB
		normA += weightA * weightA
		normB += weightB * weightB
	}

	if normA == 0 || normB == 0 {
		return Score{}
	}

	return Score{
		Value:      dot / (math.Sqrt(normA) * math.Sqrt(normB)),
		Computable: true,
	}
}

// termFrequencies tokenizes a normalized text into term counts. Tokens
// shorter than two runes carry no signal for ad matching and are dropped.
func termFrequencies(text string) map[string]int {
	counts := make(map[string]int)
	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		counts[token]++
	}
	return counts
}
