package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

const (
	MaxResultDocumentCount = 5
	// Epsilon is the relevance difference below which two documents are
	// ordered by rating instead.
	Epsilon = 1e-6
)

// ComputeIDF returns ln(totalDocs/docFreq). docFreq must be positive.
func ComputeIDF(totalDocs int, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Rank orders docs in place by descending relevance, then descending rating
// when relevances are within Epsilon, then ascending id, and returns at most
// MaxResultDocumentCount of them. The epsilon comparison is not transitive,
// so docs are first put in id order to make the outcome independent of the
// input order.
func Rank(docs []index.Document) []index.Document {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	sort.SliceStable(docs, func(i, j int) bool {
		return Less(docs[i], docs[j])
	})
	if len(docs) > MaxResultDocumentCount {
		docs = docs[:MaxResultDocumentCount]
	}
	return docs
}

// Less reports whether a ranks ahead of b.
func Less(a, b index.Document) bool {
	if math.Abs(a.Relevance-b.Relevance) < Epsilon {
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	}
	return a.Relevance > b.Relevance
}
