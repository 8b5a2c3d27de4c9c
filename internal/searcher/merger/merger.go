package merger

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

// Concat flattens per-query results in query order, keeping each query's
// rank order.
func Concat(results [][]index.Document) []index.Document {
	n := 0
	for _, docs := range results {
		n += len(docs)
	}
	out := make([]index.Document, 0, n)
	for _, docs := range results {
		out = append(out, docs...)
	}
	return out
}

// Merge picks the best limit documents across all result lists, ordered as
// ranker.Less orders them. A document returned by several queries counts
// once, with its best entry.
func Merge(results [][]index.Document, limit int) []index.Document {
	if limit <= 0 {
		limit = ranker.MaxResultDocumentCount
	}
	best := make(map[int]index.Document)
	for _, docs := range results {
		for _, doc := range docs {
			if cur, ok := best[doc.ID]; !ok || ranker.Less(doc, cur) {
				best[doc.ID] = doc
			}
		}
	}
	// ranker.Less is not transitive for relevances within the epsilon, so
	// the heap must see candidates in a fixed order.
	candidates := make([]index.Document, 0, len(best))
	for _, doc := range best {
		candidates = append(candidates, doc)
	}
	slices.SortFunc(candidates, func(a, b index.Document) int { return cmp.Compare(a.ID, b.ID) })

	h := &docHeap{}
	for _, doc := range candidates {
		heap.Push(h, doc)
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	out := make([]index.Document, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(index.Document)
	}
	return out
}

// docHeap is a min-heap: the root is the worst ranked document.
type docHeap []index.Document

func (h docHeap) Len() int { return len(h) }

func (h docHeap) Less(i, j int) bool { return ranker.Less(h[j], h[i]) }

func (h docHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *docHeap) Push(x any) {
	*h = append(*h, x.(index.Document))
}

func (h *docHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
