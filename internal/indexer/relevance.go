package indexer

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/shard"
)

// relevanceTable collects the per-term contributions of one query. Every
// implementation sums a document's contributions in term order, starting
// from zero, so the totals are identical whatever order terms were recorded
// in.
type relevanceTable interface {
	record(docID, term int, value float64)
	erase(docID int)
	// finish must be called once all writers are done. It returns the
	// surviving ids in ascending order.
	finish() []int
	total(docID int) float64
}

// sequentialRelevance expects record calls in ascending term order and adds
// them as they arrive.
type sequentialRelevance struct {
	acc    *shard.Plain[int, float64]
	values map[int]float64
}

func (s *sequentialRelevance) record(docID, _ int, value float64) {
	s.acc.Add(docID, value)
}

func (s *sequentialRelevance) erase(docID int) {
	s.acc.Erase(docID)
}

func (s *sequentialRelevance) finish() []int {
	s.values = s.acc.Snapshot()
	return sortedKeys(s.values)
}

func (s *sequentialRelevance) total(docID int) float64 {
	return s.values[docID]
}

// parallelRelevance keeps one slot per plus word for every document, so
// concurrent writers never add floats; the sum happens in total.
type parallelRelevance struct {
	terms int
	slots *shard.Table[int, []float64]
	snap  map[int][]float64
}

func (p *parallelRelevance) record(docID, term int, value float64) {
	p.slots.Update(docID, func(v *[]float64) {
		if *v == nil {
			*v = make([]float64, p.terms)
		}
		(*v)[term] = value
	})
}

func (p *parallelRelevance) erase(docID int) {
	p.slots.Erase(docID)
}

func (p *parallelRelevance) finish() []int {
	p.snap = p.slots.Snapshot()
	return sortedKeys(p.snap)
}

// total adds absent terms as +0, which leaves a non-negative sum unchanged,
// so the result equals the sequential running sum bit for bit.
func (p *parallelRelevance) total(docID int) float64 {
	var sum float64
	for _, v := range p.snap[docID] {
		sum += v
	}
	return sum
}

func (e *Engine) newRelevanceTable(policy ExecutionPolicy, terms int) (relevanceTable, error) {
	if policy != Parallel {
		return &sequentialRelevance{acc: shard.NewPlain[int, float64]()}, nil
	}
	slots, err := shard.NewTable[int, []float64](e.shardCount)
	if err != nil {
		return nil, err
	}
	return &parallelRelevance{terms: terms, slots: slots}, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
