// Package index holds the in-memory inverted index: a word to document
// term-frequency table and its per-document transpose, always kept in
// lockstep. The index performs no locking of its own; concurrent readers are
// safe only while no Add or Remove is in flight.
package index

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"golang.org/x/sync/errgroup"
)

type MemoryIndex struct {
	wordToDocs map[string]map[int]float64
	docToWords map[int]map[string]float64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		wordToDocs: make(map[string]map[int]float64),
		docToWords: make(map[int]map[string]float64),
	}
}

// Add indexes words for docID. Each occurrence contributes 1/len(words) to
// the word's term frequency. Stop-words must already be removed. Word keys
// are copied so the index never pins the caller's text.
func (m *MemoryIndex) Add(docID int, words []string) {
	freqs := make(map[string]float64)
	m.docToWords[docID] = freqs
	if len(words) == 0 {
		return
	}
	unit := 1.0 / float64(len(words))
	owned := make(map[string]string)
	for _, word := range words {
		key, ok := owned[word]
		if !ok {
			key = strings.Clone(word)
			owned[word] = key
		}
		docs, exists := m.wordToDocs[key]
		if !exists {
			docs = make(map[int]float64)
			m.wordToDocs[key] = docs
		}
		docs[docID] += unit
		freqs[key] += unit
	}
}

// Postings returns the document to term-frequency map for word. The map is
// owned by the index and must not be modified. Nil if word is not indexed.
func (m *MemoryIndex) Postings(word string) map[int]float64 {
	return m.wordToDocs[word]
}

// DocFreq returns how many documents contain word.
func (m *MemoryIndex) DocFreq(word string) int {
	return len(m.wordToDocs[word])
}

// Contains reports whether docID contains word.
func (m *MemoryIndex) Contains(docID int, word string) bool {
	_, ok := m.docToWords[docID][word]
	return ok
}

// Frequencies returns a copy of the word to term-frequency map of docID, or
// an empty map if docID is not indexed.
func (m *MemoryIndex) Frequencies(docID int) map[string]float64 {
	freqs, ok := m.docToWords[docID]
	if !ok {
		return map[string]float64{}
	}
	return maps.Clone(freqs)
}

// Remove deletes every trace of docID from both tables. Unknown ids are a
// no-op.
func (m *MemoryIndex) Remove(docID int) {
	freqs, ok := m.docToWords[docID]
	if !ok {
		return
	}
	for word := range freqs {
		delete(m.wordToDocs[word], docID)
	}
	m.finishRemove(docID, freqs)
}

// RemoveParallel is Remove with the per-word deletions fanned out over at
// most workers goroutines (unbounded if workers <= 0). Each goroutine owns
// one word's posting map, so the workers never touch the same map. Words
// left without documents are pruned afterwards on the calling goroutine.
func (m *MemoryIndex) RemoveParallel(ctx context.Context, docID int, workers int) error {
	freqs, ok := m.docToWords[docID]
	if !ok {
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for word := range freqs {
		docs := m.wordToDocs[word]
		g.Go(func() error {
			delete(docs, docID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("removing document %d: %w", docID, err)
	}
	m.finishRemove(docID, freqs)
	return nil
}

func (m *MemoryIndex) finishRemove(docID int, freqs map[string]float64) {
	for word := range freqs {
		if len(m.wordToDocs[word]) == 0 {
			delete(m.wordToDocs, word)
		}
	}
	delete(m.docToWords, docID)
}

// Terms returns the number of distinct indexed words.
func (m *MemoryIndex) Terms() int {
	return len(m.wordToDocs)
}

// DocCount returns the number of indexed documents.
func (m *MemoryIndex) DocCount() int {
	return len(m.docToWords)
}

// Verify checks that both tables agree pair for pair and that every term
// frequency lies in (0, 1].
func (m *MemoryIndex) Verify() error {
	pairs := 0
	for word, docs := range m.wordToDocs {
		if len(docs) == 0 {
			return fmt.Errorf("word %q has no documents", word)
		}
		for docID, tf := range docs {
			if tf <= 0 || tf > 1+1e-9 {
				return fmt.Errorf("word %q in document %d has term frequency %v", word, docID, tf)
			}
			other, ok := m.docToWords[docID][word]
			if !ok || other != tf {
				return fmt.Errorf("word %q in document %d missing from transpose", word, docID)
			}
			pairs++
		}
	}
	transposed := 0
	for _, words := range m.docToWords {
		transposed += len(words)
	}
	if pairs != transposed {
		return fmt.Errorf("tables disagree: %d word pairs, %d document pairs", pairs, transposed)
	}
	return nil
}
