// Package indexer implements the search engine: document ingestion into the
// inverted index, TF-IDF ranking, per-document matching and removal. Every
// query-side operation runs under an ExecutionPolicy; the Parallel policy
// fans work out over goroutines and aggregates relevance in a sharded map.
//
// The engine does no locking of its own tables. Callers must serialize
// AddDocument and RemoveDocument against each other and against queries;
// any number of queries may run concurrently while no mutation is in flight.
package indexer

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

const DefaultShardCount = 8

type Engine struct {
	parser     *parser.Parser
	memIndex   *index.MemoryIndex
	documents  map[int]index.DocumentData
	ids        *roaring64.Bitmap
	shardCount int
	maxWorkers int
	policy     ExecutionPolicy
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Engine)

// WithShardCount sets the number of shards of the relevance map used by
// parallel ranking.
func WithShardCount(n int) Option {
	return func(e *Engine) { e.shardCount = n }
}

// WithMaxWorkers bounds the goroutines of one parallel operation. Zero means
// GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(e *Engine) { e.maxWorkers = n }
}

// WithPolicy sets the policy used by FindTopDocuments and
// FindTopDocumentsByStatus.
func WithPolicy(p ExecutionPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an empty engine with the given stop-words.
func NewEngine(stopWords []string, opts ...Option) (*Engine, error) {
	p, err := parser.New(stopWords)
	if err != nil {
		return nil, fmt.Errorf("creating query parser: %w", err)
	}
	e := &Engine{
		parser:     p,
		memIndex:   index.NewMemoryIndex(),
		documents:  make(map[int]index.DocumentData),
		ids:        roaring64.New(),
		shardCount: DefaultShardCount,
		policy:     Sequential,
		logger:     slog.Default().With("component", "search-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shardCount < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "shard count must be at least 1, got %d", e.shardCount)
	}
	if e.maxWorkers < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "max workers must not be negative, got %d", e.maxWorkers)
	}
	return e, nil
}

// NewEngineFromText creates an engine whose stop-words are the space
// separated words of text.
func NewEngineFromText(stopWords string, opts ...Option) (*Engine, error) {
	return NewEngine(tokenizer.SplitIntoWords(stopWords), opts...)
}

// AddDocument indexes text under id. It fails without touching the engine if
// id is negative or live, or if any word contains a control character.
func (e *Engine) AddDocument(id int, text string, status index.DocumentStatus, ratings []int) error {
	err := e.addDocument(id, text, status, ratings)
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.WithLabelValues(apperrors.Kind(err)).Inc()
		e.metrics.DocumentCount.Set(float64(len(e.documents)))
	}
	return err
}

func (e *Engine) addDocument(id int, text string, status index.DocumentStatus, ratings []int) error {
	if id < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "document id %d is negative", id)
	}
	if _, exists := e.documents[id]; exists {
		return apperrors.DuplicateDocument(id)
	}
	words, err := e.splitIntoWordsNoStop(text)
	if err != nil {
		return fmt.Errorf("adding document %d: %w", id, err)
	}

	e.documents[id] = index.DocumentData{
		Rating: computeAverageRating(ratings),
		Status: status,
		Text:   text,
	}
	e.memIndex.Add(id, words)
	e.ids.Add(uint64(id))

	e.logger.Debug("document indexed",
		"doc_id", id,
		"word_count", len(words),
		"status", status.String(),
	)
	return nil
}

func (e *Engine) splitIntoWordsNoStop(text string) ([]string, error) {
	all := tokenizer.SplitIntoWords(text)
	words := all[:0]
	for _, word := range all {
		if !tokenizer.IsValidWord(word) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "word %q is invalid", word)
		}
		if !e.parser.IsStopWord(word) {
			words = append(words, word)
		}
	}
	return words, nil
}

func computeAverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}

// FindTopDocuments ranks documents with status Actual under the engine's
// default policy.
func (e *Engine) FindTopDocuments(rawQuery string) ([]index.Document, error) {
	return e.FindTopDocumentsWith(context.Background(), e.policy, rawQuery, DefaultPredicate)
}

// FindTopDocumentsByStatus ranks documents with exactly the given status.
func (e *Engine) FindTopDocumentsByStatus(rawQuery string, status index.DocumentStatus) ([]index.Document, error) {
	return e.FindTopDocumentsWith(context.Background(), e.policy, rawQuery, ByStatus(status))
}

// FindTopDocumentsWith returns up to ranker.MaxResultDocumentCount documents
// accepted by pred, ordered by descending TF-IDF relevance. A nil pred is
// DefaultPredicate. Documents containing any minus word are never returned.
func (e *Engine) FindTopDocumentsWith(ctx context.Context, policy ExecutionPolicy, rawQuery string, pred Predicate) ([]index.Document, error) {
	start := time.Now()
	docs, err := e.findTopDocuments(ctx, policy, rawQuery, pred)
	if e.metrics != nil {
		e.metrics.SearchLatency.WithLabelValues(policy.String()).Observe(time.Since(start).Seconds())
		switch {
		case err != nil:
			e.metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		case len(docs) == 0:
			e.metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultZeroResult).Inc()
		default:
			e.metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultHit).Inc()
		}
		if err == nil {
			e.metrics.SearchResultsCount.Observe(float64(len(docs)))
		}
	}
	return docs, err
}

func (e *Engine) findTopDocuments(ctx context.Context, policy ExecutionPolicy, rawQuery string, pred Predicate) ([]index.Document, error) {
	if pred == nil {
		pred = DefaultPredicate
	}
	query, err := e.parser.Parse(rawQuery)
	if err != nil {
		return nil, err
	}
	matched, err := e.findAllDocuments(ctx, policy, query, pred)
	if err != nil {
		return nil, fmt.Errorf("ranking query %q: %w", rawQuery, err)
	}
	ranked := ranker.Rank(matched)
	e.logger.Debug("query executed",
		"query", rawQuery,
		"policy", policy.String(),
		"plus_words", len(query.Plus),
		"minus_words", len(query.Minus),
		"candidates", len(matched),
		"results", len(ranked),
	)
	return ranked, nil
}

// findAllDocuments runs the three ranking phases: accumulate relevance for
// plus words, erase documents hit by minus words, then materialise the
// survivors. Each phase completes before the next one starts.
func (e *Engine) findAllDocuments(ctx context.Context, policy ExecutionPolicy, query *parser.Query, pred Predicate) ([]index.Document, error) {
	relevance, err := e.newRelevanceTable(policy, len(query.Plus))
	if err != nil {
		return nil, err
	}
	total := len(e.documents)

	err = e.forEach(ctx, policy, len(query.Plus), func(i int) error {
		postings := e.memIndex.Postings(query.Plus[i])
		if len(postings) == 0 {
			return nil
		}
		idf := ranker.ComputeIDF(total, len(postings))
		for docID, tf := range postings {
			data := e.documents[docID]
			if pred(docID, data.Status, data.Rating) {
				relevance.record(docID, i, tf*idf)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = e.forEach(ctx, policy, len(query.Minus), func(i int) error {
		for docID := range e.memIndex.Postings(query.Minus[i]) {
			relevance.erase(docID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := relevance.finish()
	matched := make([]index.Document, len(ids))
	err = e.forEach(ctx, policy, len(ids), func(i int) error {
		docID := ids[i]
		matched[i] = index.Document{
			ID:        docID,
			Relevance: relevance.total(docID),
			Rating:    e.documents[docID].Rating,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// MatchDocument is MatchDocumentWith under the Sequential policy.
func (e *Engine) MatchDocument(rawQuery string, id int) ([]string, index.DocumentStatus, error) {
	return e.MatchDocumentWith(context.Background(), Sequential, rawQuery, id)
}

// MatchDocumentWith returns the plus words of rawQuery that occur in
// document id, sorted and unique, together with the document's status. If
// any minus word occurs in the document the word list is empty. An unknown
// id is an ErrDocumentNotFound error.
func (e *Engine) MatchDocumentWith(ctx context.Context, policy ExecutionPolicy, rawQuery string, id int) ([]string, index.DocumentStatus, error) {
	query, err := e.parser.Parse(rawQuery)
	if err != nil {
		return nil, 0, err
	}
	data, ok := e.documents[id]
	if !ok {
		return nil, 0, apperrors.Newf(apperrors.ErrDocumentNotFound, "document id %d", id)
	}

	excluded := make([]bool, len(query.Minus))
	err = e.forEach(ctx, policy, len(query.Minus), func(i int) error {
		excluded[i] = e.memIndex.Contains(id, query.Minus[i])
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	for _, hit := range excluded {
		if hit {
			return []string{}, data.Status, nil
		}
	}

	found := make([]bool, len(query.Plus))
	err = e.forEach(ctx, policy, len(query.Plus), func(i int) error {
		found[i] = e.memIndex.Contains(id, query.Plus[i])
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	// query.Plus is sorted and unique, so the matches are too
	matched := make([]string, 0, len(query.Plus))
	for i, ok := range found {
		if ok {
			matched = append(matched, query.Plus[i])
		}
	}
	return matched, data.Status, nil
}

// RemoveDocument is RemoveDocumentWith under the Sequential policy.
func (e *Engine) RemoveDocument(id int) {
	_ = e.RemoveDocumentWith(context.Background(), Sequential, id)
}

// RemoveDocumentWith deletes document id and every index entry it
// contributed. Unknown ids are a no-op.
func (e *Engine) RemoveDocumentWith(ctx context.Context, policy ExecutionPolicy, id int) error {
	if _, ok := e.documents[id]; !ok {
		return nil
	}
	if policy == Parallel {
		if err := e.memIndex.RemoveParallel(ctx, id, e.workers()); err != nil {
			return err
		}
	} else {
		e.memIndex.Remove(id)
	}
	delete(e.documents, id)
	e.ids.Remove(uint64(id))

	if e.metrics != nil {
		e.metrics.DocsRemovedTotal.Inc()
		e.metrics.DocumentCount.Set(float64(len(e.documents)))
	}
	e.logger.Debug("document removed", "doc_id", id, "policy", policy.String())
	return nil
}

// GetWordFrequencies returns the word to term-frequency map of document id,
// or an empty map if id is not live.
func (e *Engine) GetWordFrequencies(id int) map[string]float64 {
	return e.memIndex.Frequencies(id)
}

func (e *Engine) GetDocumentCount() int {
	return len(e.documents)
}

// Document returns the stored record of a live document.
func (e *Engine) Document(id int) (index.DocumentData, bool) {
	data, ok := e.documents[id]
	return data, ok
}

// DocumentIDs returns the live document ids in ascending order.
func (e *Engine) DocumentIDs() []int {
	ids := make([]int, 0, e.ids.GetCardinality())
	for id := range e.All() {
		ids = append(ids, id)
	}
	return ids
}

// All iterates the live document ids in ascending order. The engine must not
// be mutated during iteration.
func (e *Engine) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := e.ids.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// StopWords returns the engine's stop-words in sorted order.
func (e *Engine) StopWords() []string {
	return e.parser.StopWords()
}

// Verify checks the engine's internal invariants: the id set mirrors the
// document table, the index covers exactly the live documents, and the two
// index tables agree.
func (e *Engine) Verify() error {
	if int(e.ids.GetCardinality()) != len(e.documents) {
		return fmt.Errorf("id set has %d ids, document table has %d", e.ids.GetCardinality(), len(e.documents))
	}
	for id := range e.documents {
		if !e.ids.Contains(uint64(id)) {
			return fmt.Errorf("document %d missing from id set", id)
		}
	}
	if e.memIndex.DocCount() != len(e.documents) {
		return fmt.Errorf("index has %d documents, document table has %d", e.memIndex.DocCount(), len(e.documents))
	}
	return e.memIndex.Verify()
}
