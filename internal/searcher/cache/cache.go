// Package cache keeps a trailing window of recent search requests and counts
// how many of them came back empty.
package cache

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// DefaultWindow is one request per minute over a day.
const DefaultWindow = 1440

// Searcher is the part of the engine the request queue forwards to.
type Searcher interface {
	FindTopDocumentsWith(ctx context.Context, policy indexer.ExecutionPolicy, rawQuery string, pred indexer.Predicate) ([]index.Document, error)
}

type record struct {
	query   string
	results int
}

// RequestQueue records the outcome of the last Window successful requests.
// It is not safe for concurrent use.
type RequestQueue struct {
	searcher  Searcher
	policy    indexer.ExecutionPolicy
	ring      []record
	next      int
	size      int
	noResults int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*RequestQueue)

// WithWindow sets how many requests are remembered.
func WithWindow(n int) Option {
	return func(q *RequestQueue) {
		if n > 0 {
			q.ring = make([]record, n)
		}
	}
}

func WithPolicy(p indexer.ExecutionPolicy) Option {
	return func(q *RequestQueue) { q.policy = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *RequestQueue) { q.metrics = m }
}

func New(s Searcher, opts ...Option) *RequestQueue {
	q := &RequestQueue{
		searcher: s,
		ring:     make([]record, DefaultWindow),
		logger:   slog.Default().With("component", "request-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AddFindRequest searches for documents with status Actual and records the
// request.
func (q *RequestQueue) AddFindRequest(rawQuery string) ([]index.Document, error) {
	return q.AddFindRequestWith(rawQuery, indexer.DefaultPredicate)
}

func (q *RequestQueue) AddFindRequestByStatus(rawQuery string, status index.DocumentStatus) ([]index.Document, error) {
	return q.AddFindRequestWith(rawQuery, indexer.ByStatus(status))
}

// AddFindRequestWith searches with pred and records the request. Failed
// searches are returned as is and leave the window unchanged.
func (q *RequestQueue) AddFindRequestWith(rawQuery string, pred indexer.Predicate) ([]index.Document, error) {
	docs, err := q.searcher.FindTopDocumentsWith(context.Background(), q.policy, rawQuery, pred)
	if err != nil {
		return nil, err
	}
	q.push(record{query: rawQuery, results: len(docs)})
	return docs, nil
}

func (q *RequestQueue) push(r record) {
	if q.size == len(q.ring) {
		if q.ring[q.next].results == 0 {
			q.noResults--
		}
	} else {
		q.size++
	}
	q.ring[q.next] = r
	q.next = (q.next + 1) % len(q.ring)
	if r.results == 0 {
		q.noResults++
		q.logger.Debug("request returned no documents", "query", r.query)
	}
	if q.metrics != nil {
		q.metrics.NoResultRequestsInQueue.Set(float64(q.noResults))
	}
}

// NoResultRequests returns how many requests in the window found nothing.
func (q *RequestQueue) NoResultRequests() int {
	return q.noResults
}

// Len returns how many requests the window currently holds.
func (q *RequestQueue) Len() int {
	return q.size
}

func (q *RequestQueue) Window() int {
	return len(q.ring)
}
