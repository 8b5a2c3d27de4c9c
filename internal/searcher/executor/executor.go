// Package executor runs batches of queries against a Searcher concurrently
// and returns their results in query order.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Searcher is the read side of the engine used by the executor. It must be
// safe for concurrent calls while no documents are being added or removed.
type Searcher interface {
	FindTopDocuments(rawQuery string) ([]index.Document, error)
}

type Executor struct {
	searcher   Searcher
	maxWorkers int
	group      singleflight.Group
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Executor)

// WithMaxWorkers bounds the number of queries in flight. Zero means
// GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(e *Executor) { e.maxWorkers = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func New(searcher Searcher, opts ...Option) *Executor {
	e := &Executor{
		searcher: searcher,
		logger:   slog.Default().With("component", "batch-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessQueries runs every query and returns the per-query results, with
// result i belonging to queries[i]. If any query fails the whole batch fails
// and no results are returned. Identical queries in flight at the same time
// are executed once.
func (e *Executor) ProcessQueries(ctx context.Context, queries []string) ([][]index.Document, error) {
	log := logger.FromContext(ctx).With("component", "batch-executor")
	if e.metrics != nil {
		e.metrics.BatchSize.Observe(float64(len(queries)))
	}
	results := make([][]index.Document, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := e.find(q)
			if err != nil {
				return fmt.Errorf("query %d %q: %w", i, q, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("batch failed", "queries", len(queries), "error", err)
		return nil, err
	}
	log.Debug("batch processed", "queries", len(queries))
	return results, nil
}

// ProcessQueriesJoined is ProcessQueries flattened: all documents of the
// first query in rank order, then those of the second, and so on.
func (e *Executor) ProcessQueriesJoined(ctx context.Context, queries []string) ([]index.Document, error) {
	results, err := e.ProcessQueries(ctx, queries)
	if err != nil {
		return nil, err
	}
	return merger.Concat(results), nil
}

func (e *Executor) find(q string) ([]index.Document, error) {
	v, err, shared := e.group.Do(q, func() (any, error) {
		return e.searcher.FindTopDocuments(q)
	})
	if err != nil {
		return nil, err
	}
	docs := v.([]index.Document)
	if shared {
		docs = slices.Clone(docs)
	}
	return docs, nil
}

func (e *Executor) workers() int {
	if e.maxWorkers > 0 {
		return e.maxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// ProcessQueries runs queries against s with default settings.
func ProcessQueries(ctx context.Context, s Searcher, queries []string) ([][]index.Document, error) {
	return New(s).ProcessQueries(ctx, queries)
}

// ProcessQueriesJoined runs queries against s with default settings and
// concatenates the results.
func ProcessQueriesJoined(ctx context.Context, s Searcher, queries []string) ([]index.Document, error) {
	return New(s).ProcessQueriesJoined(ctx, queries)
}
