// Package dedup removes documents whose set of indexed words repeats that of
// a document with a lower id.
package dedup

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Engine is the part of the search engine needed for deduplication.
type Engine interface {
	All() iter.Seq[int]
	GetWordFrequencies(id int) map[string]float64
	RemoveDocument(id int)
}

type options struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*options)

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// RemoveDuplicates keeps the lowest id of every group of documents with the
// same word set (frequencies are ignored) and removes the others. It returns
// the removed ids in ascending order.
func RemoveDuplicates(ctx context.Context, e Engine, opts ...Option) ([]int, error) {
	o := options{logger: slog.Default().With("component", "dedup")}
	for _, opt := range opts {
		opt(&o)
	}

	seen := make(map[string]struct{})
	var duplicates []int
	for id := range e.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := wordSetKey(e.GetWordFrequencies(id))
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}

	// removal waits until iteration is over
	for _, id := range duplicates {
		o.logger.Info("found duplicate document id", "doc_id", id)
		e.RemoveDocument(id)
	}
	if o.metrics != nil {
		o.metrics.DuplicatesRemovedTotal.Add(float64(len(duplicates)))
	}
	if duplicates == nil {
		duplicates = []int{}
	}
	return duplicates, nil
}

// wordSetKey joins the sorted words with NUL, which never occurs in an
// indexed word.
func wordSetKey(freqs map[string]float64) string {
	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}
	slices.Sort(words)
	return strings.Join(words, "\x00")
}
