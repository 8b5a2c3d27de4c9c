// Package consumer feeds corpus records into the search engine, skipping
// records that fail validation or indexing and reporting what was loaded.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
)

// Indexer is the write side of the engine.
type Indexer interface {
	AddDocument(id int, text string, status index.DocumentStatus, ratings []int) error
}

// Stats summarises one load.
type Stats struct {
	Indexed  int
	Rejected int
}

// IndexConsumer indexes corpus records one at a time.
type IndexConsumer struct {
	indexer Indexer
	strict  bool
	logger  *slog.Logger
}

// New creates an IndexConsumer. In strict mode the first rejected record
// aborts the load.
func New(idx Indexer, strict bool) *IndexConsumer {
	return &IndexConsumer{
		indexer: idx,
		strict:  strict,
		logger:  slog.Default().With("component", "index-consumer"),
	}
}

// Consume indexes records in order. It stops early only when ctx is
// cancelled or, in strict mode, on the first rejected record.
func (ic *IndexConsumer) Consume(ctx context.Context, records []ingestion.DocumentRecord) (Stats, error) {
	var stats Stats
	for i := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec := &records[i]
		if err := ic.handle(rec); err != nil {
			stats.Rejected++
			if ic.strict {
				return stats, err
			}
			ic.logger.Warn("document rejected",
				"doc_id", rec.ID,
				"error", err,
			)
			continue
		}
		stats.Indexed++
	}
	ic.logger.Info("corpus indexed",
		"indexed", stats.Indexed,
		"rejected", stats.Rejected,
	)
	return stats, nil
}

func (ic *IndexConsumer) handle(rec *ingestion.DocumentRecord) error {
	if err := validator.ValidateRecord(rec); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			ic.logger.Debug("validation failed", "doc_id", rec.ID, "fields", len(verr.Fields))
		}
		return err
	}
	if err := ic.indexer.AddDocument(rec.ID, rec.Text, rec.Status, rec.Ratings); err != nil {
		return fmt.Errorf("indexing document %d: %w", rec.ID, err)
	}
	ic.logger.Debug("document indexed", "doc_id", rec.ID)
	return nil
}
