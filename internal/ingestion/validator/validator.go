// Package validator checks corpus records before they reach the engine and
// reports every failing field at once.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	ID     int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return fmt.Sprintf("document %d: %s", e.ID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateRecord checks the id, text and status of rec. Text length is not
// limited; the engine accepts documents of any size.
func ValidateRecord(rec *ingestion.DocumentRecord) error {
	errs := make(map[string]string)
	if rec.ID < 0 {
		errs["id"] = "id must not be negative"
	}
	for _, word := range tokenizer.SplitIntoWords(rec.Text) {
		if !tokenizer.IsValidWord(word) {
			errs["text"] = fmt.Sprintf("word %q contains a control character", word)
			break
		}
	}
	if rec.Status < index.StatusActual || rec.Status > index.StatusRemoved {
		errs["status"] = fmt.Sprintf("unknown status %d", int(rec.Status))
	}
	if len(errs) > 0 {
		return &ValidationError{ID: rec.ID, Fields: errs}
	}
	return nil
}
