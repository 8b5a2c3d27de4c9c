package index

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// DocumentStatus is an opaque tag carried with each document. The engine
// attaches no behaviour to any value; it is only a predicate input.
type DocumentStatus int

const (
	StatusActual DocumentStatus = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{"actual", "irrelevant", "banned", "removed"}

func (s DocumentStatus) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus converts a case-insensitive status name into a DocumentStatus.
func ParseStatus(name string) (DocumentStatus, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == lower {
			return DocumentStatus(i), nil
		}
	}
	return 0, apperrors.Newf(apperrors.ErrInvalidInput, "unknown document status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s DocumentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DocumentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Document is a single search hit.
type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %g, rating = %d }", d.ID, d.Relevance, d.Rating)
}

// DocumentData is the stored record for a live document.
type DocumentData struct {
	Rating int
	Status DocumentStatus
	Text   string
}
