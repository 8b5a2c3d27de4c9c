// Package errors defines the error taxonomy shared by the search engine and
// its collaborators. Callers classify failures with errors.Is against the
// sentinels; AppError attaches a human-readable message to a sentinel.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentExists   = errors.New("document already exists")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInternal         = errors.New("internal error")
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// DuplicateDocument reports an id that is already live. The returned error
// matches both ErrDocumentExists and ErrInvalidInput.
func DuplicateDocument(id int) error {
	return Newf(fmt.Errorf("%w: %w", ErrInvalidInput, ErrDocumentExists), "document id %d", id)
}

// Kind returns a short class name for err, suitable as a metric label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDocumentExists):
		return "duplicate"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDocumentNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
