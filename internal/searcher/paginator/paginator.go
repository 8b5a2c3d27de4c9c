// Package paginator splits result lists into fixed-size pages.
package paginator

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Page is a view into the paginated slice; it shares its backing array.
type Page[T any] struct {
	Number int
	Items  []T
}

func (p Page[T]) Len() int {
	return len(p.Items)
}

// String renders the items back to back using their fmt representation.
func (p Page[T]) String() string {
	var b strings.Builder
	for _, item := range p.Items {
		fmt.Fprint(&b, item)
	}
	return b.String()
}

// Paginate cuts items into pages of pageSize; the last page may be shorter.
// Empty input yields no pages.
func Paginate[T any](items []T, pageSize int) ([]Page[T], error) {
	if pageSize <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "page size must be positive, got %d", pageSize)
	}
	pages := make([]Page[T], 0, (len(items)+pageSize-1)/pageSize)
	for start := 0; start < len(items); start += pageSize {
		end := min(start+pageSize, len(items))
		pages = append(pages, Page[T]{
			Number: len(pages) + 1,
			Items:  items[start:end:end],
		})
	}
	return pages, nil
}
