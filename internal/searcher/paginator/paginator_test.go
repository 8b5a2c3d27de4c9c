package paginator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	tests := []struct {
		size  int
		pages [][]int
	}{
		{1, [][]int{{1}, {2}, {3}, {4}, {5}, {6}, {7}}},
		{3, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}},
		{7, [][]int{{1, 2, 3, 4, 5, 6, 7}}},
		{10, [][]int{{1, 2, 3, 4, 5, 6, 7}}},
	}
	for _, tt := range tests {
		pages, err := Paginate(items, tt.size)
		require.NoError(t, err)
		require.Len(t, pages, len(tt.pages), "size %d", tt.size)
		for i, p := range pages {
			assert.Equal(t, i+1, p.Number)
			assert.Equal(t, tt.pages[i], p.Items)
		}
	}
}

func TestPaginateEmptyAndInvalid(t *testing.T) {
	pages, err := Paginate([]string{}, 2)
	require.NoError(t, err)
	assert.Empty(t, pages)

	_, err = Paginate([]int{1}, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestPageString(t *testing.T) {
	docs := []index.Document{
		{ID: 2, Relevance: 0.5, Rating: 3},
		{ID: 4, Relevance: 0.25, Rating: 1},
		{ID: 5, Relevance: 0, Rating: 0},
	}
	pages, err := Paginate(docs, 2)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t,
		"{ document_id = 2, relevance = 0.5, rating = 3 }{ document_id = 4, relevance = 0.25, rating = 1 }",
		pages[0].String())
	assert.Equal(t, 1, pages[1].Len())
}
