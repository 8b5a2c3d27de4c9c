package parser

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Query is a parsed query. Plus and Minus are sorted, de-duplicated and free
// of stop-words.
type Query struct {
	Plus     []string
	Minus    []string
	RawQuery string
}

// Parser turns raw query text into a Query against a fixed stop-word set.
type Parser struct {
	stopWords map[string]struct{}
	sorted    []string
}

// New builds a Parser. Empty stop-words are dropped and duplicates merged;
// a stop-word containing a control character is an invalid-input error.
func New(stopWords []string) (*Parser, error) {
	unique := tokenizer.UniqueNonEmpty(stopWords)
	set := make(map[string]struct{}, len(unique))
	for _, w := range unique {
		if !tokenizer.IsValidWord(w) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "stop word %q contains a control character", w)
		}
		set[w] = struct{}{}
	}
	return &Parser{stopWords: set, sorted: unique}, nil
}

// NewFromText builds a Parser from space-separated stop-words.
func NewFromText(text string) (*Parser, error) {
	return New(tokenizer.SplitIntoWords(text))
}

func (p *Parser) IsStopWord(word string) bool {
	_, ok := p.stopWords[word]
	return ok
}

// StopWords returns the stop-word set in sorted order.
func (p *Parser) StopWords() []string {
	return slices.Clone(p.sorted)
}

// Parse splits raw into plus and minus words. A leading '-' marks a minus
// word. Empty words, a bare '-', a word starting with "--" and words with
// control characters are rejected as invalid input.
func (p *Parser) Parse(raw string) (*Query, error) {
	q := &Query{
		Plus:     make([]string, 0),
		Minus:    make([]string, 0),
		RawQuery: raw,
	}
	for _, word := range tokenizer.SplitIntoWords(raw) {
		term, minus, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		if p.IsStopWord(term) {
			continue
		}
		if minus {
			q.Minus = append(q.Minus, term)
		} else {
			q.Plus = append(q.Plus, term)
		}
	}
	slices.Sort(q.Plus)
	q.Plus = slices.Compact(q.Plus)
	slices.Sort(q.Minus)
	q.Minus = slices.Compact(q.Minus)
	return q, nil
}

func parseWord(word string) (term string, minus bool, err error) {
	if word == "" {
		return "", false, apperrors.New(apperrors.ErrInvalidInput, "query word is empty")
	}
	if word[0] == '-' {
		minus = true
		word = word[1:]
	}
	if word == "" || word[0] == '-' || !tokenizer.IsValidWord(word) {
		return "", false, apperrors.Newf(apperrors.ErrInvalidInput, "query word %q is invalid", word)
	}
	return word, minus, nil
}
