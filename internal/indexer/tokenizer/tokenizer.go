// Package tokenizer splits document and query text into words. Words are
// separated by single space characters only and are kept verbatim: no case
// folding, stemming or punctuation stripping is applied.
package tokenizer

import (
	"sort"
	"strings"
)

// SplitIntoWords breaks text into its non-empty space-delimited words,
// preserving left-to-right order. Empty or all-space input yields no words.
func SplitIntoWords(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	for len(text) > 0 {
		space := strings.IndexByte(text, ' ')
		if space < 0 {
			words = append(words, text)
			break
		}
		if space > 0 {
			words = append(words, text[:space])
		}
		text = text[space+1:]
	}
	return words
}

// IsValidWord reports whether word is free of control characters (bytes
// below the space character).
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// UniqueNonEmpty returns the distinct non-empty entries of words in sorted
// order.
func UniqueNonEmpty(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}
