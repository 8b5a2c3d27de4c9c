package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

type queryResult struct {
	Query     string           `json:"query,omitempty"`
	Documents []index.Document `json:"documents"`
}

func printDocuments(w io.Writer, asJSON bool, query string, docs []index.Document) error {
	if asJSON {
		return writeJSON(w, queryResult{Query: query, Documents: docs})
	}
	if query != "" {
		fmt.Fprintf(w, "Results for %q:\n", query)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintln(w, d)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
