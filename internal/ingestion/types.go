// Package ingestion defines the document records read from corpus files and
// fed to the search engine.
package ingestion

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

// DocumentRecord is one entry of a corpus file. Status defaults to actual.
type DocumentRecord struct {
	ID      int                  `yaml:"id"`
	Text    string               `yaml:"text"`
	Status  index.DocumentStatus `yaml:"status"`
	Ratings []int                `yaml:"ratings"`
}

// Corpus is the top-level layout of a corpus file.
type Corpus struct {
	StopWords []string         `yaml:"stopWords"`
	Documents []DocumentRecord `yaml:"documents"`
}

// DecodeCorpus reads a YAML corpus. The stream may be either a Corpus
// mapping or a bare list of documents.
func DecodeCorpus(r io.Reader) (*Corpus, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return &Corpus{}, nil
		}
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}
	corpus := &Corpus{}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	var err error
	if root.Kind == yaml.SequenceNode {
		err = root.Decode(&corpus.Documents)
	} else {
		err = root.Decode(corpus)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding corpus: %w", err)
	}
	return corpus, nil
}
