package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `
stopWords: [and, with]
documents:
  - id: 1
    text: funny pet and nasty rat
    ratings: [7, 2, 7]
  - id: 2
    text: funny pet with curly hair
    ratings: [1, 2]
  - id: 3
    text: funny pet with curly hair
    ratings: [1, 2]
  - id: 4
    text: nasty rat with curly hair
    status: banned
    ratings: [1]
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCorpus), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	docs := writeCorpus(t)
	out, err := run(t, "search", "--docs", docs, "nasty rat", "parrot")
	require.NoError(t, err)
	assert.Contains(t, out, `Results for "nasty rat":`)
	assert.Contains(t, out, "{ document_id = 1, ")
	assert.NotContains(t, out, "document_id = 4")
	assert.Contains(t, out, "No results found.")
	assert.Contains(t, out, "no-result requests: 1")

	out, err = run(t, "search", "--docs", docs, "--status", "banned", "--policy", "sequential", "rat")
	require.NoError(t, err)
	assert.Contains(t, out, "{ document_id = 4, ")

	_, err = run(t, "search", "--docs", docs, "rat --x")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	docs := writeCorpus(t)
	out, err := run(t, "batch", "--docs", docs, "--json", "curly", "rat")
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewBufferString(out))
	var first, second queryResult
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "curly", first.Query)
	assert.Len(t, first.Documents, 2)
	assert.Equal(t, "rat", second.Query)
	assert.Len(t, second.Documents, 1)

	out, err = run(t, "batch", "--docs", docs, "--joined", "--page-size", "2", "curly", "rat")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1: ")
	assert.Contains(t, out, "Page 2: ")

	out, err = run(t, "batch", "--docs", docs, "--merge", "1", "curly", "funny")
	require.NoError(t, err)
	assert.Contains(t, out, "document_id")

	_, err = run(t, "batch", "--docs", docs, "curly", "-")
	assert.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	docs := writeCorpus(t)
	out, err := run(t, "match", "--docs", docs, "--id", "2", "curly", "rat", "hair")
	require.NoError(t, err)
	assert.Equal(t, "{ document_id = 2, status = actual, words = curly hair }\n", out)

	_, err = run(t, "match", "--docs", docs, "--id", "99", "curly")
	assert.Error(t, err)
}

func TestDedupCommand(t *testing.T) {
	docs := writeCorpus(t)
	out, err := run(t, "dedup", "--docs", docs)
	require.NoError(t, err)
	assert.Contains(t, out, "Found duplicate document id 3")
	assert.Contains(t, out, "documents remaining: 3")
}

func TestMissingDocsFlag(t *testing.T) {
	_, err := run(t, "dedup")
	assert.Error(t, err)
}
