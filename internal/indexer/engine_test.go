package indexer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

func newCatEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(nil, opts...)
	require.NoError(t, err)
	docs := map[int]string{
		10: "cat cat dog",
		11: "cat cat dog cat",
		12: "cat cat dog cat cat",
		13: "cat cat dog cat god cat cat cat",
		21: "cat cat cat",
		96: "dog",
	}
	for id, text := range docs {
		require.NoError(t, e.AddDocument(id, text, index.StatusActual, []int{1, 2, 3}))
	}
	return e
}

func ids(docs []index.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestFindTopDocumentsRanksByTFIDF(t *testing.T) {
	for _, policy := range []ExecutionPolicy{Sequential, Parallel} {
		t.Run(policy.String(), func(t *testing.T) {
			e := newCatEngine(t)
			docs, err := e.FindTopDocumentsWith(context.Background(), policy, "cat", nil)
			require.NoError(t, err)
			require.Len(t, docs, 5)

			idf := math.Log(6.0 / 5.0)
			assert.Equal(t, 21, docs[0].ID)
			assert.InDelta(t, 0.182, docs[0].Relevance, 1e-3)
			assert.InDelta(t, idf, docs[0].Relevance, 1e-9)
			assert.Equal(t, 2, docs[0].Rating)
			// 11 and 13 share tf 0.75 and rating, so id breaks the tie
			assert.Equal(t, []int{21, 12, 11, 13, 10}, ids(docs))
		})
	}
}

func TestFindTopDocumentsStopWords(t *testing.T) {
	e, err := NewEngineFromText("in the")
	require.NoError(t, err)
	require.NoError(t, e.AddDocument(42, "cat in the city", index.StatusActual, []int{1, 2, 3}))

	docs, err := e.FindTopDocuments("in")
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = e.FindTopDocuments("cat")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 42, docs[0].ID)

	assert.Equal(t, map[string]float64{"cat": 0.5, "city": 0.5}, e.GetWordFrequencies(42))
}

func TestFindTopDocumentsMinusWords(t *testing.T) {
	e := newCatEngine(t)
	for _, policy := range []ExecutionPolicy{Sequential, Parallel} {
		docs, err := e.FindTopDocumentsWith(context.Background(), policy, "cat -god", nil)
		require.NoError(t, err)
		assert.NotContains(t, ids(docs), 13, policy.String())

		docs, err = e.FindTopDocumentsWith(context.Background(), policy, "dog -cat", nil)
		require.NoError(t, err)
		assert.Equal(t, []int{96}, ids(docs), policy.String())
	}
}

func TestFindTopDocumentsPredicates(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)
	require.NoError(t, e.AddDocument(1, "white cat", index.StatusActual, []int{8, -3}))
	require.NoError(t, e.AddDocument(2, "fluffy cat", index.StatusBanned, []int{7, 2, 7}))
	require.NoError(t, e.AddDocument(3, "groomed dog", index.StatusActual, []int{5, -12, 2, 1}))
	require.NoError(t, e.AddDocument(4, "groomed cat", index.StatusIrrelevant, []int{9}))

	docs, err := e.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(docs))

	docs, err = e.FindTopDocumentsByStatus("cat", index.StatusBanned)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(docs))
	assert.Equal(t, 5, docs[0].Rating)

	even := func(id int, _ index.DocumentStatus, _ int) bool { return id%2 == 0 }
	docs, err = e.FindTopDocumentsWith(context.Background(), Parallel, "cat dog", even)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 4}, ids(docs))
}

func TestFindTopDocumentsInvalidQuery(t *testing.T) {
	e := newCatEngine(t)
	for _, raw := range []string{"cat -", "--cat", "ca\x11t"} {
		_, err := e.FindTopDocuments(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), raw)
	}
}

func TestAddDocumentRejects(t *testing.T) {
	e := newCatEngine(t)

	err := e.AddDocument(-1, "cat", index.StatusActual, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = e.AddDocument(21, "cat", index.StatusActual, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.True(t, errors.Is(err, apperrors.ErrDocumentExists))

	err = e.AddDocument(50, "good b\x02ad", index.StatusActual, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	// failed adds leave no trace
	assert.Equal(t, 6, e.GetDocumentCount())
	_, ok := e.Document(50)
	assert.False(t, ok)
	assert.Empty(t, e.GetWordFrequencies(50))
	require.NoError(t, e.Verify())
}

func TestAddDocumentRating(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)
	require.NoError(t, e.AddDocument(1, "a", index.StatusActual, []int{1, 2}))
	require.NoError(t, e.AddDocument(2, "b", index.StatusActual, []int{-1, -2}))
	require.NoError(t, e.AddDocument(3, "c", index.StatusActual, nil))

	for id, want := range map[int]int{1: 1, 2: -1, 3: 0} {
		data, ok := e.Document(id)
		require.True(t, ok)
		assert.Equal(t, want, data.Rating, "doc %d", id)
	}
}

func TestAddDocumentOnlyStopWords(t *testing.T) {
	e, err := NewEngineFromText("in the")
	require.NoError(t, err)
	require.NoError(t, e.AddDocument(7, "in the", index.StatusActual, nil))

	assert.Equal(t, 1, e.GetDocumentCount())
	assert.Empty(t, e.GetWordFrequencies(7))
	require.NoError(t, e.Verify())
}

func TestMatchDocument(t *testing.T) {
	e, err := NewEngineFromText("and in on")
	require.NoError(t, err)
	require.NoError(t, e.AddDocument(1, "white cat and fashion collar", index.StatusBanned, []int{1}))

	for _, policy := range []ExecutionPolicy{Sequential, Parallel} {
		t.Run(policy.String(), func(t *testing.T) {
			words, status, err := e.MatchDocumentWith(context.Background(), policy, "fluffy collar cat in", 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"cat", "collar"}, words)
			assert.Equal(t, index.StatusBanned, status)

			words, status, err = e.MatchDocumentWith(context.Background(), policy, "cat -white", 1)
			require.NoError(t, err)
			assert.Empty(t, words)
			assert.NotNil(t, words)
			assert.Equal(t, index.StatusBanned, status)

			_, _, err = e.MatchDocumentWith(context.Background(), policy, "cat", 99)
			assert.True(t, errors.Is(err, apperrors.ErrDocumentNotFound))

			_, _, err = e.MatchDocumentWith(context.Background(), policy, "cat --x", 1)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestRemoveDocument(t *testing.T) {
	for _, policy := range []ExecutionPolicy{Sequential, Parallel} {
		t.Run(policy.String(), func(t *testing.T) {
			e := newCatEngine(t)
			require.NoError(t, e.RemoveDocumentWith(context.Background(), policy, 13))
			require.NoError(t, e.RemoveDocumentWith(context.Background(), policy, 1000))

			assert.Equal(t, 5, e.GetDocumentCount())
			assert.Equal(t, []int{10, 11, 12, 21, 96}, e.DocumentIDs())
			assert.Empty(t, e.GetWordFrequencies(13))
			require.NoError(t, e.Verify())

			// "god" only occurred in 13
			docs, err := e.FindTopDocuments("god")
			require.NoError(t, err)
			assert.Empty(t, docs)

			require.NoError(t, e.AddDocument(13, "god", index.StatusActual, []int{4}))
			docs, err = e.FindTopDocuments("god")
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, 13, docs[0].ID)
			assert.Equal(t, 4, docs[0].Rating)
			require.NoError(t, e.Verify())
		})
	}
}

func TestAllIteratesAscending(t *testing.T) {
	e := newCatEngine(t)
	var got []int
	for id := range e.All() {
		got = append(got, id)
	}
	assert.Equal(t, []int{10, 11, 12, 13, 21, 96}, got)

	got = got[:0]
	for id := range e.All() {
		if id > 11 {
			break
		}
		got = append(got, id)
	}
	assert.Equal(t, []int{10, 11}, got)
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(nil, WithShardCount(0))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = NewEngine(nil, WithMaxWorkers(-1))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = NewEngineFromText("ok b\x1fad")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	e, err := NewEngineFromText("the  in the")
	require.NoError(t, err)
	assert.Equal(t, []string{"in", "the"}, e.StopWords())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Parallel ")
	require.NoError(t, err)
	assert.Equal(t, Parallel, p)

	p, err = ParsePolicy("seq")
	require.NoError(t, err)
	assert.Equal(t, Sequential, p)

	_, err = ParsePolicy("turbo")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestEngineMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := newCatEngine(t, WithMetrics(m))

	_ = e.AddDocument(21, "dup", index.StatusActual, nil)
	_ = e.AddDocument(-5, "neg", index.StatusActual, nil)
	assert.Equal(t, 6.0, testutil.ToFloat64(m.DocsIndexedTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsIndexedTotal.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsIndexedTotal.WithLabelValues("invalid_input")))

	_, _ = e.FindTopDocuments("cat")
	_, _ = e.FindTopDocuments("bird")
	_, _ = e.FindTopDocuments("--")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.ResultZeroResult)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.ResultError)))

	e.RemoveDocument(96)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocsRemovedTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.DocumentCount))
}

func TestFindTopDocumentsCancelled(t *testing.T) {
	e := newCatEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.FindTopDocumentsWith(ctx, Parallel, "cat", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// randomCorpus builds an engine over a synthetic corpus plus the query set
// used to compare execution policies.
func randomCorpus(t testing.TB, docs int, opts ...Option) (*Engine, []string) {
	rng := rand.New(rand.NewSource(42))
	dict := make([]string, 200)
	for i := range dict {
		dict[i] = fmt.Sprintf("w%03d", i)
	}
	e, err := NewEngine([]string{"w000", "w001"}, opts...)
	require.NoError(t, err)
	for id := 0; id < docs; id++ {
		n := 5 + rng.Intn(30)
		words := make([]string, n)
		for i := range words {
			words[i] = dict[rng.Intn(len(dict))]
		}
		status := index.DocumentStatus(rng.Intn(4))
		require.NoError(t, e.AddDocument(id*3, strings.Join(words, " "), status, []int{rng.Intn(10), rng.Intn(10)}))
	}
	queries := make([]string, 50)
	for i := range queries {
		q := make([]string, 0, 8)
		for j := 0; j < 6; j++ {
			q = append(q, dict[rng.Intn(len(dict))])
		}
		q = append(q, "-"+dict[rng.Intn(len(dict))])
		queries[i] = strings.Join(q, " ")
	}
	return e, queries
}

func TestPoliciesAgree(t *testing.T) {
	e, queries := randomCorpus(t, 500, WithShardCount(4), WithMaxWorkers(4))
	ctx := context.Background()
	for _, q := range queries {
		seq, err := e.FindTopDocumentsWith(ctx, Sequential, q, nil)
		require.NoError(t, err)
		par, err := e.FindTopDocumentsWith(ctx, Parallel, q, nil)
		require.NoError(t, err)
		assert.Equal(t, seq, par, q)

		for _, status := range []index.DocumentStatus{index.StatusIrrelevant, index.StatusBanned} {
			seq, err := e.FindTopDocumentsWith(ctx, Sequential, q, ByStatus(status))
			require.NoError(t, err)
			par, err := e.FindTopDocumentsWith(ctx, Parallel, q, ByStatus(status))
			require.NoError(t, err)
			assert.Equal(t, seq, par, "%s [%s]", q, status)
		}
	}
}

func TestParallelRelevanceIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocab := strings.Fields("a b c d e f g h x y z")
	e, err := NewEngine(nil, WithShardCount(3), WithMaxWorkers(8))
	require.NoError(t, err)
	for id := 0; id < 40; id++ {
		words := make([]string, 3+rng.Intn(10))
		for i := range words {
			words[i] = vocab[rng.Intn(len(vocab))]
		}
		require.NoError(t, e.AddDocument(id, strings.Join(words, " "), index.StatusActual, []int{id % 7}))
	}

	ctx := context.Background()
	const query = "a b c d e f g h"
	seq, err := e.FindTopDocumentsWith(ctx, Sequential, query, nil)
	require.NoError(t, err)
	require.NotEmpty(t, seq)
	for run := 0; run < 300; run++ {
		par, err := e.FindTopDocumentsWith(ctx, Parallel, query, nil)
		require.NoError(t, err)
		require.Len(t, par, len(seq))
		for i := range seq {
			require.Equal(t, seq[i].ID, par[i].ID, "run %d", run)
			require.True(t, seq[i].Relevance == par[i].Relevance,
				"run %d doc %d: %v != %v", run, seq[i].ID, seq[i].Relevance, par[i].Relevance)
		}
	}
}

func TestMatchPoliciesAgree(t *testing.T) {
	e, queries := randomCorpus(t, 200, WithMaxWorkers(4))
	ctx := context.Background()
	for _, q := range queries {
		for _, id := range e.DocumentIDs() {
			seqWords, seqStatus, err := e.MatchDocumentWith(ctx, Sequential, q, id)
			require.NoError(t, err)
			parWords, parStatus, err := e.MatchDocumentWith(ctx, Parallel, q, id)
			require.NoError(t, err)
			assert.Equal(t, seqWords, parWords, "%s @%d", q, id)
			assert.Equal(t, seqStatus, parStatus)
		}
	}
}

func TestRemovePoliciesAgree(t *testing.T) {
	seqEngine, queries := randomCorpus(t, 300)
	parEngine, _ := randomCorpus(t, 300, WithMaxWorkers(4))
	ctx := context.Background()

	for id := 0; id < 300*3; id += 7 {
		require.NoError(t, seqEngine.RemoveDocumentWith(ctx, Sequential, id))
		require.NoError(t, parEngine.RemoveDocumentWith(ctx, Parallel, id))
	}
	require.NoError(t, seqEngine.Verify())
	require.NoError(t, parEngine.Verify())

	require.Equal(t, seqEngine.DocumentIDs(), parEngine.DocumentIDs())
	assert.Equal(t, seqEngine.GetDocumentCount(), parEngine.GetDocumentCount())
	for _, id := range seqEngine.DocumentIDs() {
		assert.Equal(t, seqEngine.GetWordFrequencies(id), parEngine.GetWordFrequencies(id), "doc %d", id)
	}
	for _, q := range queries {
		seq, err := seqEngine.FindTopDocumentsWith(ctx, Sequential, q, nil)
		require.NoError(t, err)
		par, err := parEngine.FindTopDocumentsWith(ctx, Parallel, q, nil)
		require.NoError(t, err)
		assert.Equal(t, seq, par, q)
	}
}

func BenchmarkFindTopDocuments(b *testing.B) {
	e, queries := randomCorpus(b, 5000)
	ctx := context.Background()
	for _, policy := range []ExecutionPolicy{Sequential, Parallel} {
		b.Run(policy.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.FindTopDocumentsWith(ctx, policy, queries[i%len(queries)], nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
