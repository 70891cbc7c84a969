package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/testutil"
)

func newTestStore(opts ...Option) (*MemoryStore, *testutil.KeywordEmbedder) {
	emb := testutil.NewKeywordEmbedder("alpha", "beta", "gamma", "topic")
	return New(emb, opts...), emb
}

func meta(name string) domain.Metadata {
	return domain.Metadata{domain.MetaFilename: name}
}

func TestInsert_UniqueIDsAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	const n = 25
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id, err := s.Insert(ctx, fmt.Sprintf(`{"topic":"alpha","n":%d}`, i), meta("a.json"))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		seen[id] = struct{}{}
	}

	assert.Len(t, seen, n)
	assert.Equal(t, n, s.Count())
	assert.Equal(t, 4, s.Dimension())
}

func TestInsert_RetriesOnIDCollision(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	var i int
	s, _ := newTestStore(WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	first, err := s.Insert(context.Background(), "alpha", meta("a.json"))
	require.NoError(t, err)
	second, err := s.Insert(context.Background(), "beta", meta("b.json"))
	require.NoError(t, err)

	assert.Equal(t, "dup", first)
	assert.Equal(t, "fresh", second)
}

func TestQuery_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	docs := []string{`{"topic":"alpha"}`, `{"topic":"beta"}`, `{"topic":"gamma"}`}
	ids := make([]string, len(docs))
	for i, d := range docs {
		id, err := s.Insert(ctx, d, meta(fmt.Sprintf("%d.json", i)))
		require.NoError(t, err)
		ids[i] = id
	}

	for i, d := range docs {
		matches, err := s.Query(ctx, d, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids[i], matches[0].Document.ID)
		assert.Equal(t, d, matches[0].Document.Text)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	}
}

func TestQuery_ExampleScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	_, err := s.Insert(ctx, `{"topic":"alpha"}`, meta("a.json"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, `{"topic":"beta"}`, meta("b.json"))
	require.NoError(t, err)

	matches, err := s.Query(ctx, "alpha", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `{"topic":"alpha"}`, matches[0].Document.Text)
	assert.Equal(t, "a.json", matches[0].Document.Metadata.Filename())
}

func TestQuery_TopKOrderingAndTies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	first, err := s.Insert(ctx, "alpha beta", meta("first.json"))
	require.NoError(t, err)
	second, err := s.Insert(ctx, "alpha beta", meta("second.json"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, "gamma", meta("third.json"))
	require.NoError(t, err)

	matches, err := s.Query(ctx, "alpha beta", 5)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, first, matches[0].Document.ID, "earlier record wins a tie")
	assert.Equal(t, second, matches[1].Document.ID)
	assert.Equal(t, "third.json", matches[2].Document.Metadata.Filename())
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	assert.Greater(t, matches[1].Score, matches[2].Score)
}

func TestQuery_NonPositiveKMeansOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	for _, d := range []string{"alpha", "beta"} {
		_, err := s.Insert(ctx, d, meta(d))
		require.NoError(t, err)
	}

	matches, err := s.Query(ctx, "alpha", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestQuery_EmptyStore(t *testing.T) {
	s, emb := newTestStore()

	matches, err := s.Query(context.Background(), "alpha", 1)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
	assert.Equal(t, 0, emb.Calls(), "empty store must not embed the query")
}

func TestInsert_EmbeddingFailure(t *testing.T) {
	cause := errors.New("service unavailable")
	s := New(testutil.FailingEmbedder{Err: cause})

	_, err := s.Insert(context.Background(), "alpha", meta("a.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, s.Count())
}

func TestQuery_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	s, emb := newTestStore()
	_, err := s.Insert(ctx, "alpha", meta("a.json"))
	require.NoError(t, err)

	emb.FailOn = "boom"
	_, err = s.Query(ctx, "boom", 1)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestInsertVector_DimensionMismatch(t *testing.T) {
	s, _ := newTestStore()

	_, err := s.InsertVector("a", meta("a"), []float32{1, 0, 0, 0})
	require.NoError(t, err)

	_, err = s.InsertVector("b", meta("b"), []float32{1, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	var dm *domain.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.Equal(t, 1, s.Count())
}

func TestInsertVector_EmptyVector(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.InsertVector("a", meta("a"), nil)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestMetadataIsImmutable(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	m := meta("a.json")
	id, err := s.Insert(ctx, "alpha", m)
	require.NoError(t, err)

	m[domain.MetaFilename] = "changed.json"
	doc, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a.json", doc.Metadata.Filename())

	doc.Metadata[domain.MetaFilename] = "also-changed.json"
	again, _ := s.Get(id)
	assert.Equal(t, "a.json", again.Metadata.Filename())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestEmbeddingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	a, err := s.Insert(ctx, `{"topic":"gamma"}`, meta("a"))
	require.NoError(t, err)
	b, err := s.Insert(ctx, `{"topic":"gamma"}`, meta("b"))
	require.NoError(t, err)

	da, _ := s.Get(a)
	db, _ := s.Get(b)
	assert.Equal(t, da.Vector, db.Vector)
}

func TestInverseL2Metric(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(WithMetric(InverseL2))
	assert.Equal(t, InverseL2, s.Metric())

	_, err := s.Insert(ctx, "alpha alpha", meta("far"))
	require.NoError(t, err)
	near, err := s.Insert(ctx, "alpha", meta("near"))
	require.NoError(t, err)

	matches, err := s.Query(ctx, "alpha", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, near, matches[0].Document.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.InDelta(t, 0.5, matches[1].Score, 1e-9)
}

func TestConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Insert(ctx, fmt.Sprintf("alpha %d", i), meta("x"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, Cosine, m)

	m, err = ParseMetric("L2")
	require.NoError(t, err)
	assert.Equal(t, InverseL2, m)
	assert.Equal(t, "l2", m.String())

	_, err = ParseMetric("manhattan")
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-12)
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-12)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 0}))
}
