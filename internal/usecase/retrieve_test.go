package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
)

func TestRetrieveBest_ExampleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.ingest.Ingest(ctx, `{"topic":"alpha"}`, "a.json")
	require.NoError(t, err)
	_, err = f.ingest.Ingest(ctx, `{"topic":"beta"}`, "b.json")
	require.NoError(t, err)

	best, err := f.retrieve.RetrieveBest(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"alpha"}`, best.Text)
	assert.Equal(t, "a.json", best.Filename)
	assert.Equal(t, "a.json", best.Metadata[domain.MetaFilename])
}

func TestRetrieveBest_EmptyQuery(t *testing.T) {
	f := newFixture()
	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := f.retrieve.RetrieveBest(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	}
	assert.Equal(t, 0, f.embedder.Calls())
}

func TestRetrieveBest_EmptyStore(t *testing.T) {
	f := newFixture()
	_, err := f.retrieve.RetrieveBest(context.Background(), "alpha")
	assert.ErrorIs(t, err, domain.ErrNoResults)
	assert.Equal(t, "no documents found", err.Error())
}

func TestRetrieve_TopK(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, d := range []struct{ raw, name string }{
		{`{"topic":"alpha"}`, "a.json"},
		{`{"topic":"beta"}`, "b.json"},
		{`{"topic":"alpha beta"}`, "ab.json"},
	} {
		_, err := f.ingest.Ingest(ctx, d.raw, d.name)
		require.NoError(t, err)
	}

	results, err := f.retrieve.Retrieve(ctx, "alpha", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.json", results[0].Filename)
	assert.Equal(t, "ab.json", results[1].Filename)
	assert.Greater(t, results[0].Score, results[1].Score)

	results, err = f.retrieve.Retrieve(ctx, "alpha", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = f.retrieve.Retrieve(ctx, "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestFormatResult(t *testing.T) {
	got := FormatResult(&domain.Result{Filename: "a.json", Text: `{"topic":"alpha"}`})
	assert.Equal(t, "📄 **Best matching document** (from: a.json)\n\n```\n{\"topic\":\"alpha\"}\n```", got)
}
