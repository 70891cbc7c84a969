package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigdatawirtz/semanticsearch/internal/adapter/memstore"
	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/testutil"
)

type fixture struct {
	store    *memstore.MemoryStore
	embedder *testutil.KeywordEmbedder
	ingest   *IngestUseCase
	retrieve *RetrieveUseCase
}

func newFixture(opts ...IngestOption) *fixture {
	emb := testutil.NewKeywordEmbedder("alpha", "beta", "gamma", "topic")
	st := memstore.New(emb)
	return &fixture{
		store:    st,
		embedder: emb,
		ingest:   NewIngestUseCase(st, emb, nil, opts...),
		retrieve: NewRetrieveUseCase(st),
	}
}

func TestIngest_Valid(t *testing.T) {
	f := newFixture()
	id, err := f.ingest.Ingest(context.Background(), `{"topic":"alpha"}`, "/tmp/docs/a.json")
	require.NoError(t, err)

	doc, ok := f.store.Get(id)
	require.True(t, ok)
	assert.Equal(t, `{"topic":"alpha"}`, doc.Text)
	assert.Equal(t, "a.json", doc.Metadata.Filename())
}

func TestIngest_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		wantMsg string
	}{
		{"empty", "", domain.ErrEmptyContent, "a.json is empty"},
		{"whitespace", "  \n\t ", domain.ErrEmptyContent, "a.json is empty"},
		{"invalid json", `{"topic":`, domain.ErrMalformedContent, "a.json: Invalid JSON format - "},
		{"trailing garbage", `{"topic":"alpha"} x`, domain.ErrMalformedContent, "Invalid JSON format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.ingest.Ingest(context.Background(), tt.raw, "a.json")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, 0, f.store.Count())
			assert.Equal(t, 0, f.embedder.Calls())
		})
	}
}

func TestIngest_AnyJSONValueAccepted(t *testing.T) {
	f := newFixture()
	for _, raw := range []string{`[1,2,3]`, `"alpha"`, `42`, `null`} {
		_, err := f.ingest.Ingest(context.Background(), raw, "x.json")
		assert.NoError(t, err, raw)
	}
	assert.Equal(t, 4, f.store.Count())
}

func TestIngestBatch_PartialFailure(t *testing.T) {
	f := newFixture()
	report := f.ingest.IngestBatch(context.Background(), []domain.Input{
		{Source: "valid1.json", Content: `{"topic":"alpha"}`},
		{Source: "invalid.json", Content: `{not json`},
		{Source: "valid2.json", Content: `{"topic":"beta"}`},
	})

	require.Len(t, report.Added, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "invalid.json", report.Failures[0].Source)
	assert.ErrorIs(t, report.Failures[0].Err, domain.ErrMalformedContent)
	assert.Equal(t, 2, f.store.Count())

	first, ok := f.store.Get(report.Added[0])
	require.True(t, ok)
	assert.Equal(t, "valid1.json", first.Metadata.Filename())
	second, ok := f.store.Get(report.Added[1])
	require.True(t, ok)
	assert.Equal(t, "valid2.json", second.Metadata.Filename())

	best, err := f.retrieve.RetrieveBest(context.Background(), "beta")
	require.NoError(t, err)
	assert.Equal(t, "valid2.json", best.Filename)

	summary := report.Summary()
	assert.Contains(t, summary, "Uploaded 2 file(s): [")
	assert.Contains(t, summary, "Errors:\ninvalid.json: Invalid JSON format - ")
}

func TestIngestBatch_PreservesInputOrder(t *testing.T) {
	f := newFixture(WithWorkers(8))

	inputs := make([]domain.Input, 20)
	for i := range inputs {
		inputs[i] = domain.Input{Source: string(rune('a'+i)) + ".json", Content: `{"topic":"gamma"}`}
	}
	report := f.ingest.IngestBatch(context.Background(), inputs)
	require.Len(t, report.Added, 20)

	for i, id := range report.Added {
		doc, ok := f.store.Get(id)
		require.True(t, ok)
		assert.Equal(t, inputs[i].Source, doc.Metadata.Filename())
	}

	matches, err := f.store.Query(context.Background(), "gamma", 1)
	require.NoError(t, err)
	assert.Equal(t, report.Added[0], matches[0].Document.ID, "tie goes to the first input")
}

func TestIngestBatch_EmbeddingFailureIsolated(t *testing.T) {
	f := newFixture()
	f.embedder.FailOn = "beta"

	report := f.ingest.IngestBatch(context.Background(), []domain.Input{
		{Source: "a.json", Content: `{"topic":"alpha"}`},
		{Source: "b.json", Content: `{"topic":"beta"}`},
	})

	assert.Len(t, report.Added, 1)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, domain.ErrEmbedding)
	assert.ErrorIs(t, report.Failures[0].Err, testutil.ErrInjected)
	assert.Contains(t, report.Summary(), "Errors:\nb.json: embedding failed: ")
}

func TestIngestBatch_DimensionMismatchNamesFile(t *testing.T) {
	f := newFixture()
	_, err := f.store.InsertVector(`{}`, domain.Metadata{domain.MetaFilename: "seed.json"}, []float32{1, 0})
	require.NoError(t, err)

	report := f.ingest.IngestBatch(context.Background(), []domain.Input{
		{Source: "docs/wide.json", Content: `{"topic":"alpha"}`},
	})

	require.Len(t, report.Failures, 1)
	var dm *domain.ErrDimensionMismatch
	assert.ErrorAs(t, report.Failures[0].Err, &dm)
	assert.Contains(t, report.Summary(), "Errors:\nwide.json: embedding failed: ")
}

type panickyEmbedder struct{ *testutil.KeywordEmbedder }

func (p panickyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == `"boom"` {
		panic("kaboom")
	}
	return p.KeywordEmbedder.Embed(ctx, text)
}

func TestIngestBatch_RecoversPanics(t *testing.T) {
	emb := panickyEmbedder{testutil.NewKeywordEmbedder("alpha")}
	st := memstore.New(emb)
	uc := NewIngestUseCase(st, emb, nil)

	report := uc.IngestBatch(context.Background(), []domain.Input{
		{Source: "ok.json", Content: `"alpha"`},
		{Source: "dir/bad.json", Content: `"boom"`},
	})

	assert.Len(t, report.Added, 1)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, domain.ErrIngestFailed)
	assert.Equal(t, "bad.json: failed (panic: kaboom)", report.Failures[0].Err.Error())
}

func TestIngestBatch_Progress(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []int
		total int
	)
	f := newFixture(WithProgress(func(done, n int, source string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, done)
		total = n
	}))

	f.ingest.IngestBatch(context.Background(), []domain.Input{
		{Source: "a.json", Content: `{}`},
		{Source: "b.json", Content: ``},
		{Source: "c.json", Content: `[]`},
	})

	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Equal(t, 3, total)
}

func TestIngestBatch_Empty(t *testing.T) {
	f := newFixture()
	report := f.ingest.IngestBatch(context.Background(), nil)
	assert.Equal(t, 0, report.Total())
	assert.Equal(t, "No files uploaded.", report.Summary())
}

type mapReader map[string]string

func (m mapReader) Expand(patterns []string) ([]string, error) { return patterns, nil }

func (m mapReader) Read(path string) (domain.Input, error) {
	c, ok := m[path]
	if !ok {
		return domain.Input{}, errors.New("no such file")
	}
	return domain.Input{Source: path, Content: c}, nil
}

func TestIngestFiles(t *testing.T) {
	emb := testutil.NewKeywordEmbedder("alpha", "beta")
	st := memstore.New(emb)
	uc := NewIngestUseCase(st, emb, mapReader{
		"docs/a.json": `{"x":"alpha"}`,
		"docs/b.json": `{"x":"beta"}`,
	})

	report := uc.IngestFiles(context.Background(), []string{"docs/a.json", "docs/missing.json", "docs/b.json"})
	assert.Len(t, report.Added, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "docs/missing.json", report.Failures[0].Source)
	assert.ErrorIs(t, report.Failures[0].Err, domain.ErrIngestFailed)
	assert.Equal(t, 2, st.Count())

	empty := uc.IngestFiles(context.Background(), nil)
	assert.Equal(t, "No files uploaded.", empty.Summary())
}
