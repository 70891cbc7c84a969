package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/logging"
	"github.com/bigdatawirtz/semanticsearch/internal/port"
)

// ProgressFunc is called once per finished input. It may be called from
// several goroutines, but never concurrently.
type ProgressFunc func(done, total int, source string)

// IngestUseCase validates raw documents and adds them to the store.
type IngestUseCase struct {
	store    port.DocumentStore
	embedder port.Embedder
	reader   port.SourceReader
	workers  int
	logger   *logging.Logger
	progress ProgressFunc
}

// IngestOption configures an IngestUseCase.
type IngestOption func(*IngestUseCase)

// WithWorkers bounds how many inputs of a batch are embedded at once.
func WithWorkers(n int) IngestOption {
	return func(u *IngestUseCase) {
		if n > 0 {
			u.workers = n
		}
	}
}

// WithProgress registers a per-item progress callback for batches.
func WithProgress(fn ProgressFunc) IngestOption {
	return func(u *IngestUseCase) { u.progress = fn }
}

// WithIngestLogger sets the logger.
func WithIngestLogger(l *logging.Logger) IngestOption {
	return func(u *IngestUseCase) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewIngestUseCase creates a new ingest use case. reader may be nil when
// only in-memory inputs are ingested.
func NewIngestUseCase(
	store port.DocumentStore,
	embedder port.Embedder,
	reader port.SourceReader,
	opts ...IngestOption,
) *IngestUseCase {
	u := &IngestUseCase{
		store:    store,
		embedder: embedder,
		reader:   reader,
		workers:  4,
		logger:   logging.Noop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Ingest validates raw and stores it under the base name of source.
// The raw text is stored, not its parsed form.
func (u *IngestUseCase) Ingest(ctx context.Context, raw, source string) (string, error) {
	if err := validate(raw, source); err != nil {
		return "", err
	}
	return u.store.Insert(ctx, raw, metadataFor(source))
}

// IngestBatch ingests every input independently. A failing input is
// recorded in the report and never affects the others. Embedding runs in
// parallel; records are committed in input order.
func (u *IngestUseCase) IngestBatch(ctx context.Context, inputs []domain.Input) *domain.BatchReport {
	report := &domain.BatchReport{}
	if len(inputs) == 0 {
		return report
	}

	vectors := make([][]float32, len(inputs))
	errs := make([]error, len(inputs))

	var (
		mu   sync.Mutex
		done int
	)
	step := func(source string) {
		if u.progress == nil {
			return
		}
		mu.Lock()
		done++
		u.progress(done, len(inputs), source)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, in := range inputs {
		g.Go(func() error {
			defer step(in.Source)
			vectors[i], errs[i] = u.prepare(gctx, in)
			return nil
		})
	}
	_ = g.Wait()

	for i, in := range inputs {
		if errs[i] != nil {
			report.Failures = append(report.Failures, domain.ItemFailure{Source: in.Source, Err: errs[i]})
			continue
		}
		id, err := u.commit(in, vectors[i])
		if err != nil {
			report.Failures = append(report.Failures, domain.ItemFailure{Source: in.Source, Err: classify(in.Source, err)})
			continue
		}
		report.Added = append(report.Added, id)
	}

	u.logger.LogBatch(ctx, report.Total(), len(report.Failures))
	return report
}

// IngestFiles reads each path and ingests the contents as one batch. A file
// that cannot be read fails on its own.
func (u *IngestUseCase) IngestFiles(ctx context.Context, paths []string) *domain.BatchReport {
	if u.reader == nil {
		report := &domain.BatchReport{}
		for _, p := range paths {
			report.Failures = append(report.Failures, domain.ItemFailure{
				Source: p,
				Err:    &domain.IngestError{Source: p, Cause: errors.New("no source reader configured")},
			})
		}
		return report
	}

	inputs := make([]domain.Input, 0, len(paths))
	var readFailures []domain.ItemFailure
	for _, p := range paths {
		in, err := u.reader.Read(p)
		if err != nil {
			readFailures = append(readFailures, domain.ItemFailure{
				Source: p,
				Err:    &domain.IngestError{Source: filepath.Base(p), Cause: err},
			})
			continue
		}
		inputs = append(inputs, in)
	}

	report := u.IngestBatch(ctx, inputs)
	report.Failures = append(readFailures, report.Failures...)
	return report
}

func (u *IngestUseCase) prepare(ctx context.Context, in domain.Input) (vec []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec = nil
			err = &domain.IngestError{Source: filepath.Base(in.Source), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := validate(in.Content, in.Source); err != nil {
		return nil, err
	}
	vec, err = u.embedder.Embed(ctx, in.Content)
	if err != nil {
		return nil, &domain.EmbeddingError{Cause: err}
	}
	return vec, nil
}

func (u *IngestUseCase) commit(in domain.Input, vec []float32) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return u.store.InsertVector(in.Content, metadataFor(in.Source), vec)
}

func validate(raw, source string) error {
	name := filepath.Base(source)
	if strings.TrimSpace(raw) == "" {
		return &domain.EmptyContentError{Source: name}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return &domain.MalformedContentError{Source: name, Cause: err}
	}
	return nil
}

// classify keeps known failures as they are and folds anything else into
// an IngestError.
func classify(source string, err error) error {
	if errors.Is(err, domain.ErrEmptyContent) ||
		errors.Is(err, domain.ErrMalformedContent) ||
		errors.Is(err, domain.ErrEmbedding) {
		return err
	}
	return &domain.IngestError{Source: filepath.Base(source), Cause: err}
}

func metadataFor(source string) domain.Metadata {
	return domain.Metadata{domain.MetaFilename: filepath.Base(source)}
}
