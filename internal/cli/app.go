package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/bigdatawirtz/semanticsearch/config"
	"github.com/bigdatawirtz/semanticsearch/internal/adapter/cache"
	"github.com/bigdatawirtz/semanticsearch/internal/adapter/completion"
	"github.com/bigdatawirtz/semanticsearch/internal/adapter/embedding"
	"github.com/bigdatawirtz/semanticsearch/internal/adapter/fs"
	"github.com/bigdatawirtz/semanticsearch/internal/adapter/memstore"
	"github.com/bigdatawirtz/semanticsearch/internal/adapter/remote"
	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/logging"
	"github.com/bigdatawirtz/semanticsearch/internal/port"
	"github.com/bigdatawirtz/semanticsearch/internal/usecase"
)

// App wires one store and its use cases for the lifetime of a command.
type App struct {
	cfg      *config.Config
	logger   *logging.Logger
	store    *memstore.MemoryStore
	walker   *fs.Walker
	ingest   *usecase.IngestUseCase
	retrieve *usecase.RetrieveUseCase
	answer   *usecase.AnswerUseCase

	progressOut io.Writer
	barMu       sync.Mutex
	bar         *progressbar.ProgressBar
}

// NewApp builds the components described by cfg. progressOut receives the
// ingestion progress bar; nil disables it.
func NewApp(cfg *config.Config, rootDir string, progressOut io.Writer) (*App, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	embedder, err := NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	if cfg.Embedding.CacheSize > 0 {
		embedder = cache.NewCachedEmbedder(embedder, cache.NewEmbeddingCache(cfg.Embedding.CacheSize, 0))
	}

	metric, err := memstore.ParseMetric(cfg.Retrieve.Metric)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:         cfg,
		logger:      logger,
		walker:      fs.NewWalker(rootDir, cfg.Ingest.Includes, cfg.Ingest.Excludes),
		progressOut: progressOut,
	}
	app.store = memstore.New(embedder,
		memstore.WithMetric(metric),
		memstore.WithLogger(logger),
	)
	app.ingest = usecase.NewIngestUseCase(app.store, embedder, app.walker,
		usecase.WithWorkers(cfg.Ingest.Workers),
		usecase.WithIngestLogger(logger),
		usecase.WithProgress(app.onProgress),
	)
	app.retrieve = usecase.NewRetrieveUseCase(app.store)

	if cfg.Completion.Enabled {
		client := completion.NewOllamaClient(
			cfg.Completion.Model,
			cfg.Completion.BaseURL,
			time.Duration(cfg.Completion.TimeoutSecs)*time.Second,
			remote.NewRetrier(cfg.Completion.MaxRetries, 0),
		)
		app.answer = usecase.NewAnswerUseCase(app.retrieve, client, cfg.Completion.MaxDocumentChars, logger)
	}

	return app, nil
}

// NewEmbedder creates the embedder selected by cfg.Provider.
func NewEmbedder(cfg config.EmbeddingConfig) (port.Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	retrier := remote.NewRetrier(cfg.MaxRetries, cfg.RequestsPerSecond)

	switch cfg.Provider {
	case "", "hash":
		return embedding.NewHashEmbedder(cfg.Dimension), nil
	case "mock":
		return embedding.NewMockEmbedder(cfg.Dimension), nil
	case "openai":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable %s", cfg.APIKeyEnv)
		}
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:    apiKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			Timeout:   timeout,
			Retrier:   retrier,
		})
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Model, cfg.BaseURL, timeout, retrier)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// Load expands patterns (or the configured includes when empty) and
// ingests every matching file.
func (a *App) Load(ctx context.Context, patterns []string) (*domain.BatchReport, error) {
	paths, err := a.walker.Expand(patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to expand document patterns: %w", err)
	}

	report := a.ingest.IngestFiles(ctx, paths)

	a.barMu.Lock()
	if a.bar != nil {
		_ = a.bar.Finish()
		a.bar = nil
	}
	a.barMu.Unlock()

	return report, nil
}

// Count returns the number of stored documents.
func (a *App) Count() int {
	return a.store.Count()
}

// Search returns the top k documents for question. k <= 0 uses the
// configured default.
func (a *App) Search(ctx context.Context, question string, k int) ([]domain.Result, error) {
	if k <= 0 {
		k = a.cfg.Retrieve.TopK
	}
	return a.retrieve.Retrieve(ctx, question, k)
}

// Ask returns a grounded answer for question.
func (a *App) Ask(ctx context.Context, question string) (string, error) {
	if a.answer == nil {
		return "", fmt.Errorf("completion is disabled in the configuration")
	}
	return a.answer.Synthesize(ctx, question)
}

func (a *App) onProgress(done, total int, source string) {
	if a.progressOut == nil {
		return
	}
	a.barMu.Lock()
	defer a.barMu.Unlock()

	if a.bar == nil {
		a.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(a.progressOut),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Loading[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(a.progressOut)
			}),
		)
	}
	_ = a.bar.Set(done)
}

// loadApp builds the App for the current command and ingests --docs.
func loadApp(ctx context.Context, errOut io.Writer) (*App, error) {
	app, err := NewApp(GetConfig(), GetRootDir(), errOut)
	if err != nil {
		return nil, err
	}
	report, err := app.Load(ctx, docGlobs)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(errOut, report.Summary())
	return app, nil
}
