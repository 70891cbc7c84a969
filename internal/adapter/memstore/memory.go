// Package memstore implements the in-memory document store. Records live for
// the lifetime of the process; there is no persistent backing.
package memstore

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/logging"
	"github.com/bigdatawirtz/semanticsearch/internal/port"
)

var errEmptyVector = errors.New("embedder returned an empty vector")

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithMetric sets the similarity metric. The default is Cosine.
func WithMetric(m Metric) Option {
	return func(s *MemoryStore) { s.metric = m }
}

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// MemoryStore is an append-only vector store with brute-force ranking.
// Writes are serialized; queries take a read lock only while scoring.
type MemoryStore struct {
	mu        sync.RWMutex
	embedder  port.Embedder
	metric    Metric
	dimension int
	docs      []domain.Document
	ids       map[string]int
	newID     func() string
	logger    *logging.Logger
}

var _ port.DocumentStore = (*MemoryStore)(nil)

// New creates an empty store that embeds through embedder.
func New(embedder port.Embedder, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		embedder: embedder,
		metric:   Cosine,
		ids:      make(map[string]int),
		newID:    func() string { return uuid.NewString() },
		logger:   logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert embeds text and appends a new record carrying a copy of meta.
func (s *MemoryStore) Insert(ctx context.Context, text string, meta domain.Metadata) (string, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		err = &domain.EmbeddingError{Cause: err}
		s.logger.LogInsert(ctx, "", meta.Filename(), 0, err)
		return "", err
	}
	id, err := s.InsertVector(text, meta, vec)
	s.logger.LogInsert(ctx, id, meta.Filename(), len(vec), err)
	return id, err
}

// InsertVector appends a record whose vector was computed by the caller with
// the store's embedder. The first record fixes the store dimension.
func (s *MemoryStore) InsertVector(text string, meta domain.Metadata, vector []float32) (string, error) {
	if len(vector) == 0 {
		return "", &domain.EmbeddingError{Cause: errEmptyVector}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(vector)
	} else if len(vector) != s.dimension {
		return "", &domain.EmbeddingError{Cause: &domain.ErrDimensionMismatch{Expected: s.dimension, Actual: len(vector)}}
	}

	id := s.newID()
	for {
		if _, taken := s.ids[id]; !taken {
			break
		}
		id = s.newID()
	}

	s.ids[id] = len(s.docs)
	s.docs = append(s.docs, domain.Document{
		ID:       id,
		Text:     text,
		Metadata: meta.Clone(),
		Vector:   slices.Clone(vector),
	})
	return id, nil
}

// Query ranks every record against the embedded text and returns the top k,
// most similar first. Equal scores keep insertion order. k <= 0 means 1.
// An empty store yields an empty slice without calling the embedder.
func (s *MemoryStore) Query(ctx context.Context, text string, k int) ([]domain.Match, error) {
	if k <= 0 {
		k = 1
	}
	if s.Count() == 0 {
		s.logger.LogSearch(ctx, k, 0, nil)
		return []domain.Match{}, nil
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		err = &domain.EmbeddingError{Cause: err}
		s.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		err := &domain.EmbeddingError{Cause: &domain.ErrDimensionMismatch{Expected: s.dimension, Actual: len(query)}}
		s.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.docs))
	for i := range s.docs {
		scores[i] = scored{idx: i, score: s.metric.score(query, s.docs[i].Vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	matches := make([]domain.Match, k)
	for i := 0; i < k; i++ {
		matches[i] = domain.Match{
			Document: copyDocument(s.docs[scores[i].idx]),
			Score:    scores[i].score,
		}
	}
	s.logger.LogSearch(ctx, k, len(matches), nil)
	return matches, nil
}

// Get returns a copy of the record with the given ID.
func (s *MemoryStore) Get(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.ids[id]
	if !ok {
		return domain.Document{}, false
	}
	return copyDocument(s.docs[idx]), true
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Dimension returns the vector length fixed by the first insert, or 0.
func (s *MemoryStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Metric returns the store's similarity metric.
func (s *MemoryStore) Metric() Metric {
	return s.metric
}

func copyDocument(d domain.Document) domain.Document {
	return domain.Document{
		ID:       d.ID,
		Text:     d.Text,
		Metadata: d.Metadata.Clone(),
		Vector:   slices.Clone(d.Vector),
	}
}
