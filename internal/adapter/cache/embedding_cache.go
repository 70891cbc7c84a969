package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bigdatawirtz/semanticsearch/internal/port"
)

// EmbeddingCache is a bounded LRU of text embeddings with a TTL. It is safe
// for concurrent use.
type EmbeddingCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	key       string
	vector    []float32
	timestamp time.Time
}

// NewEmbeddingCache creates a cache. maxSize <= 0 means 256; ttl <= 0 means
// 30 minutes.
func NewEmbeddingCache(maxSize int, ttl time.Duration) *EmbeddingCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &EmbeddingCache{
		entries: make(map[string]*list.Element, maxSize),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Get returns a copy of the cached vector for text. Expired entries are
// dropped on access.
func (c *EmbeddingCache) Get(model, text string) ([]float32, bool) {
	key := cacheKey(model, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.timestamp) > c.ttl {
		c.remove(el)
		return nil, false
	}
	c.lru.MoveToFront(el)

	return append([]float32(nil), entry.vector...), true
}

// Put stores a copy of vector for text, evicting the least recently used
// entry when full.
func (c *EmbeddingCache) Put(model, text string, vector []float32) {
	key := cacheKey(model, text)
	entry := &cacheEntry{
		key:    key,
		vector: append([]float32(nil), vector...),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry.timestamp = c.now()
	if el, ok := c.entries[key]; ok {
		el.Value = entry
		c.lru.MoveToFront(el)
		return
	}

	for c.lru.Len() >= c.maxSize {
		c.remove(c.lru.Back())
	}
	c.entries[key] = c.lru.PushFront(entry)
}

// Size returns the number of cached entries.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *EmbeddingCache) remove(el *list.Element) {
	c.lru.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}

// CachedEmbedder serves repeated texts from an EmbeddingCache. Failed
// embeddings are not cached.
type CachedEmbedder struct {
	embedder port.Embedder
	cache    *EmbeddingCache
}

// NewCachedEmbedder wraps embedder with cache.
func NewCachedEmbedder(embedder port.Embedder, cache *EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{
		embedder: embedder,
		cache:    cache,
	}
}

// Embed returns the cached vector for text or computes and caches it.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := e.embedder.ModelName()
	if vec, hit := e.cache.Get(model, text); hit {
		return vec, nil
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Put(model, text, vec)
	return vec, nil
}

// ModelName returns the wrapped embedder's model name.
func (e *CachedEmbedder) ModelName() string {
	return e.embedder.ModelName()
}
