// Package capability declares the narrow interfaces WebFlux uses to reach
// outside its own core: HTTP transport, embedding/completion backends,
// tokenizer backends, and a TTL cache store. Per spec §1 these are external
// collaborators — "one mock and one remote implementation may exist but are
// not part of the core" — so this package holds interfaces and an in-memory
// mock only, mirroring how the teacher repo's internal/robots/cache.Cache
// and internal/assets.Resolver are ports with a single concrete adapter.
package capability

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HTTPDoer is the minimal surface WebFlux needs from an HTTP client. The
// default implementation is *http.Client; tests substitute a fake.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPDoer = (*http.Client)(nil)

// Embedder produces a vector embedding for a piece of text, used by the
// Semantic chunking strategy (§4.7).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer drives a text-completion backend, used by the Reconstruct
// strategies other than None (§4.9).
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Tokenizer is an optional, pluggable exact-tokenization backend. When nil,
// the Token Counter (§4.4) falls back to its built-in model-family
// heuristics.
type Tokenizer interface {
	Tokenize(model, text string) (tokenCount int, err error)
}

// CacheStore is a generic key/value store with TTL, used by the Policy
// Cache (§4.1) when callers want persistence/sharing beyond the process's
// own in-memory map.
type CacheStore interface {
	Get(key string) (value string, found bool)
	Put(key string, value string, ttl time.Duration)
}

// MemoryCacheStore is the in-process CacheStore adapter, generalized from
// the teacher's internal/robots/cache.MemoryCache to carry a TTL per entry.
type MemoryCacheStore struct {
	mu   sync.RWMutex
	data map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{data: make(map[string]memoryCacheEntry)}
}

func (c *MemoryCacheStore) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, exists := c.data[key]
	c.mu.RUnlock()
	if !exists {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *MemoryCacheStore) Put(key string, value string, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = memoryCacheEntry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// MockEmbedder returns a deterministic, cheap embedding derived from text
// length/character histogram — enough to exercise the Semantic chunker's
// cosine-similarity grouping in tests without a real model.
type MockEmbedder struct{ Dim int }

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 16
	}
	return &MockEmbedder{Dim: dim}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, m.Dim)
	for i, r := range text {
		vec[i%m.Dim] += float32(r % 97)
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec, nil
	}
	return vec, nil
}

// MockCompleter echoes a templated transformation of the prompt so
// Reconstruct strategies are exercisable without a real LLM backend.
type MockCompleter struct{}

func (MockCompleter) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens > 0 && len(prompt) > maxTokens*4 {
		prompt = prompt[:maxTokens*4]
	}
	return prompt, nil
}
