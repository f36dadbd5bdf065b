package embed

import (
	"context"
	"time"

	"github.com/akorchak/veracity/internal/cache"
)

// CachedEmbedder wraps an Embedder with a cache layer. Re-ingesting the
// same corpus or re-scoring the same report then costs no API calls.
type CachedEmbedder struct {
	inner Embedder
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner with the given cache
func NewCachedEmbedder(inner Embedder, c cache.Cache, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// Name returns the wrapped embedder's model name
func (e *CachedEmbedder) Name() string {
	return e.inner.Name()
}

// Dimension returns the wrapped embedder's vector dimension
func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

// Embed returns a cached embedding when available, otherwise delegates
// and stores the result. Cache write failures are ignored: the
// embedding is still correct, only the next call pays again.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(e.inner.Name(), text)

	if embedding, ok := e.cache.Get(key); ok {
		return embedding, nil
	}

	embedding, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	_ = e.cache.Set(key, embedding, e.ttl)

	return embedding, nil
}
