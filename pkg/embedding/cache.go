package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoises query embeddings. Document embeddings (batch ingestion)
// bypass the cache since each document is embedded once.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedProvider{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if taskType != TaskTypeQuery {
		return c.inner.Generate(ctx, text, taskType)
	}

	key := taskType + "|" + text
	if x, found := c.cache.Get(key); found {
		return x.(*EmbeddingResponse), nil
	}

	res, err := c.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func (c *CachedProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	return GenerateAll(ctx, c.inner, texts, taskType)
}

// Len reports the number of cached query embeddings.
func (c *CachedProvider) Len() int {
	return c.cache.ItemCount()
}
