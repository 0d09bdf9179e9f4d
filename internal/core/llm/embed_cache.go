package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/classpark/classpark-backend/internal/core"
)

// WrapLRUCache puts an expiring LRU in front of an embedding provider.
// Repeated chat questions (and re-submitted materials) skip the provider call;
// vectors are tiny, so a few thousand entries is cheap.
func WrapLRUCache(next core.EmbeddingProvider, size int, ttl time.Duration) core.EmbeddingProvider {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &cachedEmbedder{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type cachedEmbedder struct {
	next  core.EmbeddingProvider
	cache *expirable.LRU[string, []float32]
}

func (c *cachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, t := range texts {
		if vec, ok := c.cache.Get(cacheKey(t)); ok {
			out[i] = cloneVector(vec)
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.next.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range vectors {
		i := missingIdx[j]
		out[i] = vec
		c.cache.Add(cacheKey(texts[i]), cloneVector(vec))
	}
	return out, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
