package catalog

import (
	"context"

	"despesas/internal/cache"
	"despesas/internal/core"
)

// CachedSource wraps another Source with a TTL cache. The cache key must
// identify the session whose categories are cached, so two identities
// never see each other's catalog.
type CachedSource struct {
	inner Source
	cache *cache.LRUCache[[]core.Category]
	key   string
}

func NewCachedSource(inner Source, c *cache.LRUCache[[]core.Category], sessionKey string) *CachedSource {
	return &CachedSource{inner: inner, cache: c, key: sessionKey}
}

func (s *CachedSource) Load(ctx context.Context) ([]core.Category, error) {
	return s.cache.GetOrLoad(s.key, func() ([]core.Category, error) {
		return s.inner.Load(ctx)
	})
}
