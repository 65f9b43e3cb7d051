// internal/matching/sources/cache.go
package sources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-workers/internal/matching"
)

// CachedSource wraps another source with a Redis-backed pool cache. A
// cache hit sets the cached flag so the run meta reports it. Cache
// trouble is never fatal: on any Redis error the wrapped source is
// consulted directly.
type CachedSource struct {
	inner Source
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedSource wraps src. A non-positive TTL defaults to one minute.
func NewCachedSource(src Source, rdb *redis.Client, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSource{inner: src, rdb: rdb, ttl: ttl}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) cacheKey() string {
	return "matchpool:" + s.inner.Name()
}

func (s *CachedSource) Fetch(ctx context.Context) ([]matching.RawCandidate, bool, error) {
	if val, err := s.rdb.Get(ctx, s.cacheKey()).Result(); err == nil {
		var cached []matching.RawCandidate
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, true, nil
		}
		// Unreadable payload: fall through and refresh it.
		s.rdb.Del(ctx, s.cacheKey())
	}

	candidates, _, err := s.inner.Fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(candidates); err == nil {
		s.rdb.Set(ctx, s.cacheKey(), data, s.ttl)
	}

	return candidates, false, nil
}
