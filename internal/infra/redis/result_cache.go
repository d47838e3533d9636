package redis

import (
	"context"
	"encoding/json"
	"time"

	"deepref-rcs-service/internal/app"
	"deepref-rcs-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultCache wraps a ResultSink and mirrors every persisted result in
// Redis as JSON for cheap reads. The mirror is best-effort: a Redis
// hiccup never fails a persist that the inner sink accepted. Persisting
// also drops the cached whole-population set, since the new score belongs
// in it; scoped population keys age out via their TTL.
type ResultCache struct {
	client *redis.Client
	inner  app.ResultSink
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, inner app.ResultSink, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, inner: inner, ttl: ttl}
}

func (c *ResultCache) PersistResult(ctx context.Context, id string, result domain.RcsResult) error {
	if err := c.inner.PersistResult(ctx, id, result); err != nil {
		return err
	}
	if payload, err := json.Marshal(result); err == nil {
		_ = c.client.Set(ctx, resultKey(id), payload, c.ttl).Err()
	}
	_ = c.client.Del(ctx, populationKey(domain.PopulationScope{})).Err()
	return nil
}

// Cached returns the mirrored result for a submission, if present.
func (c *ResultCache) Cached(ctx context.Context, id string) (domain.RcsResult, bool, error) {
	payload, err := c.client.Get(ctx, resultKey(id)).Bytes()
	if err == redis.Nil {
		return domain.RcsResult{}, false, nil
	}
	if err != nil {
		return domain.RcsResult{}, false, err
	}
	var result domain.RcsResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.RcsResult{}, false, err
	}
	return result, true, nil
}

func resultKey(id string) string {
	return "rcs:result:" + id
}
