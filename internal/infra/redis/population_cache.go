package redis

import (
	"context"
	"math/rand"
	"time"

	"deepref-rcs-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PopulationLoader fetches scored samples from the backing store.
type PopulationLoader interface {
	ListSamples(ctx context.Context, scope domain.PopulationScope) ([]domain.PopulationSample, error)
}

// PopulationCache keeps population scores in a Redis sorted set and falls
// back to a loader on cache miss.
// Samples are stored as: ZADD rcs:population[:requester:{id}] {overall} {submissionID}
type PopulationCache struct {
	client *redis.Client
	loader PopulationLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPopulationCache(client *redis.Client, loader PopulationLoader, ttl time.Duration) *PopulationCache {
	return &PopulationCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PopulationCache) ListScores(ctx context.Context, scope domain.PopulationScope) ([]float64, error) {
	key := populationKey(scope)

	cached, err := c.client.ZRangeWithScores(ctx, key, 0, -1).Result()
	if err == nil && len(cached) > 0 {
		return scoresOf(cached), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := c.client.ZRangeWithScores(ctx, key, 0, -1).Result()
		if err == nil && len(cached) > 0 {
			return scoresOf(cached), nil
		}

		samples, err := c.loader.ListSamples(ctx, scope)
		if err != nil {
			return nil, err
		}

		if len(samples) > 0 {
			members := make([]redis.Z, 0, len(samples))
			for _, sample := range samples {
				members = append(members, redis.Z{Score: sample.Overall, Member: sample.SubmissionID})
			}
			pipe := c.client.Pipeline()
			pipe.ZAdd(ctx, key, members...)
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			_, _ = pipe.Exec(ctx)
		}

		scores := make([]float64, 0, len(samples))
		for _, sample := range samples {
			scores = append(scores, sample.Overall)
		}
		return scores, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// Invalidate drops the cached population for a scope so the next scoring
// call sees freshly persisted scores.
func (c *PopulationCache) Invalidate(ctx context.Context, scope domain.PopulationScope) {
	_ = c.client.Del(ctx, populationKey(scope)).Err()
}

func populationKey(scope domain.PopulationScope) string {
	if scope.RequesterID == "" {
		return "rcs:population"
	}
	return "rcs:population:requester:" + scope.RequesterID
}

func scoresOf(members []redis.Z) []float64 {
	scores := make([]float64, 0, len(members))
	for _, member := range members {
		scores = append(scores, member.Score)
	}
	return scores
}

func (c *PopulationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
