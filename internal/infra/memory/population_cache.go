package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"deepref-rcs-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PopulationLoader fetches population scores from a backing store.
type PopulationLoader interface {
	ListScores(ctx context.Context, scope domain.PopulationScope) ([]float64, error)
}

// PopulationCache caches population scans with a TTL so every scoring
// call does not hit the backing store.
type PopulationCache struct {
	loader PopulationLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedScores
}

type cachedScores struct {
	scores    []float64
	expiresAt time.Time
}

func NewPopulationCache(loader PopulationLoader, ttl time.Duration) *PopulationCache {
	return &PopulationCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedScores),
	}
}

func (c *PopulationCache) ListScores(ctx context.Context, scope domain.PopulationScope) ([]float64, error) {
	key := scopeKey(scope)
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.scores, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.scores, nil
		}
		c.mu.RUnlock()

		scores, err := c.loader.ListScores(ctx, scope)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedScores{
			scores:    scores,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return scores, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

func scopeKey(scope domain.PopulationScope) string {
	if scope.RequesterID == "" {
		return "all"
	}
	return "requester:" + scope.RequesterID
}

func (c *PopulationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
