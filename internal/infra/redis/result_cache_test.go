package redis

import (
	"context"
	"testing"
	"time"

	"deepref-rcs-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestResultCacheMirrorsPersistedResult(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	inner := &recordingSink{}
	cache := NewResultCache(client, inner, time.Minute)

	result := domain.RcsResult{
		Overall:    39.5,
		Breakdown:  domain.ScoreBreakdown{Authenticity: 80, Sentiment: 75},
		Weights:    domain.DefaultWeights(),
		Percentile: 50,
		Grade:      "F",
		Badge:      "Needs Improvement",
	}
	if err := cache.PersistResult(context.Background(), "ref-1", result); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if inner.persisted != 1 {
		t.Fatalf("expected inner sink hit, got %d", inner.persisted)
	}
	if !mr.Exists("rcs:result:ref-1") {
		t.Fatalf("expected mirrored result key")
	}

	cached, ok, err := cache.Cached(context.Background(), "ref-1")
	if err != nil || !ok {
		t.Fatalf("cached lookup: ok=%v err=%v", ok, err)
	}
	if cached.Overall != 39.5 || cached.Grade != "F" {
		t.Fatalf("unexpected cached result: %+v", cached)
	}

	if _, ok, err := cache.Cached(context.Background(), "ref-unknown"); err != nil || ok {
		t.Fatalf("expected miss for unknown id, ok=%v err=%v", ok, err)
	}
}

func TestResultCacheDropsPopulationOnPersist(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	if err := mr.Set("rcs:population", "stale"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	cache := NewResultCache(client, &recordingSink{}, time.Minute)
	if err := cache.PersistResult(context.Background(), "ref-1", domain.RcsResult{Overall: 50}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if mr.Exists("rcs:population") {
		t.Fatalf("expected cached population invalidated after persist")
	}
}

type recordingSink struct {
	persisted int
}

func (s *recordingSink) PersistResult(context.Context, string, domain.RcsResult) error {
	s.persisted++
	return nil
}
