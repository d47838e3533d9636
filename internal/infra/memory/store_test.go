package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"deepref-rcs-service/internal/domain"
)

func TestStoreFindAndPersist(t *testing.T) {
	ctx := context.Background()
	store := NewStore(sampleSubmissions())

	sub, err := store.FindSubmission(ctx, "ref-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if sub.Role != "Software Engineer" {
		t.Fatalf("unexpected submission: %+v", sub)
	}

	if _, err := store.FindSubmission(ctx, "missing"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.PersistResult(ctx, "ref-1", domain.RcsResult{Overall: 88.5}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	result, ok := store.Result("ref-1")
	if !ok || result.Overall != 88.5 {
		t.Fatalf("expected persisted result, got %+v ok=%v", result, ok)
	}

	if err := store.PersistResult(ctx, "missing", domain.RcsResult{}); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found on persist, got %v", err)
	}
}

func TestStorePopulationFiltering(t *testing.T) {
	ctx := context.Background()
	store := NewStore(sampleSubmissions())
	store.SeedScore("ref-1", 70)
	store.SeedScore("ref-2", 80)
	store.SeedScore("ref-3", 90) // pending, must be excluded

	scores, err := store.ListScores(ctx, domain.PopulationScope{})
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 completed scores, got %v", scores)
	}

	scoped, err := store.ListScores(ctx, domain.PopulationScope{RequesterID: "seeker-2"})
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	if len(scoped) != 1 || scoped[0] != 80 {
		t.Fatalf("expected only seeker-2's score, got %v", scoped)
	}
}

func TestStoreListCompletedIDsSorted(t *testing.T) {
	store := NewStore(sampleSubmissions())

	ids, err := store.ListCompletedIDs(context.Background(), domain.PopulationScope{})
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "ref-1" || ids[1] != "ref-2" {
		t.Fatalf("expected sorted completed ids, got %v", ids)
	}
}

func sampleSubmissions() map[string]domain.Submission {
	submitted := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	answer := "A thorough and reliable colleague."
	return map[string]domain.Submission{
		"ref-1": {
			ID:          "ref-1",
			RequesterID: "seeker-1",
			Role:        "Software Engineer",
			Status:      domain.StatusCompleted,
			Questions:   []string{"q1"},
			Responses:   map[string]*string{"q1": &answer},
			SubmittedAt: &submitted,
			CreatedAt:   submitted.Add(-time.Hour),
		},
		"ref-2": {
			ID:          "ref-2",
			RequesterID: "seeker-2",
			Status:      domain.StatusCompleted,
			CreatedAt:   submitted,
		},
		"ref-3": {
			ID:          "ref-3",
			RequesterID: "seeker-1",
			Status:      domain.StatusPending,
			CreatedAt:   submitted,
		},
	}
}
