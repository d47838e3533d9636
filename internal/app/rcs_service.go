package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"deepref-rcs-service/internal/domain"
	"deepref-rcs-service/internal/scoring"
)

// SubmissionRepository abstracts how reference submissions are loaded
// (Postgres, in-memory, etc).
type SubmissionRepository interface {
	FindSubmission(ctx context.Context, id string) (domain.Submission, error)
	ListCompletedIDs(ctx context.Context, scope domain.PopulationScope) ([]string, error)
}

// PopulationStore exposes the overall scores of completed, already-scored
// submissions for percentile ranking.
type PopulationStore interface {
	ListScores(ctx context.Context, scope domain.PopulationScope) ([]float64, error)
}

// ResultSink persists a computed result; the host decides the persisted
// shape.
type ResultSink interface {
	PersistResult(ctx context.Context, id string, result domain.RcsResult) error
}

// batchChunkSize caps how many submissions are in flight at once during a
// batch recalculation. Chunks run sequentially; items within a chunk run
// concurrently.
const batchChunkSize = 10

// RcsService contains the credibility-scoring use cases.
type RcsService struct {
	submissions SubmissionRepository
	population  PopulationStore
	results     ResultSink
	engine      *scoring.Engine
	hub         *RecalcHub
	now         func() time.Time
}

func NewRcsService(submissions SubmissionRepository, population PopulationStore, results ResultSink, engine *scoring.Engine) *RcsService {
	return NewRcsServiceWithClock(submissions, population, results, engine, time.Now)
}

// NewRcsServiceWithClock allows deterministic timestamps in tests.
func NewRcsServiceWithClock(submissions SubmissionRepository, population PopulationStore, results ResultSink, engine *scoring.Engine, now func() time.Time) *RcsService {
	return &RcsService{
		submissions: submissions,
		population:  population,
		results:     results,
		engine:      engine,
		hub:         NewRecalcHub(),
		now:         now,
	}
}

// ScoreSubmission scores one submission, persists the result, and returns
// it. A persistence failure propagates to the caller here, unlike in the
// batch path where it is absorbed and counted.
func (s *RcsService) ScoreSubmission(ctx context.Context, id string) (domain.RcsResult, error) {
	sub, err := s.submissions.FindSubmission(ctx, id)
	if err != nil {
		return domain.RcsResult{}, err
	}

	result := s.score(ctx, sub)
	if err := s.results.PersistResult(ctx, id, result); err != nil {
		return domain.RcsResult{}, fmt.Errorf("persist result for %s: %w", id, err)
	}
	return result, nil
}

// score runs the full pipeline over one submission. Percentile is the
// only step that touches external state; its failure is recovered locally
// so a broken population store never fails a scoring call.
func (s *RcsService) score(ctx context.Context, sub domain.Submission) domain.RcsResult {
	breakdown := s.engine.Breakdown(sub)
	overall := s.engine.Overall(breakdown)

	percentile := scoring.DefaultPercentile
	if samples, err := s.population.ListScores(ctx, domain.PopulationScope{}); err != nil {
		log.Printf("population scan failed, defaulting percentile: %v", err)
	} else {
		percentile = scoring.Percentile(overall, samples)
	}

	return domain.RcsResult{
		Overall:      scoring.Round1(overall),
		Breakdown:    scoring.RoundBreakdown(breakdown),
		Weights:      s.engine.Weights(),
		Percentile:   percentile,
		Grade:        scoring.GradeFor(overall),
		Badge:        scoring.BadgeFor(overall),
		CalculatedAt: s.now(),
	}
}

// RecalculateBatch re-scores every completed submission in scope, in
// chunks of batchChunkSize. One item failing never aborts its siblings or
// the batch; failures are recorded with their reason. Progress snapshots
// are published to subscribers after each chunk.
func (s *RcsService) RecalculateBatch(ctx context.Context, scope domain.PopulationScope) (domain.BatchReport, error) {
	ids, err := s.submissions.ListCompletedIDs(ctx, scope)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("list completed submissions: %w", err)
	}

	report := domain.BatchReport{Total: len(ids)}
	var mu sync.Mutex

	for start := 0; start < len(ids); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for _, id := range ids[start:end] {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				err := s.recalculateOne(ctx, id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failed++
					report.Failures = append(report.Failures, domain.BatchFailure{SubmissionID: id, Reason: err.Error()})
					return
				}
				report.Updated++
			}(id)
		}
		wg.Wait()

		s.hub.Publish(domain.BatchProgress{
			Processed: end,
			Total:     len(ids),
			Updated:   report.Updated,
			Failed:    report.Failed,
			UpdatedAt: s.now(),
		})
	}

	// Chunk-internal concurrency makes failure order nondeterministic.
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].SubmissionID < report.Failures[j].SubmissionID
	})
	return report, nil
}

func (s *RcsService) recalculateOne(ctx context.Context, id string) error {
	sub, err := s.submissions.FindSubmission(ctx, id)
	if err != nil {
		return err
	}
	return s.results.PersistResult(ctx, id, s.score(ctx, sub))
}

// SubscribeProgress returns a channel receiving batch progress snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *RcsService) SubscribeProgress() (<-chan domain.BatchProgress, func()) {
	return s.hub.Subscribe()
}
