package memory

import (
	"context"
	"sort"
	"sync"

	"deepref-rcs-service/internal/domain"
)

// Store is an in-memory implementation of the scoring collaborators,
// used for demo mode and tests. Persisted results are kept alongside the
// seeded submissions.
type Store struct {
	mu          sync.RWMutex
	submissions map[string]domain.Submission
	results     map[string]domain.RcsResult
}

func NewStore(submissions map[string]domain.Submission) *Store {
	subs := make(map[string]domain.Submission, len(submissions))
	for id, sub := range submissions {
		subs[id] = sub
	}
	return &Store{
		submissions: subs,
		results:     make(map[string]domain.RcsResult),
	}
}

func (s *Store) FindSubmission(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *Store) ListCompletedIDs(_ context.Context, scope domain.PopulationScope) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.submissions))
	for id, sub := range s.submissions {
		if sub.Status != domain.StatusCompleted {
			continue
		}
		if scope.RequesterID != "" && sub.RequesterID != scope.RequesterID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ListScores(ctx context.Context, scope domain.PopulationScope) ([]float64, error) {
	samples, err := s.ListSamples(ctx, scope)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(samples))
	for _, sample := range samples {
		scores = append(scores, sample.Overall)
	}
	return scores, nil
}

func (s *Store) ListSamples(_ context.Context, scope domain.PopulationScope) ([]domain.PopulationSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	samples := make([]domain.PopulationSample, 0, len(ids))
	for _, id := range ids {
		sub, ok := s.submissions[id]
		if !ok || sub.Status != domain.StatusCompleted {
			continue
		}
		if scope.RequesterID != "" && sub.RequesterID != scope.RequesterID {
			continue
		}
		samples = append(samples, domain.PopulationSample{SubmissionID: id, Overall: s.results[id].Overall})
	}
	return samples, nil
}

func (s *Store) PersistResult(_ context.Context, id string, result domain.RcsResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[id]; !ok {
		return domain.ErrSubmissionNotFound
	}
	s.results[id] = result
	return nil
}

// Result returns the last persisted result for a submission, if any.
func (s *Store) Result(id string) (domain.RcsResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	return result, ok
}

// SeedScore records an already-computed overall score, so tests can build
// a population without running the scorer.
func (s *Store) SeedScore(id string, overall float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = domain.RcsResult{Overall: overall}
}
