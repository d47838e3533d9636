package scoring

import (
	"testing"
	"time"

	"deepref-rcs-service/internal/domain"
)

func TestNewEngineRejectsBadWeights(t *testing.T) {
	if _, err := NewEngine(domain.Weights{Authenticity: 0.5, Relevance: 0.5, Clarity: 0.5}); err == nil {
		t.Fatalf("expected error for weights not summing to 1.0")
	}
	if _, err := NewEngine(domain.Weights{Authenticity: 1.5, Relevance: -0.5}); err == nil {
		t.Fatalf("expected error for negative weight")
	}
	if _, err := NewEngine(domain.DefaultWeights()); err != nil {
		t.Fatalf("default weights rejected: %v", err)
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if err := domain.DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
}

func TestOverallIsWeightedSum(t *testing.T) {
	engine := newTestEngine(t)
	overall := engine.Overall(domain.ScoreBreakdown{
		Authenticity: 80,
		Relevance:    0,
		Clarity:      0,
		Sentiment:    75,
	})
	if overall != 39.5 {
		t.Fatalf("expected 39.5, got %v", overall)
	}
}

// Scenario: no answers at all, three expected questions, submitted on
// time, no deepfake signal.
func TestEmptySubmissionEndToEnd(t *testing.T) {
	engine := newTestEngine(t)
	submitted := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	sub := domain.Submission{
		ID:          "ref-empty",
		Questions:   []string{"q1", "q2", "q3"},
		Responses:   map[string]*string{},
		SubmittedAt: &submitted,
		CreatedAt:   submitted.Add(-time.Hour),
	}

	breakdown := engine.Breakdown(sub)
	want := domain.ScoreBreakdown{Authenticity: 80, Relevance: 0, Clarity: 0, Sentiment: 75}
	if breakdown != want {
		t.Fatalf("expected breakdown %+v, got %+v", want, breakdown)
	}

	overall := engine.Overall(breakdown)
	if overall != 39.5 {
		t.Fatalf("expected overall 39.5, got %v", overall)
	}
	if grade := GradeFor(overall); grade != "F" {
		t.Fatalf("expected grade F, got %s", grade)
	}
	if badge := BadgeFor(overall); badge != "Needs Improvement" {
		t.Fatalf("expected badge Needs Improvement, got %s", badge)
	}
}

func TestBreakdownIsDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	sub := completedSubmission()
	first := engine.Breakdown(sub)
	second := engine.Breakdown(sub)
	if first != second {
		t.Fatalf("breakdown not deterministic: %+v vs %+v", first, second)
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{39.5, 39.5},
		{86.0 + 2.0/3.0, 86.7},
		{0.04, 0},
		{0.05, 0.1},
		{99.99, 100},
	}
	for _, tc := range cases {
		if got := Round1(tc.in); got != tc.want {
			t.Fatalf("Round1(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestRoundBreakdownRoundsEachComponent(t *testing.T) {
	rounded := RoundBreakdown(domain.ScoreBreakdown{
		Authenticity: 86.0 + 2.0/3.0,
		Relevance:    49.99,
		Clarity:      85,
		Sentiment:    74.95,
	})
	want := domain.ScoreBreakdown{Authenticity: 86.7, Relevance: 50, Clarity: 85, Sentiment: 75}
	if rounded != want {
		t.Fatalf("expected %+v, got %+v", want, rounded)
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(domain.DefaultWeights())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
