package scoring

import (
	"fmt"
	"math"

	"deepref-rcs-service/internal/domain"
)

// Engine aggregates the four component scorers under a validated weight
// set. Weights are fixed at construction; the engine itself is stateless
// and safe for concurrent use.
type Engine struct {
	weights domain.Weights
}

// NewEngine validates the weight set and returns a ready engine.
func NewEngine(weights domain.Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	return &Engine{weights: weights}, nil
}

// Weights returns the weight set the engine was built with.
func (e *Engine) Weights() domain.Weights {
	return e.weights
}

// Breakdown runs all four component scorers over a submission. The
// scorers are independent pure functions; evaluation order carries no
// meaning.
func (e *Engine) Breakdown(sub domain.Submission) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{
		Authenticity: Authenticity(sub),
		Relevance:    Relevance(sub),
		Clarity:      Clarity(sub),
		Sentiment:    Sentiment(sub),
	}
}

// Overall combines the component scores via the engine's weights. The
// value is unrounded; percentile, grade, and badge derive from it before
// any display rounding to avoid double-rounding bias.
func (e *Engine) Overall(b domain.ScoreBreakdown) float64 {
	return b.Authenticity*e.weights.Authenticity +
		b.Relevance*e.weights.Relevance +
		b.Clarity*e.weights.Clarity +
		b.Sentiment*e.weights.Sentiment
}

// Round1 rounds half away from zero at 0.1 granularity.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundBreakdown rounds each component independently for the result
// payload.
func RoundBreakdown(b domain.ScoreBreakdown) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{
		Authenticity: Round1(b.Authenticity),
		Relevance:    Round1(b.Relevance),
		Clarity:      Round1(b.Clarity),
		Sentiment:    Round1(b.Sentiment),
	}
}
