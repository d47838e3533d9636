package domain

import (
	"fmt"
	"math"
	"time"
)

// Status tracks where a reference submission sits in its lifecycle.
// Transitions happen in the reference workflow, not here; scoring only
// ever reads it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusExpired   Status = "expired"
)

// Submission is a read-only view of one reference record as scoring sees it.
// A nil entry in Responses means the referrer explicitly skipped that
// question; a missing key means it was never answered at all.
type Submission struct {
	ID                  string
	RequesterID         string
	Role                string
	Status              Status
	Questions           []string
	Responses           map[string]*string
	SubmittedAt         *time.Time
	CreatedAt           time.Time
	DeepfakeProbability *float64
}

// ScoreBreakdown holds the four component scores, each in [0,100].
type ScoreBreakdown struct {
	Authenticity float64 `json:"authenticity"`
	Relevance    float64 `json:"relevance"`
	Clarity      float64 `json:"clarity"`
	Sentiment    float64 `json:"sentiment"`
}

// Weights defines the relative importance of each score component.
// All weights must sum to 1.0 (±0.001 tolerance).
type Weights struct {
	Authenticity float64 `json:"authenticity" yaml:"authenticity"`
	Relevance    float64 `json:"relevance" yaml:"relevance"`
	Clarity      float64 `json:"clarity" yaml:"clarity"`
	Sentiment    float64 `json:"sentiment" yaml:"sentiment"`
}

// DefaultWeights returns the production weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Authenticity: 0.4,
		Relevance:    0.3,
		Clarity:      0.2,
		Sentiment:    0.1,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Authenticity + w.Relevance + w.Clarity + w.Sentiment
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.Authenticity, w.Relevance, w.Clarity, w.Sentiment} {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

// Grade is the letter label derived from the overall score.
type Grade string

// Badge is the human-readable label derived from the overall score.
// Grade and Badge use independent threshold tables.
type Badge string

// RcsResult is the immutable outcome of scoring one submission. It is
// constructed fresh on every call and never updated in place; persistence
// is the caller's concern.
type RcsResult struct {
	Overall      float64        `json:"overall"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	Weights      Weights        `json:"weights"`
	Percentile   int            `json:"percentile"`
	Grade        Grade          `json:"grade"`
	Badge        Badge          `json:"badge"`
	CalculatedAt time.Time      `json:"calculatedAt"`
}

// PopulationSample is one previously computed overall score, identified
// by the submission it belongs to.
type PopulationSample struct {
	SubmissionID string
	Overall      float64
}

// PopulationScope optionally narrows the comparison population.
// The zero value means the whole completed population.
type PopulationScope struct {
	RequesterID string
}

// BatchFailure records why one item of a batch run could not be scored.
type BatchFailure struct {
	SubmissionID string `json:"submissionId"`
	Reason       string `json:"reason"`
}

// BatchReport summarizes a batch recalculation. Updated+Failed always
// equals Total.
type BatchReport struct {
	Total    int            `json:"total"`
	Updated  int            `json:"updated"`
	Failed   int            `json:"failed"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// BatchProgress is a point-in-time snapshot of a running batch, emitted
// after every chunk completes.
type BatchProgress struct {
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	UpdatedAt time.Time `json:"updatedAt"`
}
