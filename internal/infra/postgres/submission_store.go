package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deepref-rcs-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SubmissionStore reads reference submissions from Postgres and writes
// scoring results back. The free-form submission payload (role, questions,
// answers, deepfake signal) lives in a JSONB column; the fields queries
// filter or rank on are real columns.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

// submissionPayload is the JSONB shape of the data column.
type submissionPayload struct {
	Role                string             `json:"role"`
	Questions           []string           `json:"questions"`
	Responses           map[string]*string `json:"responses"`
	DeepfakeProbability *float64           `json:"deepfakeProbability,omitempty"`
}

func (s *SubmissionStore) FindSubmission(ctx context.Context, id string) (domain.Submission, error) {
	var (
		requesterID string
		status      string
		raw         []byte
		submittedAt *time.Time
		createdAt   time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT requester_id, status, data, submitted_at, created_at FROM reference_submissions WHERE id=$1`,
		id,
	).Scan(&requesterID, &status, &raw, &submittedAt, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("load submission: %w", err)
	}

	var payload submissionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal submission: %w", err)
	}

	return domain.Submission{
		ID:                  id,
		RequesterID:         requesterID,
		Role:                payload.Role,
		Status:              domain.Status(status),
		Questions:           payload.Questions,
		Responses:           payload.Responses,
		SubmittedAt:         submittedAt,
		CreatedAt:           createdAt,
		DeepfakeProbability: payload.DeepfakeProbability,
	}, nil
}

func (s *SubmissionStore) ListCompletedIDs(ctx context.Context, scope domain.PopulationScope) ([]string, error) {
	query := `SELECT id FROM reference_submissions WHERE status='completed'`
	args := []interface{}{}
	if scope.RequesterID != "" {
		query += ` AND requester_id=$1`
		args = append(args, scope.RequesterID)
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completed submissions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan submission id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SubmissionStore) ListScores(ctx context.Context, scope domain.PopulationScope) ([]float64, error) {
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

func (s *SubmissionStore) ListSamples(ctx context.Context, scope domain.PopulationScope) ([]domain.PopulationSample, error) {
	query := `SELECT id, rcs_overall FROM reference_submissions WHERE status='completed' AND rcs_overall IS NOT NULL`
	args := []interface{}{}
	if scope.RequesterID != "" {
		query += ` AND requester_id=$1`
		args = append(args, scope.RequesterID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list population scores: %w", err)
	}
	defer rows.Close()

	var samples []domain.PopulationSample
	for rows.Next() {
		var sample domain.PopulationSample
		if err := rows.Scan(&sample.SubmissionID, &sample.Overall); err != nil {
			return nil, fmt.Errorf("scan population score: %w", err)
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// PersistResult writes the overall and authenticity scores onto the
// submission row and keeps the full result as JSONB for auditability.
func (s *SubmissionStore) PersistResult(ctx context.Context, id string, result domain.RcsResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE reference_submissions SET rcs_overall=$2, rcs_authenticity=$3, rcs_result=$4::jsonb WHERE id=$1`,
		id, result.Overall, result.Breakdown.Authenticity, payload,
	)
	if err != nil {
		return fmt.Errorf("persist result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}
