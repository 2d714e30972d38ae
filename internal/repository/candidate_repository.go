package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/devmatch/rotation-api/internal/models"
)

// CandidateRepository persists assignment offers and performs the
// conditional claim updates the accept/reject state machine relies on.
type CandidateRepository struct{}

// NewCandidateRepository constructs the repository.
func NewCandidateRepository() *CandidateRepository {
	return &CandidateRepository{}
}

const candidateColumns = `id, batch_id, project_id, developer_id, level, skill_ids,
       assigned_at, acceptance_deadline, response_status, responded_at,
       is_first_accepted, usual_response_minutes, display_status`

// CreateMany inserts the full candidate set of a freshly generated batch.
func (r *CandidateRepository) CreateMany(ctx context.Context, q Querier, candidates []models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	const query = `INSERT INTO candidates
		(id, batch_id, project_id, developer_id, level, skill_ids, assigned_at, acceptance_deadline,
		 response_status, responded_at, is_first_accepted, usual_response_minutes, display_status)
		VALUES (:id, :batch_id, :project_id, :developer_id, :level, :skill_ids, :assigned_at, :acceptance_deadline,
		 :response_status, :responded_at, :is_first_accepted, :usual_response_minutes, :display_status)`
	for i := range candidates {
		if candidates[i].ID == "" {
			candidates[i].ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, q, query, candidates[i]); err != nil {
			return fmt.Errorf("create candidate: %w", err)
		}
	}
	return nil
}

// GetDetail loads a candidate joined with the batch, project, and developer
// context the accept/reject validations need.
func (r *CandidateRepository) GetDetail(ctx context.Context, q Querier, id string) (*models.CandidateDetail, error) {
	const query = `SELECT c.id, c.batch_id, c.project_id, c.developer_id, c.level, c.skill_ids,
       c.assigned_at, c.acceptance_deadline, c.response_status, c.responded_at,
       c.is_first_accepted, c.usual_response_minutes, c.display_status,
       b.status AS batch_status,
       p.status AS project_status, p.client_user_id AS project_client_user_id,
       p.current_batch_id AS project_current_batch_id, p.contact_reveal_enabled,
       d.user_id AS developer_user_id
		FROM candidates c
		JOIN batches b ON b.id = c.batch_id
		JOIN projects p ON p.id = c.project_id
		JOIN developers d ON d.id = c.developer_id
		WHERE c.id = $1`
	var detail models.CandidateDetail
	if err := q.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ClaimAccepted marks the candidate accepted only while it is still pending,
// unclaimed, and inside its deadline. Zero affected rows closes the narrow
// race window between the read-side validations and this write.
func (r *CandidateRepository) ClaimAccepted(ctx context.Context, q Querier, candidateID string, now time.Time) (int64, error) {
	const query = `UPDATE candidates
		SET response_status = $1, responded_at = $2, is_first_accepted = true, display_status = $3
		WHERE id = $4
		  AND response_status = $5
		  AND is_first_accepted = false
		  AND acceptance_deadline >= $2`
	result, err := q.ExecContext(ctx, query,
		models.CandidateStatusAccepted,
		now,
		models.CandidateStatusAccepted.DisplayText(),
		candidateID,
		models.CandidateStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("claim candidate accepted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check accepted candidate rows: %w", err)
	}
	return affected, nil
}

// ClaimRejected marks the candidate rejected while it is still pending. The
// deadline is deliberately not re-checked so a slightly late decline still
// lands gracefully.
func (r *CandidateRepository) ClaimRejected(ctx context.Context, q Querier, candidateID string, now time.Time) (int64, error) {
	const query = `UPDATE candidates
		SET response_status = $1, responded_at = $2, display_status = $3
		WHERE id = $4 AND response_status = $5`
	result, err := q.ExecContext(ctx, query,
		models.CandidateStatusRejected,
		now,
		models.CandidateStatusRejected.DisplayText(),
		candidateID,
		models.CandidateStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("claim candidate rejected: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rejected candidate rows: %w", err)
	}
	return affected, nil
}

// ExpireOverdue bulk-transitions every pending candidate past its deadline.
// RespondedAt is stamped even though nobody responded; the fairness
// aggregates need the timestamp.
func (r *CandidateRepository) ExpireOverdue(ctx context.Context, q Querier, now time.Time) (int64, error) {
	const query = `UPDATE candidates
		SET response_status = $1, responded_at = $2, display_status = $3
		WHERE response_status = $4 AND acceptance_deadline < $2`
	result, err := q.ExecContext(ctx, query,
		models.CandidateStatusExpired,
		now,
		models.CandidateStatusExpired.DisplayText(),
		models.CandidateStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("expire overdue candidates: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check expired candidate rows: %w", err)
	}
	return affected, nil
}

// InvalidatePending voids the still-pending candidates of a superseded
// batch.
func (r *CandidateRepository) InvalidatePending(ctx context.Context, q Querier, batchID string, now time.Time) (int64, error) {
	const query = `UPDATE candidates
		SET response_status = $1, responded_at = $2, display_status = $3
		WHERE batch_id = $4 AND response_status = $5`
	result, err := q.ExecContext(ctx, query,
		models.CandidateStatusInvalidated,
		now,
		models.CandidateStatusInvalidated.DisplayText(),
		batchID,
		models.CandidateStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("invalidate pending candidates: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check invalidated candidate rows: %w", err)
	}
	return affected, nil
}

// ListByBatch returns the batch's candidate set in assignment order.
func (r *CandidateRepository) ListByBatch(ctx context.Context, q Querier, batchID string) ([]models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE batch_id = $1 ORDER BY assigned_at ASC, id ASC`, candidateColumns)
	var candidates []models.Candidate
	if err := q.SelectContext(ctx, &candidates, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch candidates: %w", err)
	}
	return candidates, nil
}
