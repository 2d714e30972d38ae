package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/devmatch/rotation-api/internal/models"
)

// BatchRepository persists candidate batches.
type BatchRepository struct{}

// NewBatchRepository constructs the repository.
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{}
}

const batchColumns = `id, project_id, batch_number, status, quota_fresher,
       quota_mid, quota_expert, reason, created_at, updated_at`

// NextBatchNumber returns the monotonically increasing number the next
// batch of the project should carry, starting at 1.
func (r *BatchRepository) NextBatchNumber(ctx context.Context, q Querier, projectID string) (int, error) {
	const query = `SELECT COALESCE(MAX(batch_number), 0) + 1 FROM batches WHERE project_id = $1`
	var next int
	if err := q.GetContext(ctx, &next, query, projectID); err != nil {
		return 0, fmt.Errorf("next batch number: %w", err)
	}
	return next, nil
}

// Create inserts a new batch row.
func (r *BatchRepository) Create(ctx context.Context, q Querier, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	if batch.UpdatedAt.IsZero() {
		batch.UpdatedAt = batch.CreatedAt
	}
	const query = `INSERT INTO batches (id, project_id, batch_number, status, quota_fresher, quota_mid, quota_expert, reason, created_at, updated_at)
		VALUES (:id, :project_id, :batch_number, :status, :quota_fresher, :quota_mid, :quota_expert, :reason, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// MarkReplaced supersedes the still-active batch. Zero affected rows is not
// an error: the batch may already be terminal (e.g. expired by the sweep).
func (r *BatchRepository) MarkReplaced(ctx context.Context, q Querier, batchID string, now time.Time) (int64, error) {
	return r.transition(ctx, q, batchID, models.BatchStatusActive, models.BatchStatusReplaced, nil, now)
}

// MarkCompleted closes the batch after its first acceptance.
func (r *BatchRepository) MarkCompleted(ctx context.Context, q Querier, batchID string, now time.Time) (int64, error) {
	return r.transition(ctx, q, batchID, models.BatchStatusActive, models.BatchStatusCompleted, nil, now)
}

// MarkExpired retires an exhausted batch, tagging why.
func (r *BatchRepository) MarkExpired(ctx context.Context, q Querier, batchID, reason string, now time.Time) (int64, error) {
	return r.transition(ctx, q, batchID, models.BatchStatusActive, models.BatchStatusExpired, &reason, now)
}

func (r *BatchRepository) transition(ctx context.Context, q Querier, batchID string, from, to models.BatchStatus, reason *string, now time.Time) (int64, error) {
	const query = `UPDATE batches
		SET status = $1, reason = COALESCE($2, reason), updated_at = $3
		WHERE id = $4 AND status = $5`
	result, err := q.ExecContext(ctx, query, to, reason, now, batchID, from)
	if err != nil {
		return 0, fmt.Errorf("transition batch to %s: %w", to, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check batch transition rows: %w", err)
	}
	return affected, nil
}

// ListExhausted returns active batches whose candidates have all expired
// while the project still waits in assigning. Oldest first, capped.
func (r *BatchRepository) ListExhausted(ctx context.Context, q Querier, limit int) ([]models.Batch, error) {
	query := fmt.Sprintf(`SELECT %s
		FROM batches b
		JOIN projects p ON p.id = b.project_id
		WHERE b.status = $1
		  AND p.status = $2
		  AND EXISTS (SELECT 1 FROM candidates c WHERE c.batch_id = b.id)
		  AND NOT EXISTS (
		      SELECT 1 FROM candidates c
		      WHERE c.batch_id = b.id AND c.response_status <> $3
		  )
		ORDER BY b.created_at ASC
		LIMIT $4`, batchColumnsQualified("b"))
	var batches []models.Batch
	if err := q.SelectContext(ctx, &batches, query, models.BatchStatusActive, models.ProjectStatusAssigning, models.CandidateStatusExpired, limit); err != nil {
		return nil, fmt.Errorf("list exhausted batches: %w", err)
	}
	return batches, nil
}

// GetByID fetches a batch.
func (r *BatchRepository) GetByID(ctx context.Context, q Querier, id string) (*models.Batch, error) {
	query := fmt.Sprintf(`SELECT %s FROM batches WHERE id = $1`, batchColumns)
	var batch models.Batch
	if err := q.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

func batchColumnsQualified(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.project_id, %[1]s.batch_number, %[1]s.status, %[1]s.quota_fresher,
       %[1]s.quota_mid, %[1]s.quota_expert, %[1]s.reason, %[1]s.created_at, %[1]s.updated_at`, alias)
}
