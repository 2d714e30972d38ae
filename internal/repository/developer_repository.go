package repository

import (
	"context"
	"fmt"

	"github.com/devmatch/rotation-api/internal/models"
)

// DeveloperRepository reads developer eligibility data. All methods are
// read-only; developers are owned by the main platform.
type DeveloperRepository struct{}

// NewDeveloperRepository constructs the repository.
func NewDeveloperRepository() *DeveloperRepository {
	return &DeveloperRepository{}
}

// EligiblePoolParams scopes one candidate-pool query.
type EligiblePoolParams struct {
	SkillID      string
	Level        models.DeveloperLevel
	ProjectID    string
	ClientUserID string
	Limit        int
}

// EligiblePool returns developers eligible to be offered (skill, level):
// approved, available or checking, contact-verified, not the project's own
// client, not pending in any active batch system-wide, and never previously
// offered for this project. Rows are stably ordered by developer id and
// annotated with fairness aggregates over the five most recent responses.
func (r *DeveloperRepository) EligiblePool(ctx context.Context, q Querier, params EligiblePoolParams) ([]models.PoolCandidate, error) {
	const query = `SELECT d.id AS developer_id, d.user_id, d.level, d.usual_response_minutes,
       hist.last_responded_at, COALESCE(hist.recent_accepts, 0) AS recent_accepts
		FROM developers d
		JOIN developer_skills ds ON ds.developer_id = d.id AND ds.skill_id = $1
		LEFT JOIN LATERAL (
		    SELECT MAX(recent.responded_at) AS last_responded_at,
		           COUNT(*) FILTER (WHERE recent.response_status = 'accepted') AS recent_accepts
		    FROM (
		        SELECT c.response_status, c.responded_at
		        FROM candidates c
		        WHERE c.developer_id = d.id AND c.responded_at IS NOT NULL
		        ORDER BY c.responded_at DESC
		        LIMIT 5
		    ) recent
		) hist ON true
		WHERE d.approved = true
		  AND d.availability IN ('available', 'checking')
		  AND d.contact_verified = true
		  AND d.level = $2
		  AND d.user_id <> $3
		  AND NOT EXISTS (
		      SELECT 1 FROM candidates pc
		      JOIN batches pb ON pb.id = pc.batch_id
		      WHERE pc.developer_id = d.id
		        AND pc.response_status = 'pending'
		        AND pb.status = 'active'
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM candidates prev
		      WHERE prev.developer_id = d.id AND prev.project_id = $4
		  )
		ORDER BY d.id ASC
		LIMIT $5`
	var pool []models.PoolCandidate
	if err := q.SelectContext(ctx, &pool, query,
		params.SkillID, params.Level, params.ClientUserID, params.ProjectID, params.Limit,
	); err != nil {
		return nil, fmt.Errorf("eligible pool (%s, %s): %w", params.SkillID, params.Level, err)
	}
	for i := range pool {
		pool[i].SkillIDs = []string{params.SkillID}
	}
	return pool, nil
}

// AssignmentHistory returns the full batch/candidate trail for a project,
// newest batch first, for admin exports.
func (r *DeveloperRepository) AssignmentHistory(ctx context.Context, q Querier, projectID string) ([]models.AssignmentHistoryEntry, error) {
	const query = `SELECT b.batch_number, b.status AS batch_status, c.developer_id, c.level,
       c.response_status, c.assigned_at, c.responded_at
		FROM candidates c
		JOIN batches b ON b.id = c.batch_id
		WHERE c.project_id = $1
		ORDER BY b.batch_number DESC, c.assigned_at ASC, c.id ASC`
	var entries []models.AssignmentHistoryEntry
	if err := q.SelectContext(ctx, &entries, query, projectID); err != nil {
		return nil, fmt.Errorf("assignment history: %w", err)
	}
	return entries, nil
}
