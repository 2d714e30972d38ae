package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/devmatch/rotation-api/internal/models"
)

// StatsRepository aggregates rotation activity per project for admin
// dashboards.
type StatsRepository struct{}

// NewStatsRepository constructs the repository.
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

type statusCountRow struct {
	Status string `db:"response_status"`
	Count  int    `db:"count"`
}

// ProjectRotationStats assembles the per-project rotation summary.
func (r *StatsRepository) ProjectRotationStats(ctx context.Context, q Querier, projectID string) (*models.RotationStats, error) {
	stats := &models.RotationStats{
		ProjectID:          projectID,
		CandidatesByStatus: make(map[string]int),
		GeneratedAt:        time.Now().UTC(),
	}

	const batchQuery = `SELECT COUNT(*) FROM batches WHERE project_id = $1`
	if err := q.GetContext(ctx, &stats.TotalBatches, batchQuery, projectID); err != nil {
		return nil, fmt.Errorf("count project batches: %w", err)
	}

	const currentQuery = `SELECT b.id, b.batch_number
		FROM batches b
		JOIN projects p ON p.current_batch_id = b.id
		WHERE p.id = $1`
	var current struct {
		ID          string `db:"id"`
		BatchNumber int    `db:"batch_number"`
	}
	if err := q.GetContext(ctx, &current, currentQuery, projectID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("current project batch: %w", err)
		}
	} else {
		stats.CurrentBatchID = &current.ID
		stats.CurrentBatchNumber = current.BatchNumber
	}

	const statusQuery = `SELECT response_status, COUNT(*) AS count
		FROM candidates WHERE project_id = $1 GROUP BY response_status`
	var rows []statusCountRow
	if err := q.SelectContext(ctx, &rows, statusQuery, projectID); err != nil {
		return nil, fmt.Errorf("candidate status counts: %w", err)
	}
	for _, row := range rows {
		stats.CandidatesByStatus[row.Status] = row.Count
	}

	const acceptedQuery = `SELECT developer_id FROM candidates
		WHERE project_id = $1 AND is_first_accepted = true LIMIT 1`
	var acceptedDeveloperID string
	if err := q.GetContext(ctx, &acceptedDeveloperID, acceptedQuery, projectID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("accepted developer: %w", err)
		}
	} else {
		stats.AcceptedDeveloperID = &acceptedDeveloperID
	}

	return stats, nil
}
