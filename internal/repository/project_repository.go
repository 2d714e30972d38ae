package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/devmatch/rotation-api/internal/models"
)

// ProjectRepository reads and conditionally mutates projects. The project
// row itself is owned by the main platform; this service only touches the
// assignment-related columns.
type ProjectRepository struct{}

// NewProjectRepository constructs the repository.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

const projectColumns = `id, client_user_id, title, status, required_skill_ids,
       current_batch_id, contact_reveal_enabled, contact_revealed_developer_id,
       created_at, updated_at`

// GetByID fetches a project including its required skill set.
func (r *ProjectRepository) GetByID(ctx context.Context, q Querier, id string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	var project models.Project
	if err := q.GetContext(ctx, &project, query, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// SetCurrentBatch points the project at its freshly generated batch and
// moves it into assigning.
func (r *ProjectRepository) SetCurrentBatch(ctx context.Context, q Querier, projectID, batchID string, now time.Time) error {
	const query = `UPDATE projects
		SET current_batch_id = $1, status = $2, updated_at = $3
		WHERE id = $4`
	if _, err := q.ExecContext(ctx, query, batchID, models.ProjectStatusAssigning, now, projectID); err != nil {
		return fmt.Errorf("set current batch: %w", err)
	}
	return nil
}

// ProjectClaimParams identifies the project row an acceptance tries to win.
type ProjectClaimParams struct {
	ProjectID   string
	BatchID     string
	DeveloperID string
	Now         time.Time
}

// ClaimAccepted performs the atomic project claim: the update only lands
// while the current batch still matches, contact reveal has not flipped,
// and the project is still open for acceptance. The affected-row count is
// the winner signal; zero rows means another acceptance got there first.
func (r *ProjectRepository) ClaimAccepted(ctx context.Context, q Querier, params ProjectClaimParams) (int64, error) {
	const query = `UPDATE projects
		SET status = $1, contact_reveal_enabled = true, contact_revealed_developer_id = $2, updated_at = $3
		WHERE id = $4
		  AND current_batch_id = $5
		  AND contact_reveal_enabled = false
		  AND status IN ($6, $7)`
	result, err := q.ExecContext(ctx, query,
		models.ProjectStatusAccepted,
		params.DeveloperID,
		params.Now,
		params.ProjectID,
		params.BatchID,
		models.ProjectStatusAssigning,
		models.ProjectStatusSubmitted,
	)
	if err != nil {
		return 0, fmt.Errorf("claim project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check claimed project rows: %w", err)
	}
	return affected, nil
}
