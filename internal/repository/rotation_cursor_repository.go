package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devmatch/rotation-api/internal/models"
)

// RotationCursorRepository persists the per-(skill, level) rotation
// pointers. Cursor rows are intentionally written without transactional
// protection; see the rotation service for the retry policy.
type RotationCursorRepository struct{}

// NewRotationCursorRepository constructs the repository.
func NewRotationCursorRepository() *RotationCursorRepository {
	return &RotationCursorRepository{}
}

// Get returns the cursor for (skill, level), or nil when none exists yet.
func (r *RotationCursorRepository) Get(ctx context.Context, q Querier, skillID string, level models.DeveloperLevel) (*models.RotationCursor, error) {
	const query = `SELECT skill_id, level, last_developer_id, updated_at
		FROM rotation_cursors WHERE skill_id = $1 AND level = $2`
	var cursor models.RotationCursor
	if err := q.GetContext(ctx, &cursor, query, skillID, level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rotation cursor: %w", err)
	}
	return &cursor, nil
}

// Upsert records the last developer offered for (skill, level).
func (r *RotationCursorRepository) Upsert(ctx context.Context, q Querier, cursor models.RotationCursor) error {
	const query = `INSERT INTO rotation_cursors (skill_id, level, last_developer_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (skill_id, level)
		DO UPDATE SET last_developer_id = EXCLUDED.last_developer_id, updated_at = EXCLUDED.updated_at`
	if _, err := q.ExecContext(ctx, query, cursor.SkillID, cursor.Level, cursor.LastDeveloperID, cursor.UpdatedAt); err != nil {
		return fmt.Errorf("upsert rotation cursor: %w", err)
	}
	return nil
}
