package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatch/rotation-api/internal/models"
)

func TestDeveloperRepositoryEligiblePool(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDeveloperRepository()
	responded := time.Now().UTC().Add(-2 * time.Hour)

	rows := sqlmock.NewRows([]string{
		"developer_id", "user_id", "level", "usual_response_minutes", "last_responded_at", "recent_accepts",
	}).
		AddRow("dev-1", "user-1", "MID", 25, responded, 1).
		AddRow("dev-2", "user-2", "MID", 40, nil, 0)
	mock.ExpectQuery("FROM developers d").
		WithArgs("go", models.LevelMid, "client-1", "proj-1", 20).
		WillReturnRows(rows)

	pool, err := repo.EligiblePool(context.Background(), db, EligiblePoolParams{
		SkillID:      "go",
		Level:        models.LevelMid,
		ProjectID:    "proj-1",
		ClientUserID: "client-1",
		Limit:        20,
	})
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, []string{"go"}, pool[0].SkillIDs)
	assert.Equal(t, 1, pool[0].RecentAcceptCount)
	require.NotNil(t, pool[0].LastRespondedAt)
	assert.Nil(t, pool[1].LastRespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeveloperRepositoryEligiblePoolEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDeveloperRepository()

	mock.ExpectQuery("FROM developers d").
		WillReturnRows(sqlmock.NewRows([]string{
			"developer_id", "user_id", "level", "usual_response_minutes", "last_responded_at", "recent_accepts",
		}))

	pool, err := repo.EligiblePool(context.Background(), db, EligiblePoolParams{
		SkillID: "go", Level: models.LevelFresher, Limit: 20,
	})
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestDeveloperRepositoryAssignmentHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDeveloperRepository()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"batch_number", "batch_status", "developer_id", "level", "response_status", "assigned_at", "responded_at",
	}).
		AddRow(2, "active", "dev-3", "EXPERT", "pending", now, nil).
		AddRow(1, "replaced", "dev-1", "MID", "invalidated", now.Add(-time.Hour), nil)
	mock.ExpectQuery("FROM candidates c").
		WithArgs("proj-1").
		WillReturnRows(rows)

	entries, err := repo.AssignmentHistory(context.Background(), db, "proj-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].BatchNumber)
	assert.Equal(t, models.CandidateStatusInvalidated, entries[1].ResponseStatus)
}
