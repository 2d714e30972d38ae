package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryProjectRotationStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM batches`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT b\.id, b\.batch_number`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_number"}).AddRow("batch-3", 3))
	mock.ExpectQuery(`SELECT response_status, COUNT\(\*\) AS count`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"response_status", "count"}).
			AddRow("pending", 4).
			AddRow("expired", 9))
	mock.ExpectQuery(`SELECT developer_id FROM candidates`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"developer_id"}))

	stats, err := repo.ProjectRotationStats(context.Background(), db, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBatches)
	require.NotNil(t, stats.CurrentBatchID)
	assert.Equal(t, "batch-3", *stats.CurrentBatchID)
	assert.Equal(t, 3, stats.CurrentBatchNumber)
	assert.Equal(t, map[string]int{"pending": 4, "expired": 9}, stats.CandidatesByStatus)
	assert.Nil(t, stats.AcceptedDeveloperID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositoryProjectRotationStatsNoCurrentBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM batches`).
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT b\.id, b\.batch_number`).
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_number"}))
	mock.ExpectQuery(`SELECT response_status, COUNT\(\*\) AS count`).
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"response_status", "count"}))
	mock.ExpectQuery(`SELECT developer_id FROM candidates`).
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"developer_id"}).AddRow("dev-9"))

	stats, err := repo.ProjectRotationStats(context.Background(), db, "proj-2")
	require.NoError(t, err)
	assert.Nil(t, stats.CurrentBatchID)
	assert.Zero(t, stats.CurrentBatchNumber)
	assert.Empty(t, stats.CandidatesByStatus)
	require.NotNil(t, stats.AcceptedDeveloperID)
	assert.Equal(t, "dev-9", *stats.AcceptedDeveloperID)
}
