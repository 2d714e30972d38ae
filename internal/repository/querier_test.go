package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransientConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure code", &pq.Error{Code: "40001"}, true},
		{"deadlock code", &pq.Error{Code: "40P01"}, true},
		{"wrapped pq error", fmt.Errorf("tx failed: %w", &pq.Error{Code: "40001"}), true},
		{"serialize message", errors.New("ERROR: could not serialize access due to concurrent update"), true},
		{"deadlock message", errors.New("deadlock detected"), true},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key"}, false},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransientConflict(tc.err))
		})
	}
}

func TestTxRunnerCommitsOnSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	runner := NewTxRunner(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE projects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := runner.RunSerializable(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE projects SET status = 'assigning'")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	runner := NewTxRunner(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := runner.RunSerializable(context.Background(), func(tx *sqlx.Tx) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
