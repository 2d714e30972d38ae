package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
)

type stubExpiryCandidates struct {
	expired int64
	err     error
}

func (s *stubExpiryCandidates) ExpireOverdue(ctx context.Context, q repository.Querier, now time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.expired, nil
}

type stubExpiryBatches struct {
	exhausted []models.Batch
	listErr   error
	expired   []string
	expireErr map[string]error
}

func (s *stubExpiryBatches) ListExhausted(ctx context.Context, q repository.Querier, limit int) ([]models.Batch, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.exhausted) {
		return s.exhausted[:limit], nil
	}
	return s.exhausted, nil
}

func (s *stubExpiryBatches) MarkExpired(ctx context.Context, q repository.Querier, batchID, reason string, now time.Time) (int64, error) {
	if err, ok := s.expireErr[batchID]; ok {
		return 0, err
	}
	s.expired = append(s.expired, batchID)
	return 1, nil
}

type stubRefresher struct {
	refreshed []string
	errs      map[string]error
}

func (s *stubRefresher) RefreshBatch(ctx context.Context, projectID string, override *dto.QuotaOverride) (*dto.BatchResult, error) {
	if err, ok := s.errs[projectID]; ok {
		return nil, err
	}
	s.refreshed = append(s.refreshed, projectID)
	return &dto.BatchResult{}, nil
}

func exhaustedBatch(id, projectID string) models.Batch {
	return models.Batch{ID: id, ProjectID: projectID, Status: models.BatchStatusActive}
}

func TestSweepExpiresAndRefreshes(t *testing.T) {
	candidates := &stubExpiryCandidates{expired: 7}
	batches := &stubExpiryBatches{exhausted: []models.Batch{
		exhaustedBatch("batch-1", "proj-1"),
		exhaustedBatch("batch-2", "proj-2"),
	}}
	refresher := &stubRefresher{}
	svc := NewExpiryService(nil, candidates, batches, refresher, nil, ExpiryConfig{RefreshCap: 5, RefreshTimeout: time.Minute})

	result, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.ExpiredCount)
	assert.Equal(t, 2, result.RefreshedBatchCount)
	assert.Equal(t, []string{"batch-1", "batch-2"}, batches.expired)
	assert.Equal(t, []string{"proj-1", "proj-2"}, refresher.refreshed)
}

func TestSweepCapsRefreshCount(t *testing.T) {
	batches := &stubExpiryBatches{}
	for i := 0; i < 8; i++ {
		batches.exhausted = append(batches.exhausted, exhaustedBatch(
			"batch-"+string(rune('a'+i)), "proj-"+string(rune('a'+i))))
	}
	refresher := &stubRefresher{}
	svc := NewExpiryService(nil, &stubExpiryCandidates{}, batches, refresher, nil, ExpiryConfig{RefreshCap: 5, RefreshTimeout: time.Minute})

	result, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, result.RefreshedBatchCount)
	assert.Len(t, refresher.refreshed, 5)
}

func TestSweepContinuesPastFailedBatch(t *testing.T) {
	batches := &stubExpiryBatches{exhausted: []models.Batch{
		exhaustedBatch("batch-1", "proj-1"),
		exhaustedBatch("batch-2", "proj-2"),
		exhaustedBatch("batch-3", "proj-3"),
	}}
	refresher := &stubRefresher{errs: map[string]error{"proj-2": assert.AnError}}
	svc := NewExpiryService(nil, &stubExpiryCandidates{}, batches, refresher, nil, ExpiryConfig{RefreshCap: 5, RefreshTimeout: time.Minute})

	result, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.RefreshedBatchCount)
	assert.Equal(t, []string{"proj-1", "proj-3"}, refresher.refreshed)
}

func TestSweepMarkExpiredFailureSkipsRefresh(t *testing.T) {
	batches := &stubExpiryBatches{
		exhausted: []models.Batch{exhaustedBatch("batch-1", "proj-1")},
		expireErr: map[string]error{"batch-1": assert.AnError},
	}
	refresher := &stubRefresher{}
	svc := NewExpiryService(nil, &stubExpiryCandidates{}, batches, refresher, nil, ExpiryConfig{RefreshCap: 5, RefreshTimeout: time.Minute})

	result, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.RefreshedBatchCount)
	assert.Empty(t, refresher.refreshed)
}

func TestSweepSecondRunIsNoOp(t *testing.T) {
	candidates := &stubExpiryCandidates{}
	batches := &stubExpiryBatches{}
	refresher := &stubRefresher{}
	svc := NewExpiryService(nil, candidates, batches, refresher, nil, ExpiryConfig{RefreshCap: 5, RefreshTimeout: time.Minute})

	result, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.ExpiredCount)
	assert.Zero(t, result.RefreshedBatchCount)
	assert.Empty(t, refresher.refreshed)
}

func TestSweepExpireErrorAborts(t *testing.T) {
	candidates := &stubExpiryCandidates{err: assert.AnError}
	svc := NewExpiryService(nil, candidates, &stubExpiryBatches{}, &stubRefresher{}, nil, ExpiryConfig{})

	_, err := svc.Sweep(context.Background())

	require.Error(t, err)
}

func TestSweepStopsWhenBudgetExhausted(t *testing.T) {
	batches := &stubExpiryBatches{exhausted: []models.Batch{
		exhaustedBatch("batch-1", "proj-1"),
		exhaustedBatch("batch-2", "proj-2"),
	}}
	refresher := &stubRefresher{}
	svc := NewExpiryService(nil, &stubExpiryCandidates{}, batches, refresher, nil, ExpiryConfig{RefreshCap: 5, RefreshTimeout: time.Nanosecond})

	result, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.LessOrEqual(t, result.RefreshedBatchCount, 1)
}
