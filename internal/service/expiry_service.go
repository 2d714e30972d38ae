package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
)

type expiryCandidateStore interface {
	ExpireOverdue(ctx context.Context, q repository.Querier, now time.Time) (int64, error)
}

type expiryBatchStore interface {
	ListExhausted(ctx context.Context, q repository.Querier, limit int) ([]models.Batch, error)
	MarkExpired(ctx context.Context, q repository.Querier, batchID, reason string, now time.Time) (int64, error)
}

type batchRefresher interface {
	RefreshBatch(ctx context.Context, projectID string, override *dto.QuotaOverride) (*dto.BatchResult, error)
}

const exhaustedBatchReason = "all_candidates_expired"

// ExpiryConfig tunes the sweep.
type ExpiryConfig struct {
	RefreshCap     int
	RefreshTimeout time.Duration
}

// ExpiryService runs the periodic sweep: overdue pending candidates are
// expired in bulk, then fully exhausted batches are retired and
// regenerated. Per-batch failures never abort the run, and the refresh
// phase works under a hard wall-clock budget, reporting partial progress on
// timeout instead of hanging.
type ExpiryService struct {
	db         repository.Querier
	candidates expiryCandidateStore
	batches    expiryBatchStore
	refresher  batchRefresher
	logger     *zap.Logger
	config     ExpiryConfig
	now        func() time.Time
}

// NewExpiryService constructs the service.
func NewExpiryService(
	db repository.Querier,
	candidates expiryCandidateStore,
	batches expiryBatchStore,
	refresher batchRefresher,
	logger *zap.Logger,
	config ExpiryConfig,
) *ExpiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RefreshCap <= 0 {
		config.RefreshCap = 5
	}
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = 60 * time.Second
	}
	return &ExpiryService{
		db:         db,
		candidates: candidates,
		batches:    batches,
		refresher:  refresher,
		logger:     logger,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *ExpiryService) WithClock(now func() time.Time) *ExpiryService {
	s.now = now
	return s
}

// Sweep executes both phases and reports what happened. Running it again
// immediately is a no-op: the expiry update matches nothing and no batch
// remains both active and exhausted.
func (s *ExpiryService) Sweep(ctx context.Context) (*models.SweepResult, error) {
	now := s.now()

	expired, err := s.candidates.ExpireOverdue(ctx, s.db, now)
	if err != nil {
		return nil, err
	}
	if expired > 0 {
		s.logger.Info("expired overdue candidates", zap.Int64("count", expired))
	}

	refreshed := s.refreshExhausted(ctx, now)

	return &models.SweepResult{
		ExpiredCount:        expired,
		RefreshedBatchCount: refreshed,
		ProcessedAt:         now,
	}, nil
}

func (s *ExpiryService) refreshExhausted(parent context.Context, now time.Time) int {
	ctx, cancel := context.WithTimeout(parent, s.config.RefreshTimeout)
	defer cancel()

	batches, err := s.batches.ListExhausted(ctx, s.db, s.config.RefreshCap)
	if err != nil {
		s.logger.Error("listing exhausted batches failed", zap.Error(err))
		return 0
	}

	refreshed := 0
	for _, batch := range batches {
		if ctx.Err() != nil {
			s.logger.Warn("refresh phase timed out, reporting partial progress",
				zap.Int("refreshed", refreshed),
				zap.Int("remaining", len(batches)-refreshed),
			)
			break
		}
		if err := s.refreshOne(ctx, batch, now); err != nil {
			s.logger.Error("auto-refresh failed for batch",
				zap.String("batch_id", batch.ID),
				zap.String("project_id", batch.ProjectID),
				zap.Error(err),
			)
			continue
		}
		refreshed++
	}
	return refreshed
}

func (s *ExpiryService) refreshOne(ctx context.Context, batch models.Batch, now time.Time) error {
	if _, err := s.batches.MarkExpired(ctx, s.db, batch.ID, exhaustedBatchReason, now); err != nil {
		return err
	}
	_, err := s.refresher.RefreshBatch(ctx, batch.ProjectID, nil)
	return err
}
