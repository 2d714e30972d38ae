package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
	"github.com/devmatch/rotation-api/pkg/jobs"
)

type rotationProjectStore interface {
	GetByID(ctx context.Context, q repository.Querier, id string) (*models.Project, error)
	SetCurrentBatch(ctx context.Context, q repository.Querier, projectID, batchID string, now time.Time) error
}

type rotationBatchStore interface {
	NextBatchNumber(ctx context.Context, q repository.Querier, projectID string) (int, error)
	Create(ctx context.Context, q repository.Querier, batch *models.Batch) error
	MarkReplaced(ctx context.Context, q repository.Querier, batchID string, now time.Time) (int64, error)
}

type rotationCandidateStore interface {
	CreateMany(ctx context.Context, q repository.Querier, candidates []models.Candidate) error
	InvalidatePending(ctx context.Context, q repository.Querier, batchID string, now time.Time) (int64, error)
}

type rotationDeveloperStore interface {
	EligiblePool(ctx context.Context, q repository.Querier, params repository.EligiblePoolParams) ([]models.PoolCandidate, error)
}

type rotationCursorStore interface {
	Get(ctx context.Context, q repository.Querier, skillID string, level models.DeveloperLevel) (*models.RotationCursor, error)
	Upsert(ctx context.Context, q repository.Querier, cursor models.RotationCursor) error
}

type serializableTxRunner interface {
	RunSerializable(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type cursorQueue interface {
	Enqueue(job jobs.Job) error
}

// RotationConfig tunes batch generation.
type RotationConfig struct {
	DefaultQuotas       models.Quotas
	AcceptanceWindow    time.Duration
	PoolFetchMultiplier int
	GenerationAttempts  int
}

// RotationService selects candidate developers under fairness constraints
// and persists them as time-boxed batches. It is safe to invoke
// concurrently from many handler instances; all correctness comes from the
// serializable transaction plus conditional updates, never in-process
// locks.
type RotationService struct {
	db         repository.Querier
	tx         serializableTxRunner
	projects   rotationProjectStore
	batches    rotationBatchStore
	candidates rotationCandidateStore
	developers rotationDeveloperStore
	cursors    rotationCursorStore
	queue      cursorQueue
	validator  *validator.Validate
	logger     *zap.Logger
	config     RotationConfig
	now        func() time.Time
}

// NewRotationService constructs the service.
func NewRotationService(
	db repository.Querier,
	tx serializableTxRunner,
	projects rotationProjectStore,
	batches rotationBatchStore,
	candidates rotationCandidateStore,
	developers rotationDeveloperStore,
	cursors rotationCursorStore,
	queue cursorQueue,
	validate *validator.Validate,
	logger *zap.Logger,
	config RotationConfig,
) *RotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AcceptanceWindow <= 0 {
		config.AcceptanceWindow = 15 * time.Minute
	}
	if config.PoolFetchMultiplier <= 0 {
		config.PoolFetchMultiplier = 4
	}
	if config.GenerationAttempts <= 0 {
		config.GenerationAttempts = 3
	}
	if config.DefaultQuotas.Total() == 0 {
		config.DefaultQuotas = models.Quotas{Fresher: 5, Mid: 5, Expert: 3}
	}
	return &RotationService{
		db:         db,
		tx:         tx,
		projects:   projects,
		batches:    batches,
		candidates: candidates,
		developers: developers,
		cursors:    cursors,
		queue:      queue,
		validator:  validate,
		logger:     logger,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *RotationService) WithClock(now func() time.Time) *RotationService {
	s.now = now
	return s
}

// GenerateBatch creates a new active batch of candidate invitations for the
// project. Transient transaction conflicts are retried up to the configured
// attempt count.
func (s *RotationService) GenerateBatch(ctx context.Context, projectID string, override *dto.QuotaOverride) (*dto.BatchResult, error) {
	return s.generate(ctx, projectID, override, false)
}

// RefreshBatch atomically supersedes the project's current batch and
// generates a replacement: the old batch is marked replaced and its pending
// candidates invalidated in the same transaction that creates the new one.
func (s *RotationService) RefreshBatch(ctx context.Context, projectID string, override *dto.QuotaOverride) (*dto.BatchResult, error) {
	return s.generate(ctx, projectID, override, true)
}

func (s *RotationService) generate(ctx context.Context, projectID string, override *dto.QuotaOverride, refresh bool) (*dto.BatchResult, error) {
	quotas, err := s.resolveQuotas(override)
	if err != nil {
		return nil, err
	}

	var result *dto.BatchResult
	var lastErr error
	for attempt := 1; attempt <= s.config.GenerationAttempts; attempt++ {
		result, lastErr = s.generateOnce(ctx, projectID, quotas, refresh)
		if lastErr == nil {
			return result, nil
		}
		if !repository.IsTransientConflict(lastErr) {
			return nil, lastErr
		}
		s.logger.Warn("batch generation conflicted, retrying",
			zap.String("project_id", projectID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}
	return nil, appErrors.Wrap(lastErr, appErrors.ErrTransientConflict.Code, appErrors.ErrTransientConflict.Status, "batch generation kept conflicting")
}

func (s *RotationService) generateOnce(ctx context.Context, projectID string, quotas models.Quotas, refresh bool) (*dto.BatchResult, error) {
	now := s.now()
	var result *dto.BatchResult
	var cursorUpdates []models.RotationCursor

	err := s.tx.RunSerializable(ctx, func(tx *sqlx.Tx) error {
		project, err := s.projects.GetByID(ctx, tx, projectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "project not found")
			}
			return fmt.Errorf("load project: %w", err)
		}
		if !project.CanGenerateBatch() {
			return appErrors.Clone(appErrors.ErrInvalidProjectState,
				fmt.Sprintf("project is %s, batches can only be generated while submitted or assigning", project.Status))
		}

		if refresh && project.CurrentBatchID != nil {
			if _, err := s.batches.MarkReplaced(ctx, tx, *project.CurrentBatchID, now); err != nil {
				return err
			}
			if _, err := s.candidates.InvalidatePending(ctx, tx, *project.CurrentBatchID, now); err != nil {
				return err
			}
		}

		selected, err := s.selectCandidates(ctx, tx, project, quotas)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return appErrors.ErrNoEligibleCandidates
		}

		batchNumber, err := s.batches.NextBatchNumber(ctx, tx, projectID)
		if err != nil {
			return err
		}

		batch := &models.Batch{
			ProjectID:    projectID,
			BatchNumber:  batchNumber,
			Status:       models.BatchStatusActive,
			QuotaFresher: quotas.Fresher,
			QuotaMid:     quotas.Mid,
			QuotaExpert:  quotas.Expert,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.batches.Create(ctx, tx, batch); err != nil {
			return err
		}

		deadline := now.Add(s.config.AcceptanceWindow)
		candidates := make([]models.Candidate, 0, len(selected))
		for _, pick := range selected {
			candidates = append(candidates, models.Candidate{
				BatchID:              batch.ID,
				ProjectID:            projectID,
				DeveloperID:          pick.DeveloperID,
				Level:                pick.Level,
				SkillIDs:             pick.SkillIDs,
				AssignedAt:           now,
				AcceptanceDeadline:   deadline,
				ResponseStatus:       models.CandidateStatusPending,
				UsualResponseMinutes: pick.UsualResponseMinutes,
				DisplayStatus:        models.CandidateStatusPending.DisplayText(),
			})
		}
		if err := s.candidates.CreateMany(ctx, tx, candidates); err != nil {
			return err
		}

		if err := s.projects.SetCurrentBatch(ctx, tx, projectID, batch.ID, now); err != nil {
			return err
		}

		cursorUpdates = cursorsFromSelection(selected, now)
		result = &dto.BatchResult{Batch: *batch, Candidates: candidates}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cursor writes run after commit so they can never amplify conflicts
	// inside the batch transaction. Losing one only degrades fairness.
	s.scheduleCursorUpdates(ctx, cursorUpdates)

	return result, nil
}

// selectCandidates assembles the raw pool across every (skill, level)
// combination, applies cursor rotation or fairness ordering per pair, then
// deduplicates and rebalances down to quota.
func (s *RotationService) selectCandidates(ctx context.Context, tx *sqlx.Tx, project *models.Project, quotas models.Quotas) ([]models.PoolCandidate, error) {
	var raw []models.PoolCandidate
	for _, skillID := range project.RequiredSkillIDs {
		for _, level := range models.Levels() {
			quota := quotas.ForLevel(level)
			if quota <= 0 {
				continue
			}
			pool, err := s.developers.EligiblePool(ctx, tx, repository.EligiblePoolParams{
				SkillID:      skillID,
				Level:        level,
				ProjectID:    project.ID,
				ClientUserID: project.ClientUserID,
				Limit:        quota * s.config.PoolFetchMultiplier,
			})
			if err != nil {
				return nil, err
			}
			if len(pool) == 0 {
				continue
			}
			cursor, err := s.cursors.Get(ctx, tx, skillID, level)
			if err != nil {
				return nil, err
			}
			raw = append(raw, orderPool(pool, cursor)...)
		}
	}
	return rebalanceLevels(dedupePool(raw), quotas), nil
}

// cursorsFromSelection records, for every (skill, level) pair that
// contributed, the last developer selected for that pair.
func cursorsFromSelection(selected []models.PoolCandidate, now time.Time) []models.RotationCursor {
	type pairKey struct {
		skillID string
		level   models.DeveloperLevel
	}
	last := make(map[pairKey]string)
	var order []pairKey
	for _, pick := range selected {
		for _, skillID := range pick.SkillIDs {
			key := pairKey{skillID: skillID, level: pick.Level}
			if _, seen := last[key]; !seen {
				order = append(order, key)
			}
			last[key] = pick.DeveloperID
		}
	}
	cursors := make([]models.RotationCursor, 0, len(order))
	for _, key := range order {
		cursors = append(cursors, models.RotationCursor{
			SkillID:         key.skillID,
			Level:           key.level,
			LastDeveloperID: last[key],
			UpdatedAt:       now,
		})
	}
	return cursors
}

// scheduleCursorUpdates hands cursor writes to the background queue; when
// the queue is unavailable it falls back to a single direct write. Failures
// are logged and swallowed: cursor updates must never fail generation.
func (s *RotationService) scheduleCursorUpdates(ctx context.Context, updates []models.RotationCursor) {
	for _, cursor := range updates {
		if s.queue != nil {
			if err := s.queue.Enqueue(jobs.Job{
				ID:      fmt.Sprintf("cursor-%s-%s", cursor.SkillID, cursor.Level),
				Type:    "rotation_cursor_update",
				Payload: cursor,
			}); err == nil {
				continue
			}
		}
		if err := s.cursors.Upsert(ctx, s.db, cursor); err != nil {
			s.logger.Warn("rotation cursor update dropped",
				zap.String("skill_id", cursor.SkillID),
				zap.String("level", string(cursor.Level)),
				zap.Error(err),
			)
		}
	}
}

func (s *RotationService) resolveQuotas(override *dto.QuotaOverride) (models.Quotas, error) {
	if override == nil {
		return s.config.DefaultQuotas, nil
	}
	if err := s.validator.Struct(override); err != nil {
		return models.Quotas{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quota override")
	}
	return models.Quotas{Fresher: override.Fresher, Mid: override.Mid, Expert: override.Expert}, nil
}

// CursorUpdateHandler returns the queue handler that applies rotation
// cursor writes with the queue's bounded retry.
func CursorUpdateHandler(db repository.Querier, cursors *repository.RotationCursorRepository) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		cursor, ok := job.Payload.(models.RotationCursor)
		if !ok {
			return fmt.Errorf("unexpected cursor payload %T", job.Payload)
		}
		return cursors.Upsert(ctx, db, cursor)
	}
}
