package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
)

type assignmentCandidateStore interface {
	GetDetail(ctx context.Context, q repository.Querier, id string) (*models.CandidateDetail, error)
	ClaimAccepted(ctx context.Context, q repository.Querier, candidateID string, now time.Time) (int64, error)
	ClaimRejected(ctx context.Context, q repository.Querier, candidateID string, now time.Time) (int64, error)
}

type assignmentProjectStore interface {
	ClaimAccepted(ctx context.Context, q repository.Querier, params repository.ProjectClaimParams) (int64, error)
	GetByID(ctx context.Context, q repository.Querier, id string) (*models.Project, error)
}

type assignmentBatchStore interface {
	MarkCompleted(ctx context.Context, q repository.Querier, batchID string, now time.Time) (int64, error)
}

// AssignmentService is the accept/reject state machine. At-most-one-winner
// semantics come entirely from two conditional updates whose affected-row
// counts decide the race; no in-process lock exists because the service
// runs across stateless replicas.
type AssignmentService struct {
	db         repository.Querier
	tx         serializableTxRunner
	candidates assignmentCandidateStore
	projects   assignmentProjectStore
	batches    assignmentBatchStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewAssignmentService constructs the service.
func NewAssignmentService(
	db repository.Querier,
	tx serializableTxRunner,
	candidates assignmentCandidateStore,
	projects assignmentProjectStore,
	batches assignmentBatchStore,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		db:         db,
		tx:         tx,
		candidates: candidates,
		projects:   projects,
		batches:    batches,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *AssignmentService) WithClock(now func() time.Time) *AssignmentService {
	s.now = now
	return s
}

// AcceptCandidate atomically claims the project for the acting developer.
// Exactly one accept per project can ever succeed; losers receive a typed
// error naming why. Failures are final: the opportunity went to someone
// else, so nothing is retried.
func (s *AssignmentService) AcceptCandidate(ctx context.Context, candidateID, actingUserID string) (*dto.AcceptResult, error) {
	now := s.now()
	var result *dto.AcceptResult

	err := s.tx.RunSerializable(ctx, func(tx *sqlx.Tx) error {
		detail, err := s.loadDetail(ctx, tx, candidateID)
		if err != nil {
			return err
		}
		if err := s.validateAccept(detail, actingUserID, now); err != nil {
			return err
		}

		affected, err := s.projects.ClaimAccepted(ctx, tx, repository.ProjectClaimParams{
			ProjectID:   detail.ProjectID,
			BatchID:     detail.BatchID,
			DeveloperID: detail.DeveloperID,
			Now:         now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return appErrors.ErrProjectAlreadyAccepted
		}

		affected, err = s.candidates.ClaimAccepted(ctx, tx, candidateID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return appErrors.ErrCandidateNotPending
		}

		if _, err := s.batches.MarkCompleted(ctx, tx, detail.BatchID, now); err != nil {
			return err
		}

		project, err := s.projects.GetByID(ctx, tx, detail.ProjectID)
		if err != nil {
			return fmt.Errorf("reload accepted project: %w", err)
		}

		accepted := detail.Candidate
		accepted.ResponseStatus = models.CandidateStatusAccepted
		accepted.RespondedAt = &now
		accepted.IsFirstAccepted = true
		accepted.DisplayStatus = models.CandidateStatusAccepted.DisplayText()
		result = &dto.AcceptResult{Candidate: accepted, Project: *project}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("candidate accepted",
		zap.String("candidate_id", candidateID),
		zap.String("project_id", result.Project.ID),
		zap.String("developer_id", result.Candidate.DeveloperID),
	)
	return result, nil
}

// RejectCandidate declines the offer. The deadline is not re-checked so a
// slightly late decline still records cleanly; there are no project or
// batch side effects.
func (s *AssignmentService) RejectCandidate(ctx context.Context, candidateID, actingUserID string) (*models.Candidate, error) {
	now := s.now()

	detail, err := s.loadDetail(ctx, s.db, candidateID)
	if err != nil {
		return nil, err
	}
	if detail.DeveloperUserID != actingUserID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "candidate belongs to another developer")
	}
	if detail.ResponseStatus != models.CandidateStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidCandidateState,
			fmt.Sprintf("candidate is %s, only pending offers can be declined", detail.ResponseStatus))
	}
	if detail.BatchStatus != models.BatchStatusActive {
		return nil, appErrors.ErrBatchNotActive
	}

	affected, err := s.candidates.ClaimRejected(ctx, s.db, candidateID, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, appErrors.ErrCandidateNotPending
	}

	rejected := detail.Candidate
	rejected.ResponseStatus = models.CandidateStatusRejected
	rejected.RespondedAt = &now
	rejected.DisplayStatus = models.CandidateStatusRejected.DisplayText()
	return &rejected, nil
}

func (s *AssignmentService) loadDetail(ctx context.Context, q repository.Querier, candidateID string) (*models.CandidateDetail, error) {
	detail, err := s.candidates.GetDetail(ctx, q, candidateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, fmt.Errorf("load candidate: %w", err)
	}
	return detail, nil
}

func (s *AssignmentService) validateAccept(detail *models.CandidateDetail, actingUserID string, now time.Time) error {
	if detail.DeveloperUserID != actingUserID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "candidate belongs to another developer")
	}
	if detail.ResponseStatus != models.CandidateStatusPending {
		return appErrors.Clone(appErrors.ErrInvalidCandidateState,
			fmt.Sprintf("candidate is %s, only pending offers can be accepted", detail.ResponseStatus))
	}
	if now.After(detail.AcceptanceDeadline) {
		return appErrors.ErrDeadlinePassed
	}
	if detail.BatchStatus != models.BatchStatusActive {
		return appErrors.ErrBatchNotActive
	}
	if detail.ProjectCurrentBatch == nil || *detail.ProjectCurrentBatch != detail.BatchID {
		return appErrors.ErrBatchSuperseded
	}
	if detail.IsFirstAccepted {
		return appErrors.ErrAlreadyAccepted
	}
	if detail.ProjectClientUserID == actingUserID {
		return appErrors.ErrSelfAcceptForbidden
	}
	return nil
}
