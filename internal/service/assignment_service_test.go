package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
)

type stubAssignmentCandidates struct {
	detail       *models.CandidateDetail
	detailErr    error
	acceptRows   int64
	rejectRows   int64
	acceptCalled bool
	rejectCalled bool
}

func (s *stubAssignmentCandidates) GetDetail(ctx context.Context, q repository.Querier, id string) (*models.CandidateDetail, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detail, nil
}

func (s *stubAssignmentCandidates) ClaimAccepted(ctx context.Context, q repository.Querier, candidateID string, now time.Time) (int64, error) {
	s.acceptCalled = true
	return s.acceptRows, nil
}

func (s *stubAssignmentCandidates) ClaimRejected(ctx context.Context, q repository.Querier, candidateID string, now time.Time) (int64, error) {
	s.rejectCalled = true
	return s.rejectRows, nil
}

type stubAssignmentProjects struct {
	claimRows   int64
	claimParams *repository.ProjectClaimParams
	project     *models.Project
}

func (s *stubAssignmentProjects) ClaimAccepted(ctx context.Context, q repository.Querier, params repository.ProjectClaimParams) (int64, error) {
	s.claimParams = &params
	return s.claimRows, nil
}

func (s *stubAssignmentProjects) GetByID(ctx context.Context, q repository.Querier, id string) (*models.Project, error) {
	if s.project == nil {
		return nil, sql.ErrNoRows
	}
	return s.project, nil
}

type stubAssignmentBatches struct {
	completed []string
}

func (s *stubAssignmentBatches) MarkCompleted(ctx context.Context, q repository.Querier, batchID string, now time.Time) (int64, error) {
	s.completed = append(s.completed, batchID)
	return 1, nil
}

func pendingDetail(deadline time.Time) *models.CandidateDetail {
	current := "batch-1"
	return &models.CandidateDetail{
		Candidate: models.Candidate{
			ID:                 "cand-1",
			BatchID:            "batch-1",
			ProjectID:          "proj-1",
			DeveloperID:        "dev-1",
			Level:              models.LevelMid,
			ResponseStatus:     models.CandidateStatusPending,
			AcceptanceDeadline: deadline,
		},
		BatchStatus:         models.BatchStatusActive,
		ProjectStatus:       models.ProjectStatusAssigning,
		ProjectClientUserID: "client-1",
		ProjectCurrentBatch: &current,
		DeveloperUserID:     "user-dev-1",
	}
}

func newAssignmentFixture(candidates *stubAssignmentCandidates, projects *stubAssignmentProjects) (*AssignmentService, *stubAssignmentBatches) {
	batches := &stubAssignmentBatches{}
	svc := NewAssignmentService(nil, &stubTxRunner{}, candidates, projects, batches, nil)
	return svc, batches
}

func TestAcceptCandidateHappyPath(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(10 * time.Minute)), acceptRows: 1}
	projects := &stubAssignmentProjects{
		claimRows: 1,
		project: &models.Project{
			ID:                         "proj-1",
			Status:                     models.ProjectStatusAssigning,
			ContactRevealEnabled:       true,
			ContactRevealedDeveloperID: strPtr("dev-1"),
		},
	}
	svc, batches := newAssignmentFixture(candidates, projects)
	svc.WithClock(func() time.Time { return base })

	result, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-dev-1")

	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusAccepted, result.Candidate.ResponseStatus)
	assert.True(t, result.Candidate.IsFirstAccepted)
	assert.Equal(t, []string{"batch-1"}, batches.completed)
	require.NotNil(t, projects.claimParams)
	assert.Equal(t, "dev-1", projects.claimParams.DeveloperID)
	assert.Equal(t, "batch-1", projects.claimParams.BatchID)
}

func TestAcceptCandidateLosesProjectRace(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(10 * time.Minute))}
	projects := &stubAssignmentProjects{claimRows: 0}
	svc, batches := newAssignmentFixture(candidates, projects)
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProjectAlreadyAccepted.Code, appErrors.FromError(err).Code)
	assert.False(t, candidates.acceptCalled)
	assert.Empty(t, batches.completed)
}

func TestAcceptCandidateLosesCandidateRace(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(10 * time.Minute)), acceptRows: 0}
	projects := &stubAssignmentProjects{claimRows: 1}
	svc, batches := newAssignmentFixture(candidates, projects)
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCandidateNotPending.Code, appErrors.FromError(err).Code)
	assert.Empty(t, batches.completed)
}

func TestAcceptCandidateDeadlinePassed(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(-time.Second))}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDeadlinePassed.Code, appErrors.FromError(err).Code)
}

func TestAcceptCandidateWrongDeveloper(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(10 * time.Minute))}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-other")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAcceptCandidateSelfAcceptForbidden(t *testing.T) {
	base := time.Now().UTC()
	detail := pendingDetail(base.Add(10 * time.Minute))
	detail.DeveloperUserID = "client-1"
	candidates := &stubAssignmentCandidates{detail: detail}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "client-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSelfAcceptForbidden.Code, appErrors.FromError(err).Code)
}

func TestAcceptCandidateSupersededBatch(t *testing.T) {
	base := time.Now().UTC()
	detail := pendingDetail(base.Add(10 * time.Minute))
	newer := "batch-2"
	detail.ProjectCurrentBatch = &newer
	candidates := &stubAssignmentCandidates{detail: detail}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBatchSuperseded.Code, appErrors.FromError(err).Code)
}

func TestAcceptCandidateAlreadyAcceptedSlot(t *testing.T) {
	base := time.Now().UTC()
	detail := pendingDetail(base.Add(10 * time.Minute))
	detail.IsFirstAccepted = true
	candidates := &stubAssignmentCandidates{detail: detail}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	_, err := svc.AcceptCandidate(context.Background(), "cand-1", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyAccepted.Code, appErrors.FromError(err).Code)
}

func TestAcceptCandidateNotFound(t *testing.T) {
	candidates := &stubAssignmentCandidates{detailErr: sql.ErrNoRows}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})

	_, err := svc.AcceptCandidate(context.Background(), "missing", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRejectCandidateHappyPath(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(10 * time.Minute)), rejectRows: 1}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	rejected, err := svc.RejectCandidate(context.Background(), "cand-1", "user-dev-1")

	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusRejected, rejected.ResponseStatus)
	require.NotNil(t, rejected.RespondedAt)
	assert.True(t, candidates.rejectCalled)
}

func TestRejectCandidateAfterDeadlineStillRecords(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(-time.Minute)), rejectRows: 1}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})
	svc.WithClock(func() time.Time { return base })

	rejected, err := svc.RejectCandidate(context.Background(), "cand-1", "user-dev-1")

	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusRejected, rejected.ResponseStatus)
}

func TestRejectCandidateNotPending(t *testing.T) {
	base := time.Now().UTC()
	detail := pendingDetail(base.Add(10 * time.Minute))
	detail.ResponseStatus = models.CandidateStatusExpired
	candidates := &stubAssignmentCandidates{detail: detail}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})

	_, err := svc.RejectCandidate(context.Background(), "cand-1", "user-dev-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCandidateState.Code, appErrors.FromError(err).Code)
	assert.False(t, candidates.rejectCalled)
}

func TestRejectCandidateWrongDeveloper(t *testing.T) {
	base := time.Now().UTC()
	candidates := &stubAssignmentCandidates{detail: pendingDetail(base.Add(10 * time.Minute))}
	svc, _ := newAssignmentFixture(candidates, &stubAssignmentProjects{})

	_, err := svc.RejectCandidate(context.Background(), "cand-1", "user-other")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func strPtr(s string) *string {
	return &s
}
