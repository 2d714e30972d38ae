package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/middleware"
	"github.com/devmatch/rotation-api/internal/models"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
)

type candidateResponderMock struct {
	acceptResult *dto.AcceptResult
	acceptErr    error
	rejectResult *models.Candidate
	rejectErr    error
	acceptedBy   string
	rejectedBy   string
}

func (m *candidateResponderMock) AcceptCandidate(ctx context.Context, candidateID, actingUserID string) (*dto.AcceptResult, error) {
	m.acceptedBy = actingUserID
	return m.acceptResult, m.acceptErr
}

func (m *candidateResponderMock) RejectCandidate(ctx context.Context, candidateID, actingUserID string) (*models.Candidate, error) {
	m.rejectedBy = actingUserID
	return m.rejectResult, m.rejectErr
}

func newCandidateRequest(t *testing.T, w *httptest.ResponseRecorder, candidateID, action string, claims *models.JWTClaims) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/candidates/"+candidateID+"/"+action, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: candidateID}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c
}

func TestCandidateHandlerAcceptSuccess(t *testing.T) {
	responder := &candidateResponderMock{acceptResult: &dto.AcceptResult{
		Candidate: models.Candidate{ID: "cand-1", ProjectID: "proj-1"},
		Project:   models.Project{ID: "proj-1", Status: models.ProjectStatusAccepted},
	}}
	invalidator := &statsInvalidatorMock{}
	h := NewCandidateHandler(responder, invalidator, nil)

	w := httptest.NewRecorder()
	h.Accept(newCandidateRequest(t, w, "cand-1", "accept", &models.JWTClaims{UserID: "dev-user-1", Role: models.RoleDeveloper}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev-user-1", responder.acceptedBy)
	assert.Equal(t, []string{"proj-1"}, invalidator.projects)
}

func TestCandidateHandlerAcceptWithoutClaims(t *testing.T) {
	responder := &candidateResponderMock{}
	h := NewCandidateHandler(responder, nil, nil)

	w := httptest.NewRecorder()
	h.Accept(newCandidateRequest(t, w, "cand-1", "accept", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, responder.acceptedBy)
}

func TestCandidateHandlerAcceptRaceLost(t *testing.T) {
	responder := &candidateResponderMock{acceptErr: appErrors.ErrProjectAlreadyAccepted}
	invalidator := &statsInvalidatorMock{}
	h := NewCandidateHandler(responder, invalidator, nil)

	w := httptest.NewRecorder()
	h.Accept(newCandidateRequest(t, w, "cand-1", "accept", &models.JWTClaims{UserID: "dev-user-1", Role: models.RoleDeveloper}))

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROJECT_ALREADY_ACCEPTED")
	assert.Empty(t, invalidator.projects)
}

func TestCandidateHandlerRejectSuccess(t *testing.T) {
	responder := &candidateResponderMock{rejectResult: &models.Candidate{
		ID:             "cand-1",
		ProjectID:      "proj-1",
		ResponseStatus: models.CandidateStatusRejected,
	}}
	invalidator := &statsInvalidatorMock{}
	h := NewCandidateHandler(responder, invalidator, nil)

	w := httptest.NewRecorder()
	h.Reject(newCandidateRequest(t, w, "cand-1", "reject", &models.JWTClaims{UserID: "dev-user-1", Role: models.RoleDeveloper}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev-user-1", responder.rejectedBy)
	assert.Equal(t, []string{"proj-1"}, invalidator.projects)
}

func TestAcceptOutcomeClassification(t *testing.T) {
	assert.Equal(t, "lost_race", acceptOutcome(appErrors.ErrProjectAlreadyAccepted))
	assert.Equal(t, "lost_race", acceptOutcome(appErrors.ErrAlreadyAccepted))
	assert.Equal(t, "deadline_passed", acceptOutcome(appErrors.ErrDeadlinePassed))
	assert.Equal(t, "stale_batch", acceptOutcome(appErrors.ErrBatchSuperseded))
	assert.Equal(t, "error", acceptOutcome(appErrors.ErrNotFound))
}
