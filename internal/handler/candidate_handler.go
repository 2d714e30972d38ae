package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/service"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
	"github.com/devmatch/rotation-api/pkg/response"
)

type candidateResponder interface {
	AcceptCandidate(ctx context.Context, candidateID, actingUserID string) (*dto.AcceptResult, error)
	RejectCandidate(ctx context.Context, candidateID, actingUserID string) (*models.Candidate, error)
}

// CandidateHandler exposes accept and reject endpoints for developers.
type CandidateHandler struct {
	assignments candidateResponder
	stats       statsInvalidator
	metrics     *service.MetricsService
}

// NewCandidateHandler constructs the handler.
func NewCandidateHandler(assignments candidateResponder, stats statsInvalidator, metrics *service.MetricsService) *CandidateHandler {
	return &CandidateHandler{assignments: assignments, stats: stats, metrics: metrics}
}

// Accept godoc
// @Summary Accept a candidate slot
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /candidates/{id}/accept [post]
func (h *CandidateHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.assignments.AcceptCandidate(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordAcceptOutcome(acceptOutcome(err))
		}
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAcceptOutcome("accepted")
	}
	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context(), result.Project.ID)
	}
	response.JSON(c, http.StatusOK, result)
}

// Reject godoc
// @Summary Decline a candidate slot
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /candidates/{id}/reject [post]
func (h *CandidateHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	candidate, err := h.assignments.RejectCandidate(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordAcceptOutcome("reject_error")
		}
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAcceptOutcome("rejected")
	}
	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context(), candidate.ProjectID)
	}
	response.JSON(c, http.StatusOK, candidate)
}

func acceptOutcome(err error) string {
	switch appErrors.FromError(err).Code {
	case appErrors.ErrProjectAlreadyAccepted.Code, appErrors.ErrAlreadyAccepted.Code:
		return "lost_race"
	case appErrors.ErrDeadlinePassed.Code:
		return "deadline_passed"
	case appErrors.ErrBatchSuperseded.Code, appErrors.ErrBatchNotActive.Code:
		return "stale_batch"
	default:
		return "error"
	}
}
