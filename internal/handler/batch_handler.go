package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/dto"
	"github.com/devmatch/rotation-api/internal/service"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
	"github.com/devmatch/rotation-api/pkg/response"
)

type batchGenerator interface {
	GenerateBatch(ctx context.Context, projectID string, override *dto.QuotaOverride) (*dto.BatchResult, error)
	RefreshBatch(ctx context.Context, projectID string, override *dto.QuotaOverride) (*dto.BatchResult, error)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context, projectID string)
}

// BatchHandler exposes batch generation and refresh endpoints.
type BatchHandler struct {
	rotation batchGenerator
	stats    statsInvalidator
	metrics  *service.MetricsService
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(rotation batchGenerator, stats statsInvalidator, metrics *service.MetricsService) *BatchHandler {
	return &BatchHandler{rotation: rotation, stats: stats, metrics: metrics}
}

// Generate godoc
// @Summary Generate the first candidate batch for a project
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body dto.GenerateBatchRequest false "Optional quota override"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /projects/{id}/batches [post]
func (h *BatchHandler) Generate(c *gin.Context) {
	h.run(c, c.Param("id"), false)
}

// Refresh godoc
// @Summary Replace the current batch with a freshly rotated one
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body dto.GenerateBatchRequest false "Optional quota override"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /projects/{id}/batches/refresh [post]
func (h *BatchHandler) Refresh(c *gin.Context) {
	h.run(c, c.Param("id"), true)
}

func (h *BatchHandler) run(c *gin.Context, projectID string, refresh bool) {
	var req dto.GenerateBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
			return
		}
	}

	var (
		result *dto.BatchResult
		err    error
	)
	if refresh {
		result, err = h.rotation.RefreshBatch(c.Request.Context(), projectID, req.Quotas)
	} else {
		result, err = h.rotation.GenerateBatch(c.Request.Context(), projectID, req.Quotas)
	}
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordBatchGenerated(batchOutcome(err))
		}
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordBatchGenerated("success")
	}
	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context(), projectID)
	}
	response.JSON(c, http.StatusCreated, result)
}

func batchOutcome(err error) string {
	switch appErrors.FromError(err).Code {
	case appErrors.ErrNoEligibleCandidates.Code:
		return "no_candidates"
	case appErrors.ErrTransientConflict.Code:
		return "conflict"
	default:
		return "error"
	}
}
