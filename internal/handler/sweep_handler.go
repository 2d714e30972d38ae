package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/service"
	"github.com/devmatch/rotation-api/pkg/response"
)

type sweeper interface {
	Sweep(ctx context.Context) (*models.SweepResult, error)
}

// SweepHandler exposes the manual expiry sweep trigger.
type SweepHandler struct {
	expiry  sweeper
	metrics *service.MetricsService
}

// NewSweepHandler constructs the handler.
func NewSweepHandler(expiry sweeper, metrics *service.MetricsService) *SweepHandler {
	return &SweepHandler{expiry: expiry, metrics: metrics}
}

// Run godoc
// @Summary Expire overdue candidates and refresh exhausted batches
// @Tags Internal
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /internal/sweep [post]
func (h *SweepHandler) Run(c *gin.Context) {
	start := time.Now()
	result, err := h.expiry.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSweep(result.ExpiredCount, result.RefreshedBatchCount, time.Since(start))
	}
	response.JSON(c, http.StatusOK, result)
}
