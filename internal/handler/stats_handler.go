package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/pkg/response"
)

type statsProvider interface {
	ProjectStats(ctx context.Context, projectID string) (*models.RotationStats, error)
}

// StatsHandler exposes rotation statistics endpoints.
type StatsHandler struct {
	stats statsProvider
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats statsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// ProjectStats godoc
// @Summary Rotation summary for a project
// @Tags Stats
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /projects/{id}/rotation-stats [get]
func (h *StatsHandler) ProjectStats(c *gin.Context) {
	stats, err := h.stats.ProjectStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
