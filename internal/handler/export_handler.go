package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/service"
	"github.com/devmatch/rotation-api/pkg/response"
)

type historyExporter interface {
	AssignmentHistory(ctx context.Context, projectID string, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler exposes assignment history exports.
type ExportHandler struct {
	exports historyExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports historyExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// AssignmentHistory godoc
// @Summary Export a project's batch and candidate history
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Project ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /projects/{id}/assignments/export [get]
func (h *ExportHandler) AssignmentHistory(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.exports.AssignmentHistory(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Content)
}
