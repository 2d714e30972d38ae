package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmatch/rotation-api/internal/service"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
)

type historyExporterMock struct {
	result     *service.ExportResult
	err        error
	gotFormat  service.ExportFormat
	gotProject string
}

func (m *historyExporterMock) AssignmentHistory(ctx context.Context, projectID string, format service.ExportFormat) (*service.ExportResult, error) {
	m.gotProject = projectID
	m.gotFormat = format
	return m.result, m.err
}

func newExportRequest(t *testing.T, w *httptest.ResponseRecorder, projectID, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	url := "/projects/" + projectID + "/assignments/export"
	if query != "" {
		url += "?" + query
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: projectID}}
	return c
}

func TestExportHandlerDefaultsToCSV(t *testing.T) {
	mock := &historyExporterMock{result: &service.ExportResult{
		Content:     []byte("batch,developer_id\n1,dev-1\n"),
		ContentType: "text/csv",
		Filename:    "assignment-history-proj1234-20260827.csv",
	}}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	h.AssignmentHistory(newExportRequest(t, w, "proj-1", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, mock.gotFormat)
	assert.Equal(t, "proj-1", mock.gotProject)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "assignment-history-proj1234-20260827.csv")
	assert.Contains(t, w.Body.String(), "dev-1")
}

func TestExportHandlerPassesFormat(t *testing.T) {
	mock := &historyExporterMock{result: &service.ExportResult{
		Content:     []byte("%PDF-1.3"),
		ContentType: "application/pdf",
		Filename:    "assignment-history-proj1234-20260827.pdf",
	}}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	h.AssignmentHistory(newExportRequest(t, w, "proj-1", "format=pdf"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatPDF, mock.gotFormat)
}

func TestExportHandlerUnknownProject(t *testing.T) {
	mock := &historyExporterMock{err: appErrors.ErrNotFound}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	h.AssignmentHistory(newExportRequest(t, w, "missing", ""))

	require.Equal(t, http.StatusNotFound, w.Code)
}
