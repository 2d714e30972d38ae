package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devmatch/rotation-api/internal/models"
	"github.com/devmatch/rotation-api/internal/repository"
	appErrors "github.com/devmatch/rotation-api/pkg/errors"
	"github.com/devmatch/rotation-api/pkg/export"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportHistoryStore interface {
	AssignmentHistory(ctx context.Context, q repository.Querier, projectID string) ([]models.AssignmentHistoryEntry, error)
}

type exportProjectStore interface {
	GetByID(ctx context.Context, q repository.Querier, id string) (*models.Project, error)
}

// ExportResult carries rendered export bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders a project's assignment history as CSV or PDF.
type ExportService struct {
	db       repository.Querier
	history  exportHistoryStore
	projects exportProjectStore
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(db repository.Querier, history exportHistoryStore, projects exportProjectStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		db:       db,
		history:  history,
		projects: projects,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

var historyHeaders = []string{"batch", "batch_status", "developer_id", "level", "response_status", "assigned_at", "responded_at"}

// AssignmentHistory exports the batch/candidate trail of a project.
func (s *ExportService) AssignmentHistory(ctx context.Context, projectID string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportFormatCSV, ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	if _, err := s.projects.GetByID(ctx, s.db, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	entries, err := s.history.AssignmentHistory(ctx, s.db, projectID)
	if err != nil {
		return nil, fmt.Errorf("assignment history: %w", err)
	}

	dataset := export.Dataset{Headers: historyHeaders, Rows: make([]map[string]string, 0, len(entries))}
	for _, entry := range entries {
		responded := ""
		if entry.RespondedAt != nil {
			responded = entry.RespondedAt.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"batch":           strconv.Itoa(entry.BatchNumber),
			"batch_status":    string(entry.BatchStatus),
			"developer_id":    entry.DeveloperID,
			"level":           string(entry.Level),
			"response_status": string(entry.ResponseStatus),
			"assigned_at":     entry.AssignedAt.UTC().Format(time.RFC3339),
			"responded_at":    responded,
		})
	}

	filename := fmt.Sprintf("assignment-history-%s-%s", shortID(projectID), time.Now().UTC().Format("20060102"))
	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Assignment History")
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: filename + ".pdf"}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, fmt.Errorf("render csv: %w", err)
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: filename + ".csv"}, nil
	}
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
