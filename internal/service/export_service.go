package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/export"
)

type recordLister interface {
	ListRecords(ctx context.Context, caller *models.User, query dto.AttendanceQuery) ([]models.AttendanceView, error)
}

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

var exportHeaders = []string{"Date", "Student ID", "Student", "Course", "Status", "Remarks", "Marked By"}

// ExportFile is a rendered document ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders filtered attendance records as downloadable files.
type ExportService struct {
	records   recordLister
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the default CSV and PDF exporters.
func NewExportService(records recordLister, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		records:   records,
		renderers: map[string]renderer{"csv": csv, "pdf": pdf},
		logger:    logger,
		now:       time.Now,
	}
}

// Export renders the records matching query in the requested format, csv
// by default.
func (s *ExportService) Export(ctx context.Context, caller *models.User, query dto.ExportQuery) (*ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Format must be csv or pdf")
	}

	views, err := s.records.ListRecords(ctx, caller, query.AttendanceQuery)
	if err != nil {
		return nil, err
	}

	body, err := r.Render(buildRecordDataset(views))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	filename := fmt.Sprintf("attendance_%s.%s", s.now().UTC().Format("20060102_150405"), r.Extension())
	s.logger.Info("attendance exported",
		zap.String("format", format),
		zap.Int("records", len(views)),
		zap.String("actor_id", caller.ID),
	)
	return &ExportFile{Filename: filename, ContentType: r.ContentType(), Body: body}, nil
}

func buildRecordDataset(views []models.AttendanceView) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, map[string]string{
			"Date":       v.Date,
			"Student ID": v.Student.StudentID,
			"Student":    v.Student.Name,
			"Course":     v.Course,
			"Status":     string(v.Status),
			"Remarks":    deref(v.Remarks),
			"Marked By":  v.MarkedBy.Name,
		})
	}
	return export.Dataset{Title: "Attendance Records", Headers: exportHeaders, Rows: rows}
}
