package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/repository"
	"github.com/lumio-edu/lumio-api/pkg/export"
)

// Export formats supported by the grade report endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ErrUnsupportedExportFormat indicates the requested format is unknown.
var ErrUnsupportedExportFormat = errors.New("unsupported export format")

// ExportFile is a rendered report ready to be sent as a download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportService renders class grade reports for teachers.
type ExportService interface {
	ClassGrades(ctx context.Context, teacherID, classID uint, format string) (ExportFile, error)
}

type exportService struct {
	classes     repository.ClassRepository
	submissions repository.SubmissionRepository
	csv         tableRenderer
	pdf         tableRenderer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(classes repository.ClassRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		classes:     classes,
		submissions: submissions,
		csv:         export.NewCSVRenderer(),
		pdf:         export.NewPDFRenderer(),
		logger:      logger.With().Str("component", "export_service").Logger(),
		now:         time.Now,
	}
}

// ClassGrades renders every submission in the class as a tabular report.
func (s *exportService) ClassGrades(ctx context.Context, teacherID, classID uint, format string) (ExportFile, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExportFile{}, ErrClassNotFound
		}
		return ExportFile{}, err
	}
	if class.TeacherID != teacherID {
		return ExportFile{}, ErrNotClassOwner
	}

	submissions, err := s.submissions.ListByClass(ctx, classID)
	if err != nil {
		return ExportFile{}, err
	}

	table := export.Table{
		Title:   fmt.Sprintf("%s Grade Report", class.Name),
		Headers: []string{"Student", "Assignment", "Grade", "Feedback", "Submitted At"},
		Rows:    make([][]string, 0, len(submissions)),
	}
	for _, submission := range submissions {
		grade := ""
		if submission.Grade != nil {
			grade = strconv.FormatFloat(*submission.Grade, 'f', 1, 64)
		}
		title := ""
		if submission.Assignment != nil {
			title = submission.Assignment.Title
		}
		table.Rows = append(table.Rows, []string{
			submission.Student.Name,
			title,
			grade,
			submission.Feedback,
			submission.CreatedAt.Format(time.RFC3339),
		})
	}

	var payload []byte
	var contentType string
	switch strings.ToLower(format) {
	case ExportFormatCSV:
		payload, err = s.csv.Render(table)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(table)
		contentType = "application/pdf"
	default:
		return ExportFile{}, ErrUnsupportedExportFormat
	}
	if err != nil {
		return ExportFile{}, err
	}

	name := fmt.Sprintf("grades-%d-%s.%s", classID, s.now().Format("2006-01-02"), strings.ToLower(format))
	s.logger.Info().Uint("class_id", classID).Str("format", format).Int("rows", len(table.Rows)).Msg("grade report exported")

	return ExportFile{Name: name, ContentType: contentType, Data: payload}, nil
}
