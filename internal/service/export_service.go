package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
	"github.com/noah-isme/edubatch-api/pkg/export"
)

const exportPageSize = 100

var rosterHeaders = []string{"ID", "Name", "Email", "Phone", "Batch", "Payment Method", "Payment Status", "Transaction", "Registered"}

type rosterSource interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered roster ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the student roster as CSV or PDF.
type ExportService struct {
	students rosterSource
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(students rosterSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{students: students, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Roster renders every student matching batchType (all when empty).
func (s *ExportService) Roster(ctx context.Context, batchType models.BatchType, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid export format"), map[string]string{"format": "format must be csv or pdf"})
	}
	if batchType != "" && !batchType.Valid() {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid filter"), map[string]string{"batchType": "unknown batch type"})
	}

	students, err := s.collect(ctx, batchType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	dataset := rosterDataset(students)

	var body []byte
	switch format {
	case export.FormatPDF:
		title := "EduBatch Academy roster"
		if batchType != "" {
			title += " - " + string(batchType)
		}
		body, err = s.pdf.Render(dataset, title)
	default:
		body, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	s.logger.Info("roster exported", zap.String("format", string(format)), zap.Int("rows", len(students)))
	return &ExportFile{
		Filename:    fmt.Sprintf("roster-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) collect(ctx context.Context, batchType models.BatchType) ([]models.Student, error) {
	var all []models.Student
	for page := 1; ; page++ {
		students, total, err := s.students.List(ctx, models.StudentFilter{BatchType: batchType, Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, students...)
		if len(students) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func rosterDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, map[string]string{
			"ID":             st.ID,
			"Name":           st.Name,
			"Email":          st.Email,
			"Phone":          st.Phone,
			"Batch":          string(st.BatchType),
			"Payment Method": string(st.PaymentMethod),
			"Payment Status": st.PaymentStatus,
			"Transaction":    st.TransactionID,
			"Registered":     st.RegistrationDate.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows}
}
