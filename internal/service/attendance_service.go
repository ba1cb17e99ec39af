package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type studentLookup interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}

type attendanceRepository interface {
	Create(ctx context.Context, record *models.AttendanceRecord) error
	ListByStudent(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, error)
}

// MarkAttendanceRequest records one class day for a student.
type MarkAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent"`
}

// AttendanceService marks and reports class attendance.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentLookup
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students studentLookup, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, validator: validate, logger: logger, now: time.Now}
}

// Mark records attendance for an existing student.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	if _, err := s.students.Get(ctx, req.StudentID); err != nil {
		return nil, err
	}
	record := &models.AttendanceRecord{
		StudentID: req.StudentID,
		Date:      req.Date,
		Status:    req.Status,
		MarkedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return record, nil
}

// History returns a student's attendance between from and to inclusive.
// Empty bounds default to the last 30 days.
func (s *AttendanceService) History(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, error) {
	today := s.now().UTC()
	if to == "" {
		to = today.Format(dateLayout)
	}
	if from == "" {
		from = today.AddDate(0, 0, -30).Format(dateLayout)
	}
	fromDate, fromErr := time.Parse(dateLayout, from)
	toDate, toErr := time.Parse(dateLayout, to)
	fields := map[string]string{}
	if fromErr != nil {
		fields["from"] = "from must be a date in YYYY-MM-DD format"
	}
	if toErr != nil {
		fields["to"] = "to must be a date in YYYY-MM-DD format"
	}
	if len(fields) == 0 && fromDate.After(toDate) {
		fields["from"] = "from must not be after to"
	}
	if len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid date range"), fields)
	}

	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return records, nil
}
