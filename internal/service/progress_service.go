package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

type progressRepository interface {
	Create(ctx context.Context, record *models.ProgressRecord) error
	ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error)
}

// RecordProgressRequest carries an assessment result.
type RecordProgressRequest struct {
	Subject  string `json:"subject" validate:"required,max=100"`
	Topic    string `json:"topic" validate:"required,max=200"`
	Score    *int   `json:"score" validate:"required,gte=0,lte=100"`
	Feedback string `json:"feedback" validate:"max=1000"`
}

// ProgressService records and lists student progress.
type ProgressService struct {
	repo      progressRepository
	students  studentLookup
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProgressService constructs the progress service.
func NewProgressService(repo progressRepository, students studentLookup, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{repo: repo, students: students, validator: validate, logger: logger, now: time.Now}
}

// Record stores a progress entry for an existing student.
func (s *ProgressService) Record(ctx context.Context, studentID string, req RecordProgressRequest) (*models.ProgressRecord, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Topic = strings.TrimSpace(req.Topic)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid progress payload")
	}
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	record := &models.ProgressRecord{
		StudentID:  studentID,
		Subject:    req.Subject,
		Topic:      req.Topic,
		Score:      *req.Score,
		Feedback:   strings.TrimSpace(req.Feedback),
		RecordedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record progress")
	}
	return record, nil
}

// List returns a student's progress, most recent first.
func (s *ProgressService) List(ctx context.Context, studentID string) ([]models.ProgressRecord, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	return records, nil
}
