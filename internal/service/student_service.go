package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

type studentReader interface {
	Exists(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// StudentService answers roster queries.
type StudentService struct {
	repo      studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.BatchType != "" && !filter.BatchType.Valid() {
		return nil, nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid filter"), map[string]string{"batchType": "unknown batch type"})
	}
	filter = filter.Normalize()
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return students, pagination, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// EmailExists reports whether the email is already registered.
func (s *StudentService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = repository.NormalizeEmail(email)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return false, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid email"), map[string]string{"email": "email must be a valid address"})
	}
	exists, err := s.repo.Exists(ctx, email)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	return exists, nil
}
