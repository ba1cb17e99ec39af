package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/internal/repository"
	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
)

type studentStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type wizardStore interface {
	Save(ctx context.Context, wizard *models.Wizard) error
	Get(ctx context.Context, id string) (*models.Wizard, error)
	Delete(ctx context.Context, id string) error
}

type batchCatalog interface {
	Get(ctx context.Context, batchType models.BatchType) (*models.BatchWithEnrollment, error)
	InvalidateEnrollment(ctx context.Context)
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event RegistrationEvent)
}

// StartRegistrationRequest selects the batch for a new wizard.
type StartRegistrationRequest struct {
	BatchType models.BatchType `json:"batch_type" validate:"required"`
}

// RegistrationService drives the registration wizard:
// confirm batch (1), personal details (2), payment (3), success (4).
//
// The capacity check uses the enrollment snapshot taken when the wizard
// started, so two registrants racing for the last seat can both succeed.
// A charge whose record cannot be stored is reported as an orphaned
// payment and is not refunded.
type RegistrationService struct {
	catalog   batchCatalog
	students  studentStore
	wizards   wizardStore
	gateway   PaymentGateway
	events    eventDispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	currency  string
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// RegistrationServiceParams groups the collaborators of RegistrationService.
type RegistrationServiceParams struct {
	Catalog   batchCatalog
	Students  studentStore
	Wizards   wizardStore
	Gateway   PaymentGateway
	Events    eventDispatcher
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Currency  string
}

// NewRegistrationService constructs the workflow.
func NewRegistrationService(p RegistrationServiceParams) *RegistrationService {
	if p.Validator == nil {
		p.Validator = NewValidator()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Currency == "" {
		p.Currency = "INR"
	}
	return &RegistrationService{
		catalog:   p.Catalog,
		students:  p.Students,
		wizards:   p.Wizards,
		gateway:   p.Gateway,
		events:    p.Events,
		metrics:   p.Metrics,
		validator: p.Validator,
		logger:    p.Logger,
		currency:  p.Currency,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
}

// Start opens a wizard at the confirm-batch step for the selected batch and
// snapshots its enrollment.
func (s *RegistrationService) Start(ctx context.Context, req StartRegistrationRequest) (*models.Wizard, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "please select a batch to continue")
	}
	batch, err := s.catalog.Get(ctx, req.BatchType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	wizard := &models.Wizard{
		ID:        uuid.NewString(),
		Batch:     *batch,
		CreatedAt: now,
	}
	if err := s.save(ctx, wizard, models.StepConfirmBatch); err != nil {
		return nil, err
	}
	s.logger.Debug("registration started", zap.String("wizard_id", wizard.ID), zap.String("batch_type", string(batch.BatchType)))
	return wizard, nil
}

// Get returns the current state of a wizard.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Wizard, error) {
	return s.load(ctx, id)
}

// Continue moves a wizard from confirm-batch to personal details.
func (s *RegistrationService) Continue(ctx context.Context, id string) (*models.Wizard, error) {
	wizard, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if wizard.Submitting {
		return nil, appErrors.ErrSubmissionInFlight
	}
	if wizard.Step != models.StepConfirmBatch {
		return nil, invalidStep(wizard.Step, "continue")
	}
	if err := s.save(ctx, wizard, models.StepPersonalDetails); err != nil {
		return nil, err
	}
	return wizard, nil
}

// Submit runs the registration pipeline from the personal details step. On
// success the wizard jumps straight to the success step.
func (s *RegistrationService) Submit(ctx context.Context, id string, form models.RegistrationForm) (*models.Wizard, error) {
	return s.run(ctx, id, form, false)
}

// Pay moves the wizard to the payment step and runs the same pipeline as
// Submit. A failed attempt leaves the wizard at the payment step so it can
// be retried.
func (s *RegistrationService) Pay(ctx context.Context, id string, form models.RegistrationForm) (*models.Wizard, error) {
	return s.run(ctx, id, form, true)
}

// Abandon discards a wizard. It is the only way back to batch selection.
func (s *RegistrationService) Abandon(ctx context.Context, id string) error {
	if !s.begin(id) {
		return appErrors.ErrSubmissionInFlight
	}
	defer s.end(id)
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.wizards.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to discard registration")
	}
	return nil
}

func (s *RegistrationService) run(ctx context.Context, id string, form models.RegistrationForm, viaPayment bool) (*models.Wizard, error) {
	if !s.begin(id) {
		return nil, appErrors.ErrSubmissionInFlight
	}
	defer s.end(id)

	wizard, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if wizard.Step != models.StepPersonalDetails && wizard.Step != models.StepPayment {
		action := "submit"
		if viaPayment {
			action = "pay"
		}
		return nil, invalidStep(wizard.Step, action)
	}

	wizard.Form = normalizeForm(form)
	step := wizard.Step
	if viaPayment {
		step = models.StepPayment
	}

	started := time.Now()
	studentID, outcome, pipelineErr := s.pipeline(ctx, wizard)
	s.metrics.ObserveRegistration(wizard.Batch.BatchType, outcome, time.Since(started))

	wizard.Submitting = false
	if pipelineErr == nil {
		wizard.StudentID = studentID
		step = models.StepSuccess
	}
	// The wizard is saved even when the pipeline failed so the entered
	// values survive a reload; the save must not mask the pipeline result.
	if err := s.save(context.WithoutCancel(ctx), wizard, step); err != nil {
		if pipelineErr == nil {
			s.logger.Error("registration stored but wizard not updated", zap.String("wizard_id", wizard.ID), zap.Error(err))
		}
	}
	if pipelineErr != nil {
		return nil, pipelineErr
	}
	return wizard, nil
}

// pipeline validates, checks for a duplicate email, checks the capacity
// snapshot, charges and stores the record, stopping at the first failure.
func (s *RegistrationService) pipeline(ctx context.Context, wizard *models.Wizard) (string, string, error) {
	form := wizard.Form
	batch := wizard.Batch

	if err := s.validator.Struct(form); err != nil {
		return "", OutcomeInvalid, validationError(err, "please correct the highlighted fields")
	}

	exists, err := s.students.Exists(ctx, form.Email)
	if err != nil {
		return "", OutcomeError, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return "", OutcomeEmailExists, appErrors.ErrEmailExists
	}

	if batch.IsFull() {
		return "", OutcomeBatchFull, appErrors.ErrBatchFull
	}

	req := models.PaymentRequest{
		Amount:      batch.Price,
		Currency:    s.currency,
		Description: "Registration for " + batch.Name,
		Email:       form.Email,
		Method:      form.PaymentMethod,
	}
	resp, err := s.gateway.Charge(ctx, req)
	approved := err == nil && resp != nil && resp.Success
	s.metrics.ObservePaymentCharge(form.PaymentMethod, approved)
	if !approved {
		cause := err
		if cause == nil && resp != nil && resp.Error != "" {
			cause = errors.New(resp.Error)
		}
		s.logger.Warn("payment declined", zap.String("wizard_id", wizard.ID), zap.Error(cause))
		return "", OutcomePaymentFailed, appErrors.WithCause(appErrors.ErrPaymentFailed, cause)
	}

	student := &models.Student{
		Name:           form.Name,
		Email:          form.Email,
		Phone:          form.Phone,
		BatchType:      batch.BatchType,
		PaymentMethod:  form.PaymentMethod,
		PaymentStatus:  models.PaymentStatusCompleted,
		TransactionID:  resp.TransactionID,
		ReferralSource: models.ReferralDirect,
	}
	event := RegistrationEvent{
		WizardID:      wizard.ID,
		BatchType:     batch.BatchType,
		Name:          form.Name,
		Email:         form.Email,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TransactionID: resp.TransactionID,
	}

	// The charge has been taken; the record is stored even if the caller
	// went away.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.students.Create(persistCtx, student); err != nil {
		event.Type = EventPaymentOrphaned
		event.Error = err.Error()
		s.dispatch(persistCtx, event)
		return "", OutcomeNotSaved, appErrors.WithCause(appErrors.ErrPersistence, err)
	}

	s.catalog.InvalidateEnrollment(persistCtx)
	event.Type = EventRegistrationCompleted
	event.StudentID = student.ID
	s.dispatch(persistCtx, event)
	return student.ID, OutcomeCompleted, nil
}

func (s *RegistrationService) dispatch(ctx context.Context, event RegistrationEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	s.events.Dispatch(ctx, event)
}

func (s *RegistrationService) load(ctx context.Context, id string) (*models.Wizard, error) {
	wizard, err := s.wizards.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWizardNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	wizard.Submitting = s.isInFlight(id)
	return wizard, nil
}

func (s *RegistrationService) save(ctx context.Context, wizard *models.Wizard, step models.WizardStep) error {
	wizard.Step = step
	wizard.StepName = step.String()
	wizard.UpdatedAt = s.now().UTC()
	if err := s.wizards.Save(ctx, wizard); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	return nil
}

func (s *RegistrationService) begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *RegistrationService) end(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *RegistrationService) isInFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[id]
	return busy
}

func invalidStep(step models.WizardStep, action string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrInvalidStep, "cannot "+action+" at step "+step.String())
}

func normalizeForm(form models.RegistrationForm) models.RegistrationForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = repository.NormalizeEmail(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.PaymentMethod = models.PaymentMethod(strings.ToLower(strings.TrimSpace(string(form.PaymentMethod))))
	return form
}
