package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/pkg/jobs"
)

// Registration event names.
const (
	EventRegistrationCompleted = "registration.completed"
	EventPaymentOrphaned       = "payment.orphaned"
)

// RegistrationEvent describes a completed registration or a charge that
// could not be matched to a stored record.
type RegistrationEvent struct {
	Type          string           `json:"type"`
	WizardID      string           `json:"wizard_id"`
	StudentID     string           `json:"student_id,omitempty"`
	BatchType     models.BatchType `json:"batch_type"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Amount        string           `json:"amount"`
	Currency      string           `json:"currency"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Error         string           `json:"error,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

type eventPublisher interface {
	Publish(name string, value interface{}) error
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

// EventService logs registration events and forwards them to the message
// bus, asynchronously when a queue is attached.
type EventService struct {
	publisher eventPublisher
	queue     jobQueue
	logger    *zap.Logger
}

// NewEventService constructs the service. publisher may be nil, in which
// case events are only logged.
func NewEventService(publisher eventPublisher, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{publisher: publisher, logger: logger}
}

// AttachQueue routes publication through queue.
func (s *EventService) AttachQueue(queue jobQueue) {
	s.queue = queue
}

// Dispatch records the event and schedules its publication.
func (s *EventService) Dispatch(ctx context.Context, event RegistrationEvent) {
	if s == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	fields := []zap.Field{
		zap.String("event", event.Type),
		zap.String("wizard_id", event.WizardID),
		zap.String("batch_type", string(event.BatchType)),
		zap.String("email", event.Email),
		zap.String("transaction_id", event.TransactionID),
	}
	if event.Type == EventPaymentOrphaned {
		s.logger.Error("payment taken without a stored registration", append(fields, zap.String("error", event.Error))...)
	} else {
		s.logger.Info("registration event", append(fields, zap.String("student_id", event.StudentID))...)
	}

	if s.publisher == nil {
		return
	}
	if s.queue == nil {
		if err := s.publish(event); err != nil {
			s.logger.Warn("event not published", zap.String("event", event.Type), zap.Error(err))
		}
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: event.Type, Payload: event}); err != nil {
		s.logger.Warn("event not queued", zap.String("event", event.Type), zap.Error(err))
	}
}

// Handle is the queue handler that publishes a queued event.
func (s *EventService) Handle(_ context.Context, job jobs.Job) error {
	event, ok := job.Payload.(RegistrationEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	return s.publish(event)
}

func (s *EventService) publish(event RegistrationEvent) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Publish(event.Type, event)
}
