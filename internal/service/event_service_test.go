package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubatch-api/internal/models"
	"github.com/noah-isme/edubatch-api/pkg/jobs"
)

type publisherStub struct {
	mu        sync.Mutex
	published []string
	payloads  []interface{}
	failures  int
}

func (p *publisherStub) Publish(name string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("nats: no responders")
	}
	p.published = append(p.published, name)
	p.payloads = append(p.payloads, value)
	return nil
}

func (p *publisherStub) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func sampleEvent(kind string) RegistrationEvent {
	return RegistrationEvent{
		Type:          kind,
		WizardID:      "wiz-1",
		StudentID:     "stu-1",
		BatchType:     models.BatchEvening,
		Email:         "asha@example.com",
		TransactionID: "TXN_1",
	}
}

func TestEventServicePublishesDirectlyWithoutQueue(t *testing.T) {
	pub := &publisherStub{}
	svc := NewEventService(pub, nil)

	svc.Dispatch(context.Background(), sampleEvent(EventRegistrationCompleted))

	require.Equal(t, []string{EventRegistrationCompleted}, pub.names())
	event := pub.payloads[0].(RegistrationEvent)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestEventServiceEnqueuesWhenQueueAttached(t *testing.T) {
	pub := &publisherStub{}
	queue := &queueStub{}
	svc := NewEventService(pub, nil)
	svc.AttachQueue(queue)

	svc.Dispatch(context.Background(), sampleEvent(EventPaymentOrphaned))

	assert.Empty(t, pub.names())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, EventPaymentOrphaned, queue.jobs[0].Type)

	require.NoError(t, svc.Handle(context.Background(), queue.jobs[0]))
	assert.Equal(t, []string{EventPaymentOrphaned}, pub.names())
}

func TestEventServiceWithoutPublisherOnlyLogs(t *testing.T) {
	queue := &queueStub{}
	svc := NewEventService(nil, nil)
	svc.AttachQueue(queue)

	svc.Dispatch(context.Background(), sampleEvent(EventRegistrationCompleted))
	assert.Empty(t, queue.jobs)

	var nilSvc *EventService
	nilSvc.Dispatch(context.Background(), sampleEvent(EventRegistrationCompleted))
}

func TestEventServiceHandleRejectsForeignPayload(t *testing.T) {
	svc := NewEventService(&publisherStub{}, nil)
	err := svc.Handle(context.Background(), jobs.Job{ID: "1", Payload: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected payload")
}

func TestEventServiceRetriesThroughQueue(t *testing.T) {
	pub := &publisherStub{failures: 1}
	svc := NewEventService(pub, nil)
	queue := jobs.NewQueue("events", svc.Handle, jobs.QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	queue.Start(context.Background())
	svc.AttachQueue(queue)

	svc.Dispatch(context.Background(), sampleEvent(EventRegistrationCompleted))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, queue.Stop(ctx))
	assert.Equal(t, []string{EventRegistrationCompleted}, pub.names())
}
