package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edubatch-api/internal/models"
)

// PaymentGateway charges a registrant. A real processor can replace the mock
// behind this interface without changing the workflow.
type PaymentGateway interface {
	Charge(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error)
}

// MockPaymentGateway approves every charge after a fixed delay.
type MockPaymentGateway struct {
	delay  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewMockPaymentGateway constructs the mock gateway.
func NewMockPaymentGateway(delay time.Duration, logger *zap.Logger) *MockPaymentGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockPaymentGateway{delay: delay, now: time.Now, logger: logger}
}

// Charge waits for the configured delay and returns a successful response.
// A cancelled context aborts the wait.
func (g *MockPaymentGateway) Charge(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	txn := fmt.Sprintf("TXN_%d", g.now().UnixNano())
	g.logger.Info("mock payment approved",
		zap.String("transaction_id", txn),
		zap.String("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("method", string(req.Method)),
	)
	return &models.PaymentResponse{Success: true, TransactionID: txn}, nil
}
