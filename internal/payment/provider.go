// Package payment charges consultation fees. Only a mock provider exists;
// a real gateway plugs in behind Provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/models"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// Charge is a request to collect an amount from a user.
type Charge struct {
	UserID        string
	AppointmentID string
	Amount        int64
	Currency      string
}

// Provider collects payments and lists saved payment methods.
type Provider interface {
	Charge(ctx context.Context, c Charge) (*models.PaymentIntent, error)
	Methods(ctx context.Context, userID string) ([]models.PaymentMethod, error)
}

// MockProvider resolves every charge successfully after a fixed delay.
type MockProvider struct {
	delay  time.Duration
	logger *logrus.Logger
	now    func() time.Time

	mu      sync.Mutex
	intents []models.PaymentIntent
}

func NewMockProvider(delay time.Duration, logger *logrus.Logger) *MockProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MockProvider{delay: delay, logger: logger, now: time.Now}
}

func (p *MockProvider) Charge(ctx context.Context, c Charge) (*models.PaymentIntent, error) {
	if c.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("payment aborted: %w", ctx.Err())
	case <-timer.C:
	}

	now := p.now()
	intent := models.PaymentIntent{
		ID:            fmt.Sprintf("mock_payment_%d", now.UnixMilli()),
		AppointmentID: c.AppointmentID,
		UserID:        c.UserID,
		Amount:        c.Amount,
		Currency:      c.Currency,
		Status:        models.PaymentSucceeded,
		CreatedAt:     now,
	}

	p.mu.Lock()
	p.intents = append(p.intents, intent)
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"payment_id": intent.ID,
		"user_id":    c.UserID,
		"amount":     c.Amount,
		"currency":   c.Currency,
	}).Info("mock payment succeeded")
	return &intent, nil
}

// Methods returns the canned saved methods every user has.
func (p *MockProvider) Methods(_ context.Context, _ string) ([]models.PaymentMethod, error) {
	return []models.PaymentMethod{
		{ID: "1", Type: "card", Details: map[string]string{"brand": "visa", "last4": "4242"}, IsDefault: true},
		{ID: "2", Type: "upi", Details: map[string]string{"id": "user@upi"}},
		{ID: "3", Type: "netbanking", Details: map[string]string{"bankName": "HDFC Bank"}},
	}, nil
}

// Intents returns the charges made so far.
func (p *MockProvider) Intents() []models.PaymentIntent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PaymentIntent, len(p.intents))
	copy(out, p.intents)
	return out
}
