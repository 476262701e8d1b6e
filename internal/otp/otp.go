// Package otp is a stand-in for an SMS one-time-password service.
package otp

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CodeLength is the length of a valid code.
const CodeLength = 6

// Sender sends and verifies one-time passwords.
type Sender interface {
	Send(ctx context.Context, mobile string) (bool, error)
	Verify(ctx context.Context, mobile, code string) (bool, error)
}

// MockSender accepts any code of CodeLength characters after a fixed delay.
type MockSender struct {
	delay  time.Duration
	logger *logrus.Logger
}

func NewMockSender(delay time.Duration, logger *logrus.Logger) *MockSender {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MockSender{delay: delay, logger: logger}
}

func (s *MockSender) Send(ctx context.Context, mobile string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	s.logger.WithField("mobile", mobile).Info("mock otp sent")
	return true, nil
}

func (s *MockSender) Verify(ctx context.Context, mobile, code string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	return len(code) == CodeLength, nil
}

func (s *MockSender) wait(ctx context.Context) error {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
