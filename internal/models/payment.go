package models

import "time"

// PaymentStatus is the outcome of a charge.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentIntent records a charge made for an appointment.
type PaymentIntent struct {
	ID            string        `json:"id"`
	AppointmentID string        `json:"appointmentId,omitempty"`
	UserID        string        `json:"userId"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// PaymentMethod is a saved way to pay.
type PaymentMethod struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Details   map[string]string `json:"details"`
	IsDefault bool              `json:"isDefault,omitempty"`
}
