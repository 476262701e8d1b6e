package models

import "time"

// NotificationType groups notifications in the inbox.
type NotificationType string

const (
	NotificationAppointment NotificationType = "appointment"
	NotificationReminder    NotificationType = "reminder"
	NotificationSystem      NotificationType = "system"
)

// Notification is an inbox entry for a user.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	Read      bool             `json:"read"`
}
