// Package notify keeps user inboxes and sends booking confirmations and
// reminders.
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/models"
)

// Channel is a delivery route for a booking confirmation.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// FollowUp is a reminder due for a user at a later date.
type FollowUp struct {
	UserID string    `json:"userId"`
	Due    time.Time `json:"due"`
}

// Notifier fills per-user inboxes and fans confirmations out to channels.
type Notifier struct {
	logger *logrus.Logger
	email  EmailSender
	now    func() time.Time

	mu        sync.Mutex
	inbox     map[string][]models.Notification
	followUps []FollowUp
}

func NewNotifier(email EmailSender, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	return &Notifier{
		logger: logger,
		email:  email,
		now:    time.Now,
		inbox:  make(map[string][]models.Notification),
	}
}

// Send stamps n with an id, creation time and unread state and adds it to
// the user's inbox.
func (n *Notifier) Send(ctx context.Context, userID string, note models.Notification) (models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return models.Notification{}, err
	}
	note.ID = uuid.NewString()
	note.CreatedAt = n.now()
	note.Read = false

	n.mu.Lock()
	n.inbox[userID] = append(n.inbox[userID], note)
	n.mu.Unlock()

	n.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    note.Type,
		"title":   note.Title,
	}).Info("notification sent")
	return note, nil
}

// Inbox returns the user's notifications, newest first.
func (n *Notifier) Inbox(userID string) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.Notification, len(n.inbox[userID]))
	copy(out, n.inbox[userID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Confirm tells the user about a new booking over SMS, email and WhatsApp
// and returns the channels that delivered.
func (n *Notifier) Confirm(ctx context.Context, user *models.User, a *models.Appointment, doctorName string) []Channel {
	text := fmt.Sprintf("Your %s appointment with %s on %s at %s is confirmed.",
		a.ConsultationType, doctorName, a.Date, a.Time)
	log := n.logger.WithFields(logrus.Fields{
		"user_id":        user.ID,
		"appointment_id": a.ID,
	})

	var sent []Channel
	log.WithField("mobile", user.Mobile).Info("confirmation sent via SMS")
	sent = append(sent, ChannelSMS)

	err := n.email.Send(ctx, EmailMessage{
		To:      user.Email,
		ToName:  user.Name,
		Subject: "Appointment confirmed",
		Body:    text,
	})
	if err != nil {
		log.WithError(err).Warn("email confirmation failed")
	} else {
		sent = append(sent, ChannelEmail)
	}

	log.WithField("mobile", user.Mobile).Info("confirmation sent via WhatsApp")
	sent = append(sent, ChannelWhatsApp)

	if _, err := n.Send(ctx, user.ID, models.Notification{
		Type:    models.NotificationAppointment,
		Title:   "Appointment confirmed",
		Message: text,
	}); err != nil {
		log.WithError(err).Warn("inbox confirmation failed")
	}
	return sent
}

// AppointmentReminder reminds the appointment's user of the upcoming visit.
func (n *Notifier) AppointmentReminder(ctx context.Context, a *models.Appointment) error {
	_, err := n.Send(ctx, a.UserID, models.Notification{
		Type:    models.NotificationReminder,
		Title:   "Upcoming appointment",
		Message: fmt.Sprintf("Reminder: your appointment is on %s at %s.", a.Date, a.Time),
	})
	if err != nil {
		return fmt.Errorf("remind appointment %s: %w", a.ID, err)
	}
	return nil
}

// ScheduleFollowUp queues a follow-up reminder for the user days from now.
func (n *Notifier) ScheduleFollowUp(userID string, days int) FollowUp {
	f := FollowUp{UserID: userID, Due: n.now().AddDate(0, 0, days)}
	n.mu.Lock()
	n.followUps = append(n.followUps, f)
	n.mu.Unlock()

	n.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"days":    days,
	}).Info("follow-up reminder scheduled")
	return f
}

// DeliverFollowUps sends every follow-up due by now and reports how many
// went out.
func (n *Notifier) DeliverFollowUps(ctx context.Context, now time.Time) int {
	n.mu.Lock()
	var due []FollowUp
	pending := n.followUps[:0]
	for _, f := range n.followUps {
		if f.Due.After(now) {
			pending = append(pending, f)
		} else {
			due = append(due, f)
		}
	}
	n.followUps = pending
	n.mu.Unlock()

	for _, f := range due {
		if _, err := n.Send(ctx, f.UserID, models.Notification{
			Type:    models.NotificationSystem,
			Title:   "How are you feeling?",
			Message: "It's time for your follow-up. Book a visit if you need one.",
		}); err != nil {
			n.logger.WithError(err).WithField("user_id", f.UserID).Warn("follow-up delivery failed")
		}
	}
	return len(due)
}
