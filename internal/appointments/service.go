package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/metrics"
	"doctor-booking-server/internal/models"
)

// Service books, cancels and reschedules appointments.
type Service struct {
	store   Store
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store Store, logger *logrus.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{store: store, logger: logger, metrics: m, now: time.Now}
}

// Booked reports the taken slot ids of a doctor.
func (s *Service) Booked(ctx context.Context, doctorID string) (map[string]bool, error) {
	return s.store.BookedSlots(ctx, doctorID)
}

// Book records a confirmed appointment for the slot.
func (s *Service) Book(ctx context.Context, a *models.Appointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Status = models.StatusConfirmed

	if err := s.store.Create(ctx, a); err != nil {
		return fmt.Errorf("book slot %s with doctor %s: %w", a.SlotID, a.DoctorID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"appointment_id": a.ID,
		"user_id":        a.UserID,
		"doctor_id":      a.DoctorID,
		"slot_id":        a.SlotID,
	}).Info("appointment booked")
	s.metrics.ObserveBooking(string(a.ConsultationType))
	return nil
}

// List returns the user's appointments in slot order.
func (s *Service) List(ctx context.Context, userID string) ([]models.Appointment, error) {
	return s.store.ListByUser(ctx, userID)
}

// OnDate returns every appointment on a YYYY-MM-DD date.
func (s *Service) OnDate(ctx context.Context, date string) ([]models.Appointment, error) {
	return s.store.ListByDate(ctx, date)
}

// HasHistory reports whether the user has ever held a non-cancelled appointment.
func (s *Service) HasHistory(ctx context.Context, userID string) (bool, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a.Active() {
			return true, nil
		}
	}
	return false, nil
}

// Get returns an appointment owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Appointment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotOwner
	}
	return a, nil
}

// Cancel marks the appointment cancelled and releases its slot.
func (s *Service) Cancel(ctx context.Context, userID, id string) (*models.Appointment, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !a.Active() {
		return nil, ErrAlreadyCancelled
	}

	a.Status = models.StatusCancelled
	a.UpdatedAt = s.now()
	if err := s.store.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("cancel appointment %s: %w", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"appointment_id": a.ID,
		"user_id":        userID,
	}).Info("appointment cancelled")
	s.metrics.ObserveCancellation()
	return a, nil
}

// Reschedule moves the appointment to another slot of the same doctor and
// confirms it again.
func (s *Service) Reschedule(ctx context.Context, userID, id string, slot models.TimeSlot) (*models.Appointment, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !a.Active() {
		return nil, ErrAlreadyCancelled
	}
	if slot.IsBooked && slot.ID != a.SlotID {
		return nil, ErrSlotTaken
	}

	previous := a.SlotID
	a.SlotID = slot.ID
	a.Date = slot.Date
	a.Time = slot.Time
	a.Status = models.StatusConfirmed
	a.UpdatedAt = s.now()
	if err := s.store.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("reschedule appointment %s: %w", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"appointment_id": a.ID,
		"from_slot":      previous,
		"to_slot":        slot.ID,
	}).Info("appointment rescheduled")
	s.metrics.ObserveReschedule()
	return a, nil
}
