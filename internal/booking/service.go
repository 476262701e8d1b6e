package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/appointments"
	"doctor-booking-server/internal/metrics"
	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/notify"
	"doctor-booking-server/internal/payment"
)

var ErrNotAuthenticated = errors.New("sign in to book an appointment")

// Doctors looks up doctors and their live slots.
type Doctors interface {
	Doctor(ctx context.Context, id string) (*models.Doctor, error)
	Slot(ctx context.Context, doctorID, slotID string) (models.TimeSlot, error)
}

// Ledger records appointments and answers first-time checks.
type Ledger interface {
	HasHistory(ctx context.Context, userID string) (bool, error)
	Book(ctx context.Context, a *models.Appointment) error
}

// Confirmer tells the user a booking went through.
type Confirmer interface {
	Confirm(ctx context.Context, user *models.User, a *models.Appointment, doctorName string) []notify.Channel
}

// Quote is a fee preview outside any flow.
type Quote struct {
	DoctorID         string                  `json:"doctorId"`
	ConsultationType models.ConsultationType `json:"consultationType"`
	BaseFee          int64                   `json:"baseFee"`
	FirstTime        bool                    `json:"firstTime"`
	Insured          bool                    `json:"insured"`
	Fee              int64                   `json:"feeMinor"`
	Currency         string                  `json:"currency"`
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	Appointment *models.Appointment   `json:"appointment"`
	Payment     *models.PaymentIntent `json:"payment"`
	Channels    []notify.Channel      `json:"confirmations"`
}

// Service runs booking flows end to end.
type Service struct {
	flows     *FlowStore
	doctors   Doctors
	ledger    Ledger
	payments  payment.Provider
	confirmer Confirmer
	currency  string
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(flows *FlowStore, doctors Doctors, ledger Ledger, payments payment.Provider, confirmer Confirmer, currency string, logger *logrus.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		flows:     flows,
		doctors:   doctors,
		ledger:    ledger,
		payments:  payments,
		confirmer: confirmer,
		currency:  currency,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Start opens a flow with the doctor for the user.
func (s *Service) Start(ctx context.Context, user *models.User, doctorID string) (*Flow, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	doctor, err := s.doctors.Doctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	firstTime, err := s.firstTime(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	f := NewFlow(uuid.NewString(), user.ID, doctor, firstTime, s.now())
	s.flows.Put(f)
	return f, nil
}

func (s *Service) Get(_ context.Context, user *models.User, id string) (*Flow, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return s.flows.Get(user.ID, id)
}

func (s *Service) SelectType(_ context.Context, user *models.User, id string, t models.ConsultationType) (*Flow, error) {
	return s.update(user, id, func(f *Flow) error { return f.SelectType(t) })
}

// SelectSlot picks a slot of the flow's doctor by id, using its current
// booking state.
func (s *Service) SelectSlot(ctx context.Context, user *models.User, id, slotID string) (*Flow, error) {
	f, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	slot, err := s.doctors.Slot(ctx, f.DoctorID, slotID)
	if err != nil {
		return nil, err
	}
	return s.update(user, id, func(f *Flow) error { return f.SelectSlot(slot) })
}

func (s *Service) SetInsurance(_ context.Context, user *models.User, id string, in Insurance) (*Flow, error) {
	return s.update(user, id, func(f *Flow) error {
		f.SetInsurance(in)
		return nil
	})
}

func (s *Service) Next(_ context.Context, user *models.User, id string) (*Flow, error) {
	return s.update(user, id, func(f *Flow) error { return f.Next() })
}

func (s *Service) Back(_ context.Context, user *models.User, id string) (*Flow, error) {
	return s.update(user, id, func(f *Flow) error {
		f.Back()
		return nil
	})
}

// Discard closes the flow without booking.
func (s *Service) Discard(_ context.Context, user *models.User, id string) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	s.flows.Discard(user.ID, id)
	return nil
}

// Quote prices a consultation with the doctor for the user.
func (s *Service) Quote(ctx context.Context, user *models.User, doctorID string, t models.ConsultationType, insured bool) (*Quote, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	doctor, err := s.doctors.Doctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	firstTime, err := s.firstTime(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Quote{
		DoctorID:         doctorID,
		ConsultationType: t,
		BaseFee:          doctor.ConsultationFee,
		FirstTime:        firstTime,
		Insured:          insured,
		Fee:              ComputeFee(doctor.ConsultationFee, t, firstTime, insured),
		Currency:         s.currency,
	}, nil
}

// Checkout charges the flow's fee, books the slot and sends confirmations.
// The flow must be at the payment step.
func (s *Service) Checkout(ctx context.Context, user *models.User, id, notes string) (*Receipt, error) {
	start := s.now()
	f, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if f.Step != StepPayment {
		return nil, fmt.Errorf("%w: checkout happens at the %s step", ErrWrongStep, StepPayment)
	}
	if f.Slot == nil {
		return nil, ErrSlotRequired
	}

	slot, err := s.doctors.Slot(ctx, f.DoctorID, f.Slot.ID)
	if err != nil {
		return nil, err
	}
	if slot.IsBooked {
		return nil, appointments.ErrSlotTaken
	}

	// an earlier flow may have been checked out since this one started
	firstTime, err := s.firstTime(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if firstTime != f.FirstTime {
		f, err = s.update(user, id, func(f *Flow) error {
			f.SetFirstTime(firstTime)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	appt := &models.Appointment{
		BaseModel:        models.BaseModel{ID: uuid.NewString()},
		UserID:           user.ID,
		DoctorID:         f.DoctorID,
		SlotID:           slot.ID,
		Date:             slot.Date,
		Time:             slot.Time,
		ConsultationType: f.ConsultationType,
		Fee:              f.Fee,
		Notes:            notes,
	}

	intent, err := s.payments.Charge(ctx, payment.Charge{
		UserID:        user.ID,
		AppointmentID: appt.ID,
		Amount:        f.Fee,
		Currency:      s.currency,
	})
	if err != nil {
		s.metrics.ObservePayment(string(models.PaymentFailed))
		return nil, fmt.Errorf("payment for flow %s: %w", id, err)
	}
	s.metrics.ObservePayment(string(intent.Status))
	appt.PaymentID = intent.ID

	if err := s.ledger.Book(ctx, appt); err != nil {
		s.logger.WithFields(logrus.Fields{
			"flow_id":    id,
			"payment_id": intent.ID,
		}).WithError(err).Error("payment captured but booking failed")
		return nil, err
	}

	s.flows.Discard(user.ID, id)
	channels := s.confirmer.Confirm(ctx, user, appt, f.DoctorName)
	s.metrics.ObserveCheckoutLatency(s.now().Sub(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"flow_id":        id,
		"appointment_id": appt.ID,
		"fee_minor":      appt.Fee,
	}).Info("booking checked out")
	return &Receipt{Appointment: appt, Payment: intent, Channels: channels}, nil
}

func (s *Service) update(user *models.User, id string, fn func(f *Flow) error) (*Flow, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return s.flows.Update(user.ID, id, fn)
}

func (s *Service) firstTime(ctx context.Context, userID string) (bool, error) {
	seen, err := s.ledger.HasHistory(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check booking history: %w", err)
	}
	return !seen, nil
}
