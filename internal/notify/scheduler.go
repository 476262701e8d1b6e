package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/slots"
)

// AppointmentSource lists the appointments on a YYYY-MM-DD date.
type AppointmentSource interface {
	OnDate(ctx context.Context, date string) ([]models.Appointment, error)
}

// Refresher moves the bookable slot window forward.
type Refresher interface {
	Refresh(now time.Time)
}

// Sweeper drops in-memory state that outlived its lifetime and reports how
// many entries went.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler runs the daily reminder job and the periodic sweeps.
type Scheduler struct {
	cron         *cron.Cron
	notifier     *Notifier
	appointments AppointmentSource
	catalog      Refresher
	logger       *logrus.Logger
	now          func() time.Time
}

func NewScheduler(spec string, n *Notifier, appointments AppointmentSource, catalog Refresher, logger *logrus.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Scheduler{
		cron:         cron.New(),
		notifier:     n,
		appointments: appointments,
		catalog:      catalog,
		logger:       logger,
		now:          time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.RunDaily); err != nil {
		return nil, fmt.Errorf("schedule reminder job %q: %w", spec, err)
	}
	return s, nil
}

// AddSweeper runs sw every interval.
func (s *Scheduler) AddSweeper(name string, interval time.Duration, sw Sweeper) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %s sweep: interval must be positive, got %s", name, interval)
	}
	spec := "@every " + interval.String()
	_, err := s.cron.AddFunc(spec, func() { s.RunSweep(name, sw) })
	if err != nil {
		return fmt.Errorf("schedule %s sweep %q: %w", name, spec, err)
	}
	return nil
}

// RunSweep runs one pass of sw.
func (s *Scheduler) RunSweep(name string, sw Sweeper) int {
	n := sw.Sweep(s.now())
	if n > 0 {
		s.logger.WithFields(logrus.Fields{
			"sweep":   name,
			"dropped": n,
		}).Info("expired entries dropped")
	}
	return n
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("reminder scheduler started")
}

// Stop halts the scheduler; the returned context is done once a running
// job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunDaily sends tomorrow's reminders, delivers due follow-ups and
// refreshes the slot window.
func (s *Scheduler) RunDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := s.now()
	sent, err := s.SendReminders(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("sending appointment reminders failed")
	}
	followUps := s.notifier.DeliverFollowUps(ctx, now)
	if s.catalog != nil {
		s.catalog.Refresh(now)
	}

	s.logger.WithFields(logrus.Fields{
		"reminders":  sent,
		"follow_ups": followUps,
	}).Info("daily notification job finished")
}

// SendReminders reminds every user with an active appointment on the day
// after now.
func (s *Scheduler) SendReminders(ctx context.Context, now time.Time) (int, error) {
	tomorrow := now.AddDate(0, 0, 1).Format(slots.DateLayout)
	list, err := s.appointments.OnDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("list appointments on %s: %w", tomorrow, err)
	}

	sent := 0
	for i := range list {
		a := &list[i]
		if !a.Active() {
			continue
		}
		if err := s.notifier.AppointmentReminder(ctx, a); err != nil {
			s.logger.WithError(err).WithField("appointment_id", a.ID).Warn("reminder failed")
			continue
		}
		sent++
	}
	return sent, nil
}
