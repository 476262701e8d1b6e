// Package catalog serves the static doctor list decorated with generated
// slots.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"doctor-booking-server/internal/models"
	"doctor-booking-server/internal/slots"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrSlotNotFound   = errors.New("slot not found")
)

// Ledger reports which slots of a doctor are taken.
type Ledger interface {
	Booked(ctx context.Context, doctorID string) (map[string]bool, error)
}

const (
	SortByRating     = "rating"
	SortByExperience = "experience"
)

// Query filters and orders the doctor listing.
type Query struct {
	Search    string
	Specialty string
	SortBy    string
}

// Catalog holds the doctors and their slot lists. Slots are generated once
// at construction and again only on Refresh; booking flags are read from
// the ledger on every lookup.
type Catalog struct {
	mu          sync.RWMutex
	doctors     []models.Doctor
	daysAhead   int
	ledger      Ledger
	generatedAt time.Time
}

func New(now time.Time, daysAhead int, ledger Ledger) *Catalog {
	c := &Catalog{daysAhead: daysAhead, ledger: ledger}
	c.Refresh(now)
	return c
}

// Refresh regenerates every doctor's slots for the window starting at now.
func (c *Catalog) Refresh(now time.Time) {
	doctors := seed()
	for i := range doctors {
		doctors[i].AvailableSlots = slots.Generate(now, c.daysAhead, nil)
	}

	c.mu.Lock()
	c.doctors = doctors
	c.generatedAt = now
	c.mu.Unlock()
}

// GeneratedAt is the time the slot lists were generated for.
func (c *Catalog) GeneratedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generatedAt
}

// Specialties lists the specialties a doctor can have.
func Specialties() []string {
	out := make([]string, len(specialties))
	copy(out, specialties)
	return out
}

// Doctor returns a doctor with current booking flags.
func (c *Catalog) Doctor(ctx context.Context, id string) (*models.Doctor, error) {
	c.mu.RLock()
	var found *models.Doctor
	for i := range c.doctors {
		if c.doctors[i].ID == id {
			d := c.doctors[i]
			found = &d
			break
		}
	}
	c.mu.RUnlock()

	if found == nil {
		return nil, ErrDoctorNotFound
	}
	if err := c.decorate(ctx, found); err != nil {
		return nil, err
	}
	return found, nil
}

// Doctors returns the doctors matching q with current booking flags.
func (c *Catalog) Doctors(ctx context.Context, q Query) ([]models.Doctor, error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	c.mu.RLock()
	out := make([]models.Doctor, 0, len(c.doctors))
	for _, d := range c.doctors {
		if search != "" && !strings.Contains(strings.ToLower(d.Name), search) {
			continue
		}
		if q.Specialty != "" && d.Specialty != q.Specialty {
			continue
		}
		out = append(out, d)
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if q.SortBy == SortByExperience {
			return out[i].Experience > out[j].Experience
		}
		return out[i].Rating > out[j].Rating
	})

	for i := range out {
		if err := c.decorate(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Slot returns one slot of a doctor with its current booking flag.
func (c *Catalog) Slot(ctx context.Context, doctorID, slotID string) (models.TimeSlot, error) {
	d, err := c.Doctor(ctx, doctorID)
	if err != nil {
		return models.TimeSlot{}, err
	}
	s, ok := slots.Lookup(d.AvailableSlots, slotID)
	if !ok {
		return models.TimeSlot{}, ErrSlotNotFound
	}
	return s, nil
}

func (c *Catalog) decorate(ctx context.Context, d *models.Doctor) error {
	if c.ledger == nil {
		d.AvailableSlots = slots.Mark(d.AvailableSlots, nil)
		return nil
	}
	booked, err := c.ledger.Booked(ctx, d.ID)
	if err != nil {
		return err
	}
	d.AvailableSlots = slots.Mark(d.AvailableSlots, func(id string) bool { return booked[id] })
	return nil
}
