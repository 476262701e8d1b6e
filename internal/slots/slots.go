// Package slots generates the bookable half-hour slots of a doctor over a
// rolling window of days.
package slots

import (
	"fmt"
	"time"

	"doctor-booking-server/internal/models"
)

const (
	// DefaultDaysAhead is the lookahead window used when none is given.
	DefaultDaysAhead = 14

	DateLayout = "2006-01-02"
	TimeLayout = "03:04 PM"
	idLayout   = "2006-01-02-15-04"
	idPrefix   = "slot-"
)

var (
	// Hours are the hourly buckets a doctor sees patients in.
	Hours = []int{9, 10, 11, 14, 15, 16, 17}
	// Minutes are the sub-slots of every hourly bucket.
	Minutes = []int{0, 30}
)

// BookedFunc reports whether a slot id is already taken.
type BookedFunc func(slotID string) bool

// PerDay is the number of slots generated for one day.
func PerDay() int {
	return len(Hours) * len(Minutes)
}

// Generate returns every slot in the window starting on the calendar day of
// now, ordered by day, hour and minute. The booked flag is taken from
// booked; a nil booked marks every slot free.
func Generate(now time.Time, daysAhead int, booked BookedFunc) []models.TimeSlot {
	if daysAhead <= 0 {
		daysAhead = DefaultDaysAhead
	}

	today := startOfDay(now)
	out := make([]models.TimeSlot, 0, daysAhead*PerDay())
	for day := 0; day < daysAhead; day++ {
		date := today.AddDate(0, 0, day)
		for _, hour := range Hours {
			for _, minute := range Minutes {
				start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
				slot := models.TimeSlot{
					ID:   ID(start),
					Date: start.Format(DateLayout),
					Time: start.Format(TimeLayout),
				}
				if booked != nil {
					slot.IsBooked = booked(slot.ID)
				}
				out = append(out, slot)
			}
		}
	}
	return out
}

// ID builds the slot id for a start time.
func ID(start time.Time) string {
	return idPrefix + start.Format(idLayout)
}

// ParseID recovers the start time encoded in a slot id.
func ParseID(id string, loc *time.Location) (time.Time, error) {
	if len(id) <= len(idPrefix) || id[:len(idPrefix)] != idPrefix {
		return time.Time{}, fmt.Errorf("invalid slot id %q", id)
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(idLayout, id[len(idPrefix):], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot id %q: %w", id, err)
	}
	return t, nil
}

// ForDate returns the slots whose date is the calendar day of day.
func ForDate(all []models.TimeSlot, day time.Time) []models.TimeSlot {
	return OnDate(all, day.Format(DateLayout))
}

// OnDate returns the slots whose date equals the given YYYY-MM-DD string.
func OnDate(all []models.TimeSlot, date string) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, PerDay())
	for _, s := range all {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out
}

// Available returns the free slots on the calendar day of day.
func Available(all []models.TimeSlot, day time.Time) []models.TimeSlot {
	out := ForDate(all, day)
	free := out[:0]
	for _, s := range out {
		if !s.IsBooked {
			free = append(free, s)
		}
	}
	return free
}

// Dates returns the distinct slot dates in the order they first appear.
func Dates(all []models.TimeSlot) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range all {
		if _, ok := seen[s.Date]; ok {
			continue
		}
		seen[s.Date] = struct{}{}
		out = append(out, s.Date)
	}
	return out
}

// Lookup finds a slot by id.
func Lookup(all []models.TimeSlot, id string) (models.TimeSlot, bool) {
	for _, s := range all {
		if s.ID == id {
			return s, true
		}
	}
	return models.TimeSlot{}, false
}

// Mark returns a copy of all with the booked flag recomputed from booked.
func Mark(all []models.TimeSlot, booked BookedFunc) []models.TimeSlot {
	out := make([]models.TimeSlot, len(all))
	copy(out, all)
	for i := range out {
		out[i].IsBooked = booked != nil && booked(out[i].ID)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
