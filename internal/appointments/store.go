// Package appointments keeps booked appointments. The store doubles as the
// ledger that tells the slot generator which doctor slots are taken.
package appointments

import (
	"context"
	"errors"
	"sort"
	"sync"

	"doctor-booking-server/internal/models"
)

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrSlotTaken        = errors.New("slot is already booked")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrNotOwner         = errors.New("appointment belongs to another user")
)

// Store persists appointments. Create and Update reject an active
// appointment on a doctor slot that another active appointment holds.
type Store interface {
	Create(ctx context.Context, a *models.Appointment) error
	Get(ctx context.Context, id string) (*models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]models.Appointment, error)
	BookedSlots(ctx context.Context, doctorID string) (map[string]bool, error)
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]models.Appointment)}
}

func (s *MemoryStore) Create(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Active() && s.heldLocked(a.DoctorID, a.SlotID, "") {
		return ErrSlotTaken
	}
	s.items[a.ID] = *a
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) Update(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[a.ID]; !ok {
		return ErrNotFound
	}
	if a.Active() && s.heldLocked(a.DoctorID, a.SlotID, a.ID) {
		return ErrSlotTaken
	}
	s.items[a.ID] = *a
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.Appointment, error) {
	return s.filter(func(a *models.Appointment) bool { return a.UserID == userID }), nil
}

func (s *MemoryStore) ListByDate(_ context.Context, date string) ([]models.Appointment, error) {
	return s.filter(func(a *models.Appointment) bool { return a.Date == date }), nil
}

func (s *MemoryStore) BookedSlots(_ context.Context, doctorID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool)
	for _, a := range s.items {
		if a.DoctorID == doctorID && a.Active() {
			out[a.SlotID] = true
		}
	}
	return out, nil
}

func (s *MemoryStore) heldLocked(doctorID, slotID, exceptID string) bool {
	for id, a := range s.items {
		if id != exceptID && a.DoctorID == doctorID && a.SlotID == slotID && a.Active() {
			return true
		}
	}
	return false
}

func (s *MemoryStore) filter(keep func(*models.Appointment) bool) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Appointment, 0)
	for _, a := range s.items {
		if keep(&a) {
			out = append(out, a)
		}
	}
	sortBySlot(out)
	return out
}

// sortBySlot orders appointments chronologically; slot ids sort by time.
func sortBySlot(list []models.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].SlotID == list[j].SlotID {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].SlotID < list[j].SlotID
	})
}
