package booking

import (
	"errors"
	"sync"
	"time"
)

var ErrFlowNotFound = errors.New("booking flow not found")

// FlowStore keeps in-progress flows in memory. A flow is visible only to
// the user who opened it. Flows older than ttl are dropped by Sweep; a ttl
// of zero keeps them until checkout or Discard.
type FlowStore struct {
	mu    sync.Mutex
	flows map[string]*Flow
	ttl   time.Duration
}

func NewFlowStore(ttl time.Duration) *FlowStore {
	return &FlowStore{flows: make(map[string]*Flow), ttl: ttl}
}

func (s *FlowStore) Put(f *Flow) {
	s.mu.Lock()
	cp := *f
	s.flows[f.ID] = &cp
	s.mu.Unlock()
}

func (s *FlowStore) Get(userID, id string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[id]
	if !ok || f.UserID != userID {
		return nil, ErrFlowNotFound
	}
	cp := *f
	return &cp, nil
}

// Update applies fn to the stored flow atomically. The flow is left as it
// was when fn fails.
func (s *FlowStore) Update(userID, id string, fn func(f *Flow) error) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[id]
	if !ok || f.UserID != userID {
		return nil, ErrFlowNotFound
	}
	work := *f
	if err := fn(&work); err != nil {
		return nil, err
	}
	*f = work
	cp := work
	return &cp, nil
}

// Discard drops the flow. Dropping an unknown flow is a no-op.
func (s *FlowStore) Discard(userID, id string) {
	s.mu.Lock()
	if f, ok := s.flows[id]; ok && f.UserID == userID {
		delete(s.flows, id)
	}
	s.mu.Unlock()
}

// Len reports how many flows are open.
func (s *FlowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// Sweep drops flows opened more than ttl before now and reports how many
// went.
func (s *FlowStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, f := range s.flows {
		if f.CreatedAt.Before(cutoff) {
			delete(s.flows, id)
			n++
		}
	}
	return n
}
