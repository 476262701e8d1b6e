package chat

import (
	"context"
	"errors"
	"sort"
	"sync"

	"doctor-booking-server/internal/models"
)

var (
	ErrThreadNotFound  = errors.New("chat thread not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Repository stores threads and messages by key.
type Repository interface {
	GetThread(ctx context.Context, id string) (*models.ChatThread, error)
	SaveThread(ctx context.Context, t *models.ChatThread) error
	DeleteThread(ctx context.Context, id string) error
	ThreadsFor(ctx context.Context, userID string) ([]models.ChatThread, error)

	AddMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	UpdateMessage(ctx context.Context, m *models.Message) error
	DeleteMessage(ctx context.Context, id string) error
	MessagesIn(ctx context.Context, threadID string) ([]models.Message, error)
	DeleteMessagesIn(ctx context.Context, threadID string) error
}

// MemoryRepository keeps threads and messages in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	threads  map[string]models.ChatThread
	messages []models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{threads: make(map[string]models.ChatThread)}
}

func (r *MemoryRepository) GetThread(_ context.Context, id string) (*models.ChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) SaveThread(_ context.Context, t *models.ChatThread) error {
	r.mu.Lock()
	r.threads[t.ID] = *t
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) DeleteThread(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[id]; !ok {
		return ErrThreadNotFound
	}
	delete(r.threads, id)
	return nil
}

func (r *MemoryRepository) ThreadsFor(_ context.Context, userID string) ([]models.ChatThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ChatThread, 0)
	for _, t := range r.threads {
		if t.Involves(userID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepository) AddMessage(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	r.messages = append(r.messages, *m)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) GetMessage(_ context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (r *MemoryRepository) UpdateMessage(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == m.ID {
			r.messages[i] = *m
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *MemoryRepository) DeleteMessage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *MemoryRepository) MessagesIn(_ context.Context, threadID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryRepository) DeleteMessagesIn(_ context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ThreadID != threadID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}
