package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys written to session storage.
const (
	KeyUser       = "user"
	KeyToken      = "token"
	KeyAdminToken = "adminToken"
)

var ErrKeyNotFound = errors.New("session key not found")

// Storage is the per-session key/value store that stands in for browser
// storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Backend hands out the storage of a session.
type Backend interface {
	Storage(sessionID string) Storage
}

// MemoryStorage keeps values in a map. Storage handed out by a
// MemoryBackend expires ttl after its last write, like the redis keys.
type MemoryStorage struct {
	mu      sync.RWMutex
	data    map[string]string
	ttl     time.Duration
	expires time.Time
	now     func() time.Time
	release func(*MemoryStorage)
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string), now: time.Now}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiredLocked(s.now()) {
		return "", ErrKeyNotFound
	}
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	now := s.now()
	if s.expiredLocked(now) {
		s.data = make(map[string]string)
	}
	s.data[key] = value
	if s.ttl > 0 {
		s.expires = now.Add(s.ttl)
	}
	s.mu.Unlock()
	return nil
}

// Remove deletes keys. A backend session left without keys is dropped.
func (s *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.data, k)
	}
	empty := len(s.data) == 0
	s.mu.Unlock()

	if empty && s.release != nil {
		s.release(s)
	}
	return nil
}

func (s *MemoryStorage) expiredLocked(now time.Time) bool {
	return !s.expires.IsZero() && now.After(s.expires)
}

// idle reports whether the storage holds nothing live at now.
func (s *MemoryStorage) idle(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data) == 0 || s.expiredLocked(now)
}

// MemoryBackend keeps one MemoryStorage per session id. Sessions are
// dropped when logged out, or by Sweep once their ttl has passed. A ttl of
// zero keeps sessions until they are emptied.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]*MemoryStorage
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]*MemoryStorage), ttl: ttl, now: time.Now}
}

func (b *MemoryBackend) Storage(sessionID string) Storage {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[sessionID]
	if !ok {
		s = NewMemoryStorage()
		s.ttl = b.ttl
		s.now = b.now
		s.release = func(s *MemoryStorage) { b.drop(sessionID, s) }
		b.sessions[sessionID] = s
	}
	return s
}

func (b *MemoryBackend) drop(sessionID string, s *MemoryStorage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.sessions[sessionID]; ok && cur == s && s.idle(b.now()) {
		delete(b.sessions, sessionID)
	}
}

// Sweep drops sessions that are empty or expired at now and reports how
// many went.
func (b *MemoryBackend) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, s := range b.sessions {
		if s.idle(now) {
			delete(b.sessions, id)
			n++
		}
	}
	return n
}

// Len reports how many sessions are held.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// RedisStorage keeps the keys of one session under a common prefix.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return v, err
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *RedisStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.client.Del(ctx, full...).Err()
}

// RedisBackend stores sessions in redis as <prefix><sessionID>:<key>.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (b *RedisBackend) Storage(sessionID string) Storage {
	return &RedisStorage{client: b.client, prefix: b.prefix + sessionID + ":", ttl: b.ttl}
}
