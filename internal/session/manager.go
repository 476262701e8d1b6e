package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"doctor-booking-server/internal/utils"
)

var ErrInvalidAdminCredentials = errors.New("invalid admin credentials")

// Manager creates sessions and resumes them from their tokens.
type Manager struct {
	backend Backend
	secret  string
	ttl     time.Duration
}

func NewManager(backend Backend, secret string, ttl time.Duration) *Manager {
	return &Manager{backend: backend, secret: secret, ttl: ttl}
}

// Start opens a new, signed-out session with a fresh token.
func (m *Manager) Start() (*Session, error) {
	id := uuid.NewString()
	token, err := utils.GenerateToken(id, m.secret, m.ttl)
	if err != nil {
		return nil, err
	}
	return New(id, token, m.backend.Storage(id)), nil
}

// Resume returns the session a token was issued for. The token must be
// well formed; whether the session is signed in is up to the caller.
func (m *Manager) Resume(token string) (*Session, error) {
	claims, err := utils.ValidateToken(token, m.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	return New(claims.SessionID, token, m.backend.Storage(claims.SessionID)), nil
}

// AdminLogin opens the admin gate of s when the credentials match.
// An empty passwordHash disables admin login.
func AdminLogin(ctx context.Context, s *Session, wantUser, passwordHash, username, password string) error {
	if passwordHash == "" || username != wantUser {
		return ErrInvalidAdminCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return ErrInvalidAdminCredentials
	}
	return s.GrantAdmin(ctx)
}
