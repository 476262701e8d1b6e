// Package session keeps the signed-in user, the session token and the
// admin gate in a pluggable key/value storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"doctor-booking-server/internal/models"
)

var ErrNotAuthenticated = errors.New("user not authenticated")

const (
	mockName   = "John Doe"
	mockMobile = "+1234567890"
)

// Session is one client's view of its storage. Token is the value written
// under KeyToken on sign-in.
type Session struct {
	ID      string
	Token   string
	storage Storage
}

func New(id, token string, storage Storage) *Session {
	return &Session{ID: id, Token: token, storage: storage}
}

// UserIDFor derives a stable user id from an email address so a returning
// user keeps their appointments and chats.
func UserIDFor(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email)))).String()
}

// Login always succeeds and fabricates a profile for email.
func (s *Session) Login(ctx context.Context, email, _ string) (*models.User, error) {
	user := &models.User{
		ID:        UserIDFor(email),
		Name:      mockName,
		Email:     email,
		Mobile:    mockMobile,
		Favorites: []string{},
	}
	if err := s.signIn(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignUp always succeeds and stores the given profile.
func (s *Session) SignUp(ctx context.Context, name, email, mobile, _ string) (*models.User, error) {
	user := &models.User{
		ID:        UserIDFor(email),
		Name:      name,
		Email:     email,
		Mobile:    mobile,
		Favorites: []string{},
	}
	if err := s.signIn(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Session) signIn(ctx context.Context, user *models.User) error {
	if err := s.saveUser(ctx, user); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, KeyToken, s.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// User returns the stored profile.
func (s *Session) User(ctx context.Context) (*models.User, error) {
	raw, err := s.storage.Get(ctx, KeyUser)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
		if err := s.saveUser(ctx, &user); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// UpdateUser merges patch into the stored profile. Favorites are kept when
// the patch has none.
func (s *Session) UpdateUser(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	user, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Mobile != nil {
		user.Mobile = *patch.Mobile
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Favorites != nil {
		user.Favorites = patch.Favorites
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout removes the profile and the token.
func (s *Session) Logout(ctx context.Context) error {
	return s.storage.Remove(ctx, KeyUser, KeyToken)
}

// IsAuthenticated reports whether a token is stored.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.storage.Get(ctx, KeyToken)
	return err == nil && token != ""
}

// ToggleFavorite adds or removes a doctor from the favorites and returns
// whether the doctor is liked afterwards.
func (s *Session) ToggleFavorite(ctx context.Context, doctorID string) (bool, error) {
	user, err := s.User(ctx)
	if err != nil {
		return false, err
	}

	liked := user.HasFavorite(doctorID)
	updated := make([]string, 0, len(user.Favorites)+1)
	for _, id := range user.Favorites {
		if id != doctorID {
			updated = append(updated, id)
		}
	}
	if !liked {
		updated = append(updated, doctorID)
	}

	if _, err := s.UpdateUser(ctx, models.UserPatch{Favorites: updated}); err != nil {
		return liked, err
	}
	return !liked, nil
}

// IsLiked reports whether the doctor is a favorite. Signed-out sessions
// like nothing.
func (s *Session) IsLiked(ctx context.Context, doctorID string) bool {
	user, err := s.User(ctx)
	if err != nil {
		return false
	}
	return user.HasFavorite(doctorID)
}

// GrantAdmin opens the admin gate for this session.
func (s *Session) GrantAdmin(ctx context.Context) error {
	return s.storage.Set(ctx, KeyAdminToken, s.Token)
}

// RevokeAdmin closes the admin gate.
func (s *Session) RevokeAdmin(ctx context.Context) error {
	return s.storage.Remove(ctx, KeyAdminToken)
}

// IsAdmin reports whether the admin gate is open.
func (s *Session) IsAdmin(ctx context.Context) bool {
	_, err := s.storage.Get(ctx, KeyAdminToken)
	return err == nil
}

func (s *Session) saveUser(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}
