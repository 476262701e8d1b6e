// Package chat keeps patient-doctor conversations.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/metrics"
	"doctor-booking-server/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrNotParticipant   = errors.New("user is not part of this chat")
	ErrNotSender        = errors.New("only the sender can change a message")
	ErrEmptyMessage     = errors.New("message needs content or an image")
)

// Service runs the chat operations of the signed-in user.
type Service struct {
	repo    Repository
	hub     *Hub
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, hub *Hub, logger *logrus.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, hub: hub, logger: logger, metrics: m, now: time.Now}
}

// StartChat returns the thread id of the user and doctor, creating the
// thread on first use.
func (s *Service) StartChat(ctx context.Context, user *models.User, doctorID string) (string, error) {
	if user == nil {
		return "", ErrNotAuthenticated
	}
	t, err := s.thread(ctx, user.ID, doctorID)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (s *Service) thread(ctx context.Context, userID, doctorID string) (*models.ChatThread, error) {
	id := models.ThreadID(userID, doctorID)
	t, err := s.repo.GetThread(ctx, id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrThreadNotFound) {
		return nil, err
	}

	t = &models.ChatThread{
		ID:           id,
		UserID:       userID,
		DoctorID:     doctorID,
		Participants: []string{userID, doctorID},
		UpdatedAt:    s.now(),
	}
	if err := s.repo.SaveThread(ctx, t); err != nil {
		return nil, fmt.Errorf("create thread %s: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{
		"thread_id": id,
		"user_id":   userID,
		"doctor_id": doctorID,
	}).Info("chat started")
	return t, nil
}

// SendMessage appends a message from the user to the doctor.
func (s *Service) SendMessage(ctx context.Context, user *models.User, doctorID, content, imageURL string) (*models.Message, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(content) == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}

	t, err := s.thread(ctx, user.ID, doctorID)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, t, user.ID, doctorID, content, imageURL)
}

// Reply appends a message from the doctor of an existing thread to its user.
func (s *Service) Reply(ctx context.Context, threadID, content, imageURL string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}
	t, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	msg, err := s.post(ctx, t, t.DoctorID, t.UserID, content, imageURL)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"thread_id":  t.ID,
		"message_id": msg.ID,
	}).Info("doctor replied")
	return msg, nil
}

func (s *Service) post(ctx context.Context, t *models.ChatThread, senderID, receiverID, content, imageURL string) (*models.Message, error) {
	msg := &models.Message{
		ID:         uuid.NewString(),
		ThreadID:   t.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		ImageURL:   imageURL,
		Timestamp:  s.now(),
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	t.LastMessage = msg
	t.UpdatedAt = msg.Timestamp
	if err := s.repo.SaveThread(ctx, t); err != nil {
		return nil, fmt.Errorf("update thread %s: %w", t.ID, err)
	}

	s.metrics.ObserveChatMessage("sent")
	s.hub.Publish(t.ID, Event{Type: EventMessageCreated, Message: msg})
	return msg, nil
}

// Messages returns the conversation with the doctor in send order.
func (s *Service) Messages(ctx context.Context, user *models.User, doctorID string) ([]models.Message, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	list, err := s.repo.MessagesIn(ctx, models.ThreadID(user.ID, doctorID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.Before(list[j].Timestamp) })
	return list, nil
}

// Threads lists the user's conversations, most recently active first.
func (s *Service) Threads(ctx context.Context, user *models.User) ([]models.ChatThread, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	list, err := s.repo.ThreadsFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

// DeleteChat removes a thread and all its messages.
func (s *Service) DeleteChat(ctx context.Context, user *models.User, threadID string) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	t, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return err
	}
	if !t.Involves(user.ID) {
		return ErrNotParticipant
	}

	if err := s.repo.DeleteMessagesIn(ctx, threadID); err != nil {
		return fmt.Errorf("delete messages of %s: %w", threadID, err)
	}
	if err := s.repo.DeleteThread(ctx, threadID); err != nil {
		return err
	}

	s.logger.WithField("thread_id", threadID).Info("chat deleted")
	s.hub.Publish(threadID, Event{Type: EventThreadDeleted, ThreadID: threadID})
	return nil
}

// DeleteMessage removes one of the user's messages. The thread preview
// falls back to the newest remaining message.
func (s *Service) DeleteMessage(ctx context.Context, user *models.User, messageID string) error {
	msg, t, err := s.ownMessage(ctx, user, messageID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}

	if t != nil {
		rest, err := s.repo.MessagesIn(ctx, t.ID)
		if err != nil {
			return err
		}
		t.LastMessage = latest(rest)
		if t.LastMessage != nil {
			t.UpdatedAt = t.LastMessage.Timestamp
		}
		if err := s.repo.SaveThread(ctx, t); err != nil {
			return fmt.Errorf("update thread %s: %w", t.ID, err)
		}
	}

	s.metrics.ObserveChatMessage("deleted")
	s.hub.Publish(msg.ThreadID, Event{Type: EventMessageDeleted, ThreadID: msg.ThreadID, MessageID: messageID})
	return nil
}

// EditMessage replaces the content of one of the user's messages.
func (s *Service) EditMessage(ctx context.Context, user *models.User, messageID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	msg, t, err := s.ownMessage(ctx, user, messageID)
	if err != nil {
		return nil, err
	}

	msg.Content = content
	msg.Edited = true
	if err := s.repo.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if t != nil && t.LastMessage != nil && t.LastMessage.ID == msg.ID {
		t.LastMessage = msg
		if err := s.repo.SaveThread(ctx, t); err != nil {
			return nil, fmt.Errorf("update thread %s: %w", t.ID, err)
		}
	}

	s.metrics.ObserveChatMessage("edited")
	s.hub.Publish(msg.ThreadID, Event{Type: EventMessageUpdated, Message: msg})
	return msg, nil
}

// MarkRead flags every message the doctor sent to the user as read and
// reports how many changed.
func (s *Service) MarkRead(ctx context.Context, user *models.User, doctorID string) (int, error) {
	if user == nil {
		return 0, ErrNotAuthenticated
	}
	list, err := s.repo.MessagesIn(ctx, models.ThreadID(user.ID, doctorID))
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range list {
		m := &list[i]
		if m.ReceiverID != user.ID || m.Read {
			continue
		}
		m.Read = true
		if err := s.repo.UpdateMessage(ctx, m); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ownMessage loads a message sent by user along with its thread. The
// thread is nil when it no longer exists.
func (s *Service) ownMessage(ctx context.Context, user *models.User, messageID string) (*models.Message, *models.ChatThread, error) {
	if user == nil {
		return nil, nil, ErrNotAuthenticated
	}
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	if msg.SenderID != user.ID {
		return nil, nil, ErrNotSender
	}
	t, err := s.repo.GetThread(ctx, msg.ThreadID)
	if errors.Is(err, ErrThreadNotFound) {
		return msg, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return msg, t, nil
}

func latest(list []models.Message) *models.Message {
	var out *models.Message
	for i := range list {
		if out == nil || !list[i].Timestamp.Before(out.Timestamp) {
			m := list[i]
			out = &m
		}
	}
	return out
}
