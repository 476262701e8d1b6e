package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-booking-server/internal/models"
)

var (
	alice = &models.User{ID: "u1", Name: "Alice"}
	bob   = &models.User{ID: "u2", Name: "Bob"}
)

func newTestService(t *testing.T) (*Service, *MemoryRepository, *Hub) {
	t.Helper()
	repo := NewMemoryRepository()
	hub := NewHub(nil, nil)
	svc := NewService(repo, hub, nil, nil)

	clock := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, repo, hub
}

func TestStartChatIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.StartChat(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, "u1-d1", id)

	again, err := svc.StartChat(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	threads, err := repo.ThreadsFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, []string{"u1", "d1"}, threads[0].Participants)
}

func TestOperationsRequireUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.StartChat(ctx, nil, "d1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.SendMessage(ctx, nil, "d1", "hi", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Messages(ctx, nil, "d1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Threads(ctx, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, svc.DeleteChat(ctx, nil, "u1-d1"), ErrNotAuthenticated)
	assert.ErrorIs(t, svc.DeleteMessage(ctx, nil, "m1"), ErrNotAuthenticated)
}

func TestSendMessageCreatesThreadAndUpdatesPreview(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx := context.Background()
	sub := hub.Subscribe("u1-d1")

	first, err := svc.SendMessage(ctx, alice, "d1", "Hello doctor", "")
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, alice, "d1", "", "https://img.example/rash.png")
	require.NoError(t, err)

	ev := <-sub.C
	assert.Equal(t, EventMessageCreated, ev.Type)
	assert.Equal(t, first.ID, ev.Message.ID)
	assert.Equal(t, "u1-d1", ev.ThreadID)

	msgs, err := svc.Messages(ctx, alice, "d1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, "d1", msgs[0].ReceiverID)

	threads, err := svc.Threads(ctx, alice)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, second.ID, threads[0].LastMessage.ID)
	assert.Equal(t, second.Timestamp, threads[0].UpdatedAt)

	_, err = svc.SendMessage(ctx, alice, "d1", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestThreadsNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, alice, "d1", "first", "")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, alice, "d2", "second", "")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, bob, "d1", "other user", "")
	require.NoError(t, err)

	threads, err := svc.Threads(ctx, alice)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "u1-d2", threads[0].ID)
	assert.Equal(t, "u1-d1", threads[1].ID)
}

func TestDeleteLastMessageRecomputesPreview(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, alice, "d1", "first", "")
	require.NoError(t, err)
	last, err := svc.SendMessage(ctx, alice, "d1", "last", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMessage(ctx, alice, last.ID))
	thread, err := repo.GetThread(ctx, "u1-d1")
	require.NoError(t, err)
	require.NotNil(t, thread.LastMessage)
	assert.Equal(t, first.ID, thread.LastMessage.ID)

	require.NoError(t, svc.DeleteMessage(ctx, alice, first.ID))
	thread, err = repo.GetThread(ctx, "u1-d1")
	require.NoError(t, err)
	assert.Nil(t, thread.LastMessage)

	assert.ErrorIs(t, svc.DeleteMessage(ctx, alice, first.ID), ErrMessageNotFound)
}

func TestEditMessage(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.SendMessage(ctx, alice, "d1", "helo", "")
	require.NoError(t, err)

	edited, err := svc.EditMessage(ctx, alice, msg.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", edited.Content)
	assert.True(t, edited.Edited)

	thread, err := repo.GetThread(ctx, "u1-d1")
	require.NoError(t, err)
	assert.Equal(t, "hello", thread.LastMessage.Content)

	_, err = svc.EditMessage(ctx, alice, "missing", "x")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = svc.EditMessage(ctx, bob, msg.ID, "hijack")
	assert.ErrorIs(t, err, ErrNotSender)
}

func TestDeleteChatRemovesThreadAndMessages(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, alice, "d1", "hi", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteChat(ctx, bob, "u1-d1"), ErrNotParticipant)
	require.NoError(t, svc.DeleteChat(ctx, alice, "u1-d1"))

	_, err = repo.GetThread(ctx, "u1-d1")
	assert.ErrorIs(t, err, ErrThreadNotFound)
	msgs, err := repo.MessagesIn(ctx, "u1-d1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	assert.ErrorIs(t, svc.DeleteChat(ctx, alice, "u1-d1"), ErrThreadNotFound)
}

func TestMarkReadOnlyTouchesIncoming(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, alice, "d1", "question", "")
	require.NoError(t, err)
	reply := &models.Message{ID: "r1", ThreadID: "u1-d1", SenderID: "d1", ReceiverID: "u1", Content: "answer", Timestamp: time.Now()}
	require.NoError(t, repo.AddMessage(ctx, reply))

	n, err := svc.MarkRead(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetMessage(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.Read)

	n, err = svc.MarkRead(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplyIsUnreadUntilMarked(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, alice, "d1", "question", "")
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, "u1-d1", "answer", "")
	require.NoError(t, err)
	assert.Equal(t, "d1", reply.SenderID)
	assert.Equal(t, "u1", reply.ReceiverID)

	thread, err := repo.GetThread(ctx, "u1-d1")
	require.NoError(t, err)
	require.NotNil(t, thread.LastMessage)
	assert.Equal(t, reply.ID, thread.LastMessage.ID)

	n, err := svc.MarkRead(ctx, alice, "d1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Reply(ctx, "u9-d1", "anyone?", "")
	assert.ErrorIs(t, err, ErrThreadNotFound)
	_, err = svc.Reply(ctx, "u1-d1", "  ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
