package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-booking-server/internal/models"
)

func TestPublishDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil, nil)
	sub := hub.Subscribe("t1")

	for i := 0; i <= sendBuffer; i++ {
		hub.Publish("t1", Event{Type: EventMessageCreated})
	}
	assert.Zero(t, hub.Subscribers("t1"))

	n := 0
	for range sub.C {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

func TestNilHubIsNoop(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() { hub.Publish("t1", Event{}) })
	assert.Zero(t, hub.Subscribers("t1"))
}

func TestServeWSStreamsEvents(t *testing.T) {
	hub := NewHub(nil, func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, "u1-d1")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Subscribers("u1-d1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("u1-d1", Event{Type: EventMessageCreated, Message: &models.Message{ID: "m1", Content: "hi"}})

	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventMessageCreated, ev.Type)
	assert.Equal(t, "u1-d1", ev.ThreadID)
	assert.Equal(t, "m1", ev.Message.ID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers("u1-d1") == 0 }, time.Second, 10*time.Millisecond)
}
