package chat

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/models"
)

const (
	EventMessageCreated = "message.created"
	EventMessageUpdated = "message.updated"
	EventMessageDeleted = "message.deleted"
	EventThreadDeleted  = "thread.deleted"

	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Event is pushed to every websocket subscribed to a thread.
type Event struct {
	Type      string          `json:"type"`
	ThreadID  string          `json:"threadId,omitempty"`
	MessageID string          `json:"messageId,omitempty"`
	Message   *models.Message `json:"message,omitempty"`
}

// Subscription receives the events of one thread.
type Subscription struct {
	threadID string
	C        chan Event
}

// Hub fans chat events out to websocket clients per thread. A subscriber
// whose buffer is full is dropped.
type Hub struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub(logger *logrus.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) Subscribe(threadID string) *Subscription {
	sub := &Subscription{threadID: threadID, C: make(chan Event, sendBuffer)}
	h.mu.Lock()
	if h.subs[threadID] == nil {
		h.subs[threadID] = make(map[*Subscription]struct{})
	}
	h.subs[threadID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	set, ok := h.subs[sub.threadID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.C)
	if len(set) == 0 {
		delete(h.subs, sub.threadID)
	}
}

// Subscribers reports how many clients follow the thread.
func (h *Hub) Subscribers(threadID string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[threadID])
}

// Publish delivers ev to the thread's subscribers without blocking.
func (h *Hub) Publish(threadID string, ev Event) {
	if h == nil {
		return
	}
	if ev.ThreadID == "" {
		ev.ThreadID = threadID
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[threadID] {
		select {
		case sub.C <- ev:
		default:
			h.logger.WithField("thread_id", threadID).Warn("dropping slow chat subscriber")
			h.removeLocked(sub)
		}
	}
}

// ServeWS upgrades the request and streams the thread's events until the
// client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, threadID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	sub := h.Subscribe(threadID)
	log := h.logger.WithField("thread_id", threadID)
	log.Debug("chat websocket connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.Unsubscribe(sub)
		_ = conn.Close()
		log.Debug("chat websocket closed")
	}()

	for {
		select {
		case <-done:
			return nil
		case ev, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
