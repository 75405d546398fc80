package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBufferSize = 16

type Type string

const (
	TypeTick      Type = "tick"
	TypeRefreshed Type = "refreshed"
	TypeReplaced  Type = "replaced"
	TypeRevoked   Type = "revoked"
	TypeExpired   Type = "expired"
)

type SessionEvent struct {
	Type             Type      `json:"type"`
	UserID           string    `json:"userId"`
	SessionID        string    `json:"sessionId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	Timestamp        time.Time `json:"timestamp"`
}

// Terminal reports whether the session the event refers to is over.
func (e SessionEvent) Terminal() bool {
	switch e.Type {
	case TypeReplaced, TypeRevoked, TypeExpired:
		return true
	}
	return false
}

// Hub fans session lifecycle events out to subscribers of a user. Slow
// subscribers drop events rather than block publishers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan SessionEvent
	now  func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[string]chan SessionEvent),
		now:  time.Now,
	}
}

func (h *Hub) Subscribe(userID string) (string, <-chan SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan SessionEvent, subscriberBufferSize)

	userSubs, ok := h.subs[userID]
	if !ok {
		userSubs = make(map[string]chan SessionEvent)
		h.subs[userID] = userSubs
	}
	userSubs[id] = ch

	return id, ch
}

func (h *Hub) Unsubscribe(userID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subs[userID]
	if !ok {
		return
	}
	if ch, ok := userSubs[id]; ok {
		close(ch)
		delete(userSubs, id)
	}
	if len(userSubs) == 0 {
		delete(h.subs, userID)
	}
}

func (h *Hub) Publish(event SessionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = h.now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
