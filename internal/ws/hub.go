package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fanhub/internal/models"
	"fanhub/internal/observability"
)

// Hub maintains active websocket rooms. Thread rooms fan out to every
// client viewing one conversation; inbox rooms fan out to every device
// a user has connected, driving thread lists and unread badges.
type Hub struct {
	threadRooms map[uuid.UUID]map[*websocket.Conn]ConnInfo
	inboxRooms  map[uuid.UUID]map[*websocket.Conn]ConnInfo
	mu          sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		threadRooms: make(map[uuid.UUID]map[*websocket.Conn]ConnInfo),
		inboxRooms:  make(map[uuid.UUID]map[*websocket.Conn]ConnInfo),
	}
}

// AddThreadClient registers a connection in a thread room.
func (h *Hub) AddThreadClient(threadID uuid.UUID, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.threadRooms[threadID]; !ok {
		h.threadRooms[threadID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.threadRooms[threadID][conn] = info
}

// RemoveThreadClient removes a connection from a thread room.
func (h *Hub) RemoveThreadClient(threadID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.threadRooms[threadID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.threadRooms, threadID)
		}
	}
}

// AddInboxClient registers a connection in the user's inbox room.
func (h *Hub) AddInboxClient(userID uuid.UUID, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inboxRooms[userID]; !ok {
		h.inboxRooms[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.inboxRooms[userID][conn] = info
}

// RemoveInboxClient removes a connection from the user's inbox room.
func (h *Hub) RemoveInboxClient(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.inboxRooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.inboxRooms, userID)
		}
	}
}

// BroadcastThreadMessage pushes a new message to the thread room.
func (h *Hub) BroadcastThreadMessage(threadID uuid.UUID, msg models.Message) {
	event := models.MessageEvent{Type: "message", Message: &msg, ThreadID: &threadID}
	h.broadcast("thread", threadID, event)
}

// BroadcastThreadRead notifies the thread room that readerID marked
// the conversation read.
func (h *Hub) BroadcastThreadRead(threadID, readerID uuid.UUID) {
	event := models.MessageEvent{Type: "read", ThreadID: &threadID, ReaderID: &readerID}
	h.broadcast("thread", threadID, event)
}

// BroadcastInboxMessage pushes a new message to the recipient's inbox
// room. The event carries the full row so clients can apply it as a
// keyed delta instead of re-fetching the whole inbox.
func (h *Hub) BroadcastInboxMessage(userID uuid.UUID, msg models.Message) {
	event := models.MessageEvent{Type: "message", Message: &msg, ThreadID: msg.ThreadID}
	h.broadcast("inbox", userID, event)
}

// BroadcastInboxRead tells the user's other devices that a thread was
// marked read, so unread badges converge.
func (h *Hub) BroadcastInboxRead(userID, threadID uuid.UUID) {
	event := models.MessageEvent{Type: "read", ThreadID: &threadID, ReaderID: &userID}
	h.broadcast("inbox", userID, event)
}

// BroadcastInboxMessageRead tells the user's other devices that a
// single mass message was marked read.
func (h *Hub) BroadcastInboxMessageRead(userID, messageID uuid.UUID) {
	event := models.MessageEvent{Type: "read", MessageID: &messageID, ReaderID: &userID}
	h.broadcast("inbox", userID, event)
}

func (h *Hub) broadcast(kind string, roomID uuid.UUID, event models.MessageEvent) {
	h.mu.RLock()
	var room map[*websocket.Conn]ConnInfo
	if kind == "thread" {
		room = h.threadRooms[roomID]
	} else {
		room = h.inboxRooms[roomID]
	}
	conns := make(map[*websocket.Conn]ConnInfo, len(room))
	for conn, info := range room {
		conns[conn] = info
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn, info := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			if kind == "thread" {
				h.RemoveThreadClient(roomID, conn)
			} else {
				h.RemoveInboxClient(roomID, conn)
			}
			h.publishWSError(kind, roomID, info, err)
		}
	}
}

func (h *Hub) publishWSError(kind string, roomID uuid.UUID, info ConnInfo, err error) {
	_ = observability.PublishEvent(context.Background(), routingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   eventPayload(kind, roomID.String(), "ws_error", err.Error(), info),
	})
	observability.IncWSEvent(kind, "ws_error")
}
