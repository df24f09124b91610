package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"fanhub/internal/observability"
	"fanhub/internal/repositories"
	"fanhub/internal/services"
)

// ThreadWebSocketHandler serves per-thread realtime subscriptions.
type ThreadWebSocketHandler struct {
	hub        *Hub
	threadRepo repositories.ThreadRepository
	sessions   services.SessionValidator
}

// NewThreadWebSocketHandler constructs a ThreadWebSocketHandler.
func NewThreadWebSocketHandler(hub *Hub, threadRepo repositories.ThreadRepository, sessions services.SessionValidator) *ThreadWebSocketHandler {
	return &ThreadWebSocketHandler{hub: hub, threadRepo: threadRepo, sessions: sessions}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the
// thread room.
func (h *ThreadWebSocketHandler) Handle(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	ctx, span := otel.Tracer("fanhub/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := authenticate(c, h.sessions)
	if !ok {
		return
	}

	thread, err := h.threadRepo.GetThread(ctx, threadID)
	if err != nil || !thread.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for thread"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddThreadClient(threadID, conn, info)

	observability.IncWSActive("thread")
	observability.IncWSEvent("thread", "ws_connect")
	_ = observability.PublishEvent(ctx, routingKey("thread"), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   eventPayload("thread", threadID.String(), "ws_connect", "", info),
	})

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveThreadClient(threadID, conn)
			observability.DecWSActive("thread")
			observability.IncWSEvent("thread", "ws_disconnect")
			_ = observability.PublishEvent(ctx, routingKey("thread"), observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   eventPayload("thread", threadID.String(), "ws_disconnect", closeReason, info),
			})
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("thread", "ws_error")
					_ = observability.PublishEvent(ctx, routingKey("thread"), observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   eventPayload("thread", threadID.String(), "ws_error", closeReason, info),
					})
				}
				return
			}
		}
	}()
}
