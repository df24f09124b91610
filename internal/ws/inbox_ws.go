package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"fanhub/internal/observability"
	"fanhub/internal/services"
)

// InboxWebSocketHandler serves per-user inbox subscriptions: new
// messages addressed to the user and read-state changes, across all
// of their devices.
type InboxWebSocketHandler struct {
	hub      *Hub
	sessions services.SessionValidator
}

// NewInboxWebSocketHandler constructs an InboxWebSocketHandler.
func NewInboxWebSocketHandler(hub *Hub, sessions services.SessionValidator) *InboxWebSocketHandler {
	return &InboxWebSocketHandler{hub: hub, sessions: sessions}
}

// Handle upgrades the connection and registers the client in the
// user's inbox room.
func (h *InboxWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("fanhub/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := authenticate(c, h.sessions)
	if !ok {
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
	h.hub.AddInboxClient(userID, conn, info)

	observability.IncWSActive("inbox")
	observability.IncWSEvent("inbox", "ws_connect")
	_ = observability.PublishEvent(ctx, routingKey("inbox"), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   eventPayload("inbox", userID.String(), "ws_connect", "", info),
	})

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveInboxClient(userID, conn)
			observability.DecWSActive("inbox")
			observability.IncWSEvent("inbox", "ws_disconnect")
			_ = observability.PublishEvent(ctx, routingKey("inbox"), observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   eventPayload("inbox", userID.String(), "ws_disconnect", closeReason, info),
			})
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("inbox", "ws_error")
				}
				return
			}
		}
	}()
}

// authenticate resolves the bearer token from the Authorization
// header, or from the token query parameter browsers must use for
// websocket dials.
func authenticate(c *gin.Context, sessions services.SessionValidator) (uuid.UUID, bool) {
	token := c.GetHeader("Authorization")
	if token != "" {
		parts := strings.SplitN(token, " ", 2)
		if len(parts) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return uuid.Nil, false
		}
		token = parts[1]
	} else {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return uuid.Nil, false
	}

	userID, err := sessions.Validate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return uuid.Nil, false
	}
	return userID, true
}
