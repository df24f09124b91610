package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func eventPayload(kind, resourceID, event, reason string, info ConnInfo) map[string]any {
	return map[string]any{
		"ws": map[string]any{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]any{
			"user_id":    info.UserID.String(),
			"device_id":  info.DeviceID,
			"ip":         info.IP,
			"request_id": info.RequestID,
			"trace_id":   info.TraceID,
		},
	}
}

func routingKey(kind string) string {
	if kind == "inbox" {
		return "ws_events.inbox"
	}
	return "ws_events.threads"
}
