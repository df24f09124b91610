package ws

import (
	"testing"

	"github.com/google/uuid"
)

func TestHubAddAndRemoveThreadClient(t *testing.T) {
	hub := NewHub()
	threadID := uuid.New()

	hub.AddThreadClient(threadID, nil, ConnInfo{ConnID: "c1"})
	if len(hub.threadRooms) != 1 {
		t.Fatalf("expected thread room to be created")
	}

	hub.RemoveThreadClient(threadID, nil)
	if len(hub.threadRooms) != 0 {
		t.Fatalf("expected thread room to be removed")
	}
}

func TestHubAddAndRemoveInboxClient(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	hub.AddInboxClient(userID, nil, ConnInfo{ConnID: "c2"})
	if len(hub.inboxRooms) != 1 {
		t.Fatalf("expected inbox room to be created")
	}

	hub.RemoveInboxClient(userID, nil)
	if len(hub.inboxRooms) != 0 {
		t.Fatalf("expected inbox room to be removed")
	}
}
