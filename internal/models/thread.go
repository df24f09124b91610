package models

import (
	"time"

	"github.com/google/uuid"
)

// Thread is a private conversation between exactly two users. The pair
// is stored sorted so the UNIQUE(user1_id, user2_id) constraint covers
// both orderings.
type Thread struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	User1ID       uuid.UUID  `db:"user1_id" json:"user1_id"`
	User2ID       uuid.UUID  `db:"user2_id" json:"user2_id"`
	LastMessageID *uuid.UUID `db:"last_message_id" json:"last_message_id"`
	LastMessageAt time.Time  `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// OtherUser returns the participant that is not userID.
func (t Thread) OtherUser(userID uuid.UUID) uuid.UUID {
	if t.User1ID == userID {
		return t.User2ID
	}
	return t.User1ID
}

// HasParticipant reports whether userID belongs to the thread.
func (t Thread) HasParticipant(userID uuid.UUID) bool {
	return t.User1ID == userID || t.User2ID == userID
}

// ThreadSummary is the inbox view of a thread for one user.
type ThreadSummary struct {
	Thread
	OtherProfile ProfileSummary `json:"other_user"`
	LastMessage  *Message       `json:"last_message"`
	UnreadCount  int            `json:"unread_count"`
}
