package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single message record. Direct messages belong to a
// thread and carry a recipient; mass messages have neither and are
// joined to their audience through mass_message_recipients. Rows are
// immutable after insert except for ReadAt.
type Message struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	ThreadID          *uuid.UUID `db:"thread_id" json:"thread_id"`
	SenderID          uuid.UUID  `db:"sender_id" json:"sender_id"`
	RecipientID       *uuid.UUID `db:"recipient_id" json:"recipient_id"`
	Content           string     `db:"content" json:"content"`
	IsMassMessage     bool       `db:"is_mass_message" json:"is_mass_message"`
	AttachedContentID *uuid.UUID `db:"attached_content_id" json:"attached_content_id"`
	ContentPrice      int        `db:"content_price" json:"content_price"`
	ReadAt            *time.Time `db:"read_at" json:"read_at"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// MassMessageRecipient links one mass message to one recipient and
// tracks that recipient's read state.
type MassMessageRecipient struct {
	MessageID   uuid.UUID  `db:"message_id" json:"message_id"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	ReadAt      *time.Time `db:"read_at" json:"read_at"`
}

// MessageEvent is pushed over websocket connections. Every event
// carries the row ids involved so clients can apply it as a keyed
// delta instead of re-fetching.
type MessageEvent struct {
	Type      string      `json:"type"`
	Message   *Message    `json:"message,omitempty"`
	MessageID *uuid.UUID  `json:"message_id,omitempty"`
	ThreadID  *uuid.UUID  `json:"thread_id,omitempty"`
	ReaderID  *uuid.UUID  `json:"reader_id,omitempty"`
}
