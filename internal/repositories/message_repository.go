package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fanhub/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNoRecipients    = errors.New("mass message has no recipients")
)

// NewDirectMessage carries the fields of a direct send.
type NewDirectMessage struct {
	ThreadID          uuid.UUID
	SenderID          uuid.UUID
	RecipientID       uuid.UUID
	Content           string
	AttachedContentID *uuid.UUID
	ContentPrice      int
}

// NewMassMessage carries the fields of a mass send.
type NewMassMessage struct {
	SenderID          uuid.UUID
	Content           string
	AttachedContentID *uuid.UUID
	ContentPrice      int
	RecipientIDs      []uuid.UUID
}

// MessageRepository defines interactions for messages.
type MessageRepository interface {
	CreateDirectMessage(ctx context.Context, msg NewDirectMessage) (models.Message, error)
	CreateMassMessage(ctx context.Context, msg NewMassMessage) (models.Message, error)
	ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID uuid.UUID) (models.Message, error)
	MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) (int, error)
	MarkMassMessageRead(ctx context.Context, messageID, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	ListMassRecipients(ctx context.Context, messageID uuid.UUID) ([]models.MassMessageRecipient, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, thread_id, sender_id, recipient_id, content, is_mass_message, attached_content_id, content_price, read_at, created_at`

// CreateDirectMessage appends one message to a resolved thread.
func (r *MessageRepo) CreateDirectMessage(ctx context.Context, msg NewDirectMessage) (models.Message, error) {
	var stored models.Message
	err := r.db.GetContext(ctx, &stored,
		`INSERT INTO messages (id, thread_id, sender_id, recipient_id, content, attached_content_id, content_price)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+messageColumns,
		uuid.New(), msg.ThreadID, msg.SenderID, msg.RecipientID, msg.Content, msg.AttachedContentID, msg.ContentPrice)
	return stored, err
}

// CreateMassMessage inserts one broadcast message plus a recipient row
// per snapshotted subscriber in a single transaction, so a crash can
// never leave an orphaned mass message without delivery records.
func (r *MessageRepo) CreateMassMessage(ctx context.Context, msg NewMassMessage) (models.Message, error) {
	if len(msg.RecipientIDs) == 0 {
		return models.Message{}, ErrNoRecipients
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var stored models.Message
	if err = tx.GetContext(ctx, &stored,
		`INSERT INTO messages (id, sender_id, content, is_mass_message, attached_content_id, content_price)
         VALUES ($1, $2, $3, TRUE, $4, $5)
         RETURNING `+messageColumns,
		uuid.New(), msg.SenderID, msg.Content, msg.AttachedContentID, msg.ContentPrice); err != nil {
		return models.Message{}, err
	}

	ids := make([]string, len(msg.RecipientIDs))
	for i, id := range msg.RecipientIDs {
		ids[i] = id.String()
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO mass_message_recipients (message_id, recipient_id)
         SELECT $1, unnest($2::uuid[])`,
		stored.ID, pq.Array(ids)); err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return stored, nil
}

// ListThreadMessages returns a thread's messages oldest-first.
func (r *MessageRepo) ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE thread_id=$1 ORDER BY created_at ASC`, threadID)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID uuid.UUID) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// MarkThreadRead stamps read_at on every unread message in the thread
// addressed to the user, in one bulk update. The recipient filter
// guarantees the user's own sent messages are never touched.
func (r *MessageRepo) MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read_at=NOW()
         WHERE thread_id=$1 AND recipient_id=$2 AND read_at IS NULL`,
		threadID, userID)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	return int(count), err
}

// MarkMassMessageRead stamps the caller's recipient row of a mass
// message.
func (r *MessageRepo) MarkMassMessageRead(ctx context.Context, messageID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mass_message_recipients SET read_at=NOW()
         WHERE message_id=$1 AND recipient_id=$2 AND read_at IS NULL`,
		messageID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// UnreadCount counts messages addressed to the user that are still
// unread, excluding anything the user sent themselves.
func (r *MessageRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages
         WHERE recipient_id=$1 AND read_at IS NULL AND sender_id<>$1`, userID)
	return count, err
}

// ListMassRecipients returns the delivery records of a mass message.
func (r *MessageRepo) ListMassRecipients(ctx context.Context, messageID uuid.UUID) ([]models.MassMessageRecipient, error) {
	var recipients []models.MassMessageRecipient
	err := r.db.SelectContext(ctx, &recipients,
		`SELECT message_id, recipient_id, read_at FROM mass_message_recipients WHERE message_id=$1`, messageID)
	return recipients, err
}
