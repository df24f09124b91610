package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fanhub/internal/models"
)

var ErrThreadNotFound = errors.New("thread not found")

// ThreadRepository abstracts thread persistence.
type ThreadRepository interface {
	GetOrCreateThread(ctx context.Context, userID, otherID uuid.UUID) (models.Thread, error)
	GetThread(ctx context.Context, threadID uuid.UUID) (models.Thread, error)
	ListThreadSummaries(ctx context.Context, userID uuid.UUID) ([]models.ThreadSummary, error)
	SetLastMessage(ctx context.Context, threadID, messageID uuid.UUID) error
}

// ThreadRepo is a sqlx implementation of ThreadRepository.
type ThreadRepo struct {
	db *sqlx.DB
}

// NewThreadRepo constructs a ThreadRepo.
func NewThreadRepo(db *sqlx.DB) *ThreadRepo {
	return &ThreadRepo{db: db}
}

const threadColumns = `id, user1_id, user2_id, last_message_id, last_message_at, created_at`

// GetOrCreateThread returns the unique thread for the unordered user
// pair, creating it when absent. The insert is attempted first; when
// the pair already exists the conflict makes the insert a no-op and
// the existing row is read back. Concurrent first-contact sends from
// both sides therefore converge on a single thread without locking.
func (r *ThreadRepo) GetOrCreateThread(ctx context.Context, userID, otherID uuid.UUID) (models.Thread, error) {
	if userID == otherID {
		return models.Thread{}, errors.New("cannot create thread with self")
	}
	user1, user2 := sortPair(userID, otherID)

	var thread models.Thread
	err := r.db.GetContext(ctx, &thread,
		`INSERT INTO message_threads (id, user1_id, user2_id) VALUES ($1, $2, $3)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING `+threadColumns,
		uuid.New(), user1, user2)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Thread{}, err
	}

	// Conflict: another insert won the race, read the existing row.
	err = r.db.GetContext(ctx, &thread,
		`SELECT `+threadColumns+` FROM message_threads WHERE user1_id=$1 AND user2_id=$2`,
		user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Thread{}, ErrThreadNotFound
	}
	return thread, err
}

// GetThread fetches a thread by id.
func (r *ThreadRepo) GetThread(ctx context.Context, threadID uuid.UUID) (models.Thread, error) {
	var thread models.Thread
	err := r.db.GetContext(ctx, &thread,
		`SELECT `+threadColumns+` FROM message_threads WHERE id=$1`, threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Thread{}, ErrThreadNotFound
	}
	return thread, err
}

// ListThreadSummaries returns the user's threads newest-first with the
// counterparty profile, last message and unread count attached.
func (r *ThreadRepo) ListThreadSummaries(ctx context.Context, userID uuid.UUID) ([]models.ThreadSummary, error) {
	var threads []models.Thread
	err := r.db.SelectContext(ctx, &threads,
		`SELECT `+threadColumns+` FROM message_threads
         WHERE user1_id=$1 OR user2_id=$1
         ORDER BY last_message_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, nil
	}

	unread := map[uuid.UUID]int{}
	rows, err := r.db.QueryxContext(ctx,
		`SELECT thread_id, COUNT(*) FROM messages
         WHERE recipient_id=$1 AND read_at IS NULL AND thread_id IS NOT NULL
         GROUP BY thread_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var threadID uuid.UUID
		var count int
		if err := rows.Scan(&threadID, &count); err != nil {
			return nil, err
		}
		unread[threadID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]models.ThreadSummary, 0, len(threads))
	for _, thread := range threads {
		summary := models.ThreadSummary{Thread: thread, UnreadCount: unread[thread.ID]}

		other := thread.OtherUser(userID)
		if err := r.db.GetContext(ctx, &summary.OtherProfile,
			`SELECT id, name, avatar_url FROM profiles WHERE id=$1`, other); err != nil {
			return nil, err
		}

		// The denormalized pointer may be stale or unset; fall back to
		// the latest row in the thread.
		var last models.Message
		err := r.db.GetContext(ctx, &last,
			`SELECT `+messageColumns+` FROM messages
             WHERE thread_id=$1 ORDER BY created_at DESC LIMIT 1`, thread.ID)
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// SetLastMessage updates the thread's denormalized last-message
// pointer. Callers treat failures as non-fatal: the pointer is a read
// optimization, readers can always query the latest message directly.
func (r *ThreadRepo) SetLastMessage(ctx context.Context, threadID, messageID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE message_threads SET last_message_id=$2, last_message_at=NOW() WHERE id=$1`,
		threadID, messageID)
	return err
}

func sortPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}
