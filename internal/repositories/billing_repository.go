package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fanhub/internal/models"
)

// NewTransaction carries a completed checkout to be recorded.
type NewTransaction struct {
	PostID          *uuid.UUID
	CreatorID       uuid.UUID
	UserID          uuid.UUID
	Amount          int
	StripeSessionID string
}

// BillingRepository records completed purchases and access grants.
type BillingRepository interface {
	CreateTransaction(ctx context.Context, txn NewTransaction) (models.Transaction, error)
	GrantPostAccess(ctx context.Context, postID, userID uuid.UUID) error
	TotalCompletedAmount(ctx context.Context) (int, error)
}

// BillingRepo is a sqlx implementation of BillingRepository.
type BillingRepo struct {
	db *sqlx.DB
}

// NewBillingRepo constructs a BillingRepo.
func NewBillingRepo(db *sqlx.DB) *BillingRepo {
	return &BillingRepo{db: db}
}

// CreateTransaction records a completed checkout session.
func (r *BillingRepo) CreateTransaction(ctx context.Context, txn NewTransaction) (models.Transaction, error) {
	var stored models.Transaction
	err := r.db.GetContext(ctx, &stored,
		`INSERT INTO transactions (id, post_id, creator_id, user_id, amount, stripe_session_id)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id, post_id, creator_id, user_id, amount, stripe_session_id, status, created_at`,
		uuid.New(), txn.PostID, txn.CreatorID, txn.UserID, txn.Amount, txn.StripeSessionID)
	return stored, err
}

// GrantPostAccess makes a paid post visible to the buyer. Replayed
// webhooks make the grant an upsert no-op.
func (r *BillingRepo) GrantPostAccess(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO post_access (post_id, user_id) VALUES ($1, $2)
         ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
	return err
}

// TotalCompletedAmount sums completed transaction amounts in cents.
func (r *BillingRepo) TotalCompletedAmount(ctx context.Context) (int, error) {
	var total sql.NullInt64
	err := r.db.GetContext(ctx, &total,
		`SELECT SUM(amount) FROM transactions WHERE status='completed'`)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}
