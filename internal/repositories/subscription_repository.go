package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fanhub/internal/models"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionUpsert carries the fields synced from the payment
// processor's subscription-lifecycle webhooks.
type SubscriptionUpsert struct {
	CreatorID            uuid.UUID
	SubscriberID         uuid.UUID
	Status               string
	StripeSubscriptionID string
	CurrentPeriodEnd     *time.Time
}

// SubscriptionRepository abstracts subscription persistence.
type SubscriptionRepository interface {
	ActiveSubscriberIDs(ctx context.Context, creatorID uuid.UUID) ([]uuid.UUID, error)
	HasActiveSubscription(ctx context.Context, creatorID, subscriberID uuid.UUID) (bool, error)
	UpsertSubscription(ctx context.Context, sub SubscriptionUpsert) (models.Subscription, error)
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (models.Subscription, error)
	SetStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error
	ListForSubscriber(ctx context.Context, subscriberID uuid.UUID) ([]models.Subscription, error)
}

// SubscriptionRepo is a sqlx implementation of SubscriptionRepository.
type SubscriptionRepo struct {
	db *sqlx.DB
}

// NewSubscriptionRepo constructs a SubscriptionRepo.
func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

const subscriptionColumns = `id, creator_id, subscriber_id, status, stripe_subscription_id, current_period_end, created_at, updated_at`

// ActiveSubscriberIDs snapshots the creator's currently-active
// subscriber set. Mass sends fan out to exactly this snapshot.
func (r *SubscriptionRepo) ActiveSubscriberIDs(ctx context.Context, creatorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		`SELECT subscriber_id FROM subscriptions WHERE creator_id=$1 AND status='active'`, creatorID)
	return ids, err
}

// HasActiveSubscription checks one subscriber/creator relation.
func (r *SubscriptionRepo) HasActiveSubscription(ctx context.Context, creatorID, subscriberID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE creator_id=$1 AND subscriber_id=$2 AND status='active')`,
		creatorID, subscriberID)
	return exists, err
}

// UpsertSubscription inserts or refreshes the subscriber/creator row.
func (r *SubscriptionRepo) UpsertSubscription(ctx context.Context, sub SubscriptionUpsert) (models.Subscription, error) {
	var stored models.Subscription
	err := r.db.GetContext(ctx, &stored,
		`INSERT INTO subscriptions (id, creator_id, subscriber_id, status, stripe_subscription_id, current_period_end)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (creator_id, subscriber_id) DO UPDATE SET
             status = EXCLUDED.status,
             stripe_subscription_id = EXCLUDED.stripe_subscription_id,
             current_period_end = EXCLUDED.current_period_end,
             updated_at = NOW()
         RETURNING `+subscriptionColumns,
		uuid.New(), sub.CreatorID, sub.SubscriberID, sub.Status, sub.StripeSubscriptionID, sub.CurrentPeriodEnd)
	return stored, err
}

// GetByStripeID fetches the subscription synced from the processor.
func (r *SubscriptionRepo) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (models.Subscription, error) {
	var sub models.Subscription
	err := r.db.GetContext(ctx, &sub,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE stripe_subscription_id=$1`, stripeSubscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, ErrSubscriptionNotFound
	}
	return sub, err
}

// SetStatusByStripeID updates the synced status of a subscription.
func (r *SubscriptionRepo) SetStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status=$2, updated_at=NOW() WHERE stripe_subscription_id=$1`,
		stripeSubscriptionID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ListForSubscriber returns the user's subscriptions newest-first.
func (r *SubscriptionRepo) ListForSubscriber(ctx context.Context, subscriberID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.SelectContext(ctx, &subs,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE subscriber_id=$1 ORDER BY created_at DESC`, subscriberID)
	return subs, err
}
