package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// Subscription is the relation between a subscriber and a creator,
// kept in sync with the payment processor through its webhooks.
type Subscription struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	CreatorID            uuid.UUID  `db:"creator_id" json:"creator_id"`
	SubscriberID         uuid.UUID  `db:"subscriber_id" json:"subscriber_id"`
	Status               string     `db:"status" json:"status"`
	StripeSubscriptionID string     `db:"stripe_subscription_id" json:"stripe_subscription_id"`
	CurrentPeriodEnd     *time.Time `db:"current_period_end" json:"current_period_end"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// Transaction records a completed one-off purchase.
type Transaction struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PostID          *uuid.UUID `db:"post_id" json:"post_id"`
	CreatorID       uuid.UUID  `db:"creator_id" json:"creator_id"`
	UserID          uuid.UUID  `db:"user_id" json:"user_id"`
	Amount          int        `db:"amount" json:"amount"`
	StripeSessionID string     `db:"stripe_session_id" json:"stripe_session_id"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// PlatformStats is the public stats payload.
type PlatformStats struct {
	CreatorCount   int `json:"creatorCount"`
	SupporterCount int `json:"supporterCount"`
	TotalEarnings  int `json:"totalEarnings"`
}
