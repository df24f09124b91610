package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a registered account. A profile with a non-nil
// SubscriptionPrice is a creator; others are supporters.
type Profile struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	AvatarURL         *string   `db:"avatar_url" json:"avatar_url"`
	Bio               *string   `db:"bio" json:"bio"`
	SubscriptionPrice *int      `db:"subscription_price" json:"subscription_price"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// ProfileSummary is the trimmed profile embedded in API responses.
type ProfileSummary struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
}

// Summary converts a full profile into its embeddable form.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
}
