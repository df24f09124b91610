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
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// ProfileRepository abstracts account persistence.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, name, email, passwordHash string) (models.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (models.Profile, error)
	SearchProfiles(ctx context.Context, query string, limit int) ([]models.ProfileSummary, error)
	UpdateCreatorSettings(ctx context.Context, id uuid.UUID, subscriptionPrice *int, bio *string) (models.Profile, error)
	CountCreators(ctx context.Context) (int, error)
	CountSupporters(ctx context.Context) (int, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, name, email, password_hash, avatar_url, bio, subscription_price, created_at`

// CreateProfile inserts a new account.
func (r *ProfileRepo) CreateProfile(ctx context.Context, name, email, passwordHash string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`INSERT INTO profiles (id, name, email, password_hash) VALUES ($1, $2, $3, $4)
         RETURNING `+profileColumns,
		uuid.New(), name, email, passwordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return models.Profile{}, ErrEmailTaken
	}
	return profile, err
}

// GetProfile fetches an account by id.
func (r *ProfileRepo) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// GetProfileByEmail fetches an account by email.
func (r *ProfileRepo) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`SELECT `+profileColumns+` FROM profiles WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// SearchProfiles matches names case-insensitively for recipient search.
func (r *ProfileRepo) SearchProfiles(ctx context.Context, query string, limit int) ([]models.ProfileSummary, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	var result []models.ProfileSummary
	err := r.db.SelectContext(ctx, &result,
		`SELECT id, name, avatar_url FROM profiles WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT $2`,
		query, limit)
	return result, err
}

// UpdateCreatorSettings sets the public creator fields. A nil
// subscriptionPrice turns the account back into a supporter.
func (r *ProfileRepo) UpdateCreatorSettings(ctx context.Context, id uuid.UUID, subscriptionPrice *int, bio *string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`UPDATE profiles SET subscription_price=$2, bio=COALESCE($3, bio) WHERE id=$1
         RETURNING `+profileColumns,
		id, subscriptionPrice, bio)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// CountCreators counts profiles with a paid subscription price.
func (r *ProfileRepo) CountCreators(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM profiles WHERE subscription_price > 0`)
	return count, err
}

// CountSupporters counts profiles without a subscription price.
func (r *ProfileRepo) CountSupporters(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM profiles WHERE subscription_price IS NULL`)
	return count, err
}
