package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fanhub/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

// NewPost carries the fields of a post insert.
type NewPost struct {
	CreatorID   uuid.UUID
	Title       string
	Description string
	URL         string
	Type        string
	IsPublic    bool
	Price       int
}

// PostFilter narrows and orders feed queries.
type PostFilter struct {
	CreatorID *uuid.UUID
	Type      string // "image", "video" or empty for all
	Search    string // ILIKE match on description
	Sort      string // newest, oldest, price_high, price_low
}

// PostRepository abstracts content persistence.
type PostRepository interface {
	CreatePost(ctx context.Context, post NewPost) (models.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.PostWithCreator, error)
	HasAccess(ctx context.Context, postID, userID uuid.UUID) (bool, error)
}

// PostRepo is a sqlx implementation of PostRepository.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = `id, creator_id, title, description, url, type, is_public, price, created_at`

// CreatePost inserts a content record. The media must already be
// uploaded; URL is its durable public location.
func (r *PostRepo) CreatePost(ctx context.Context, post NewPost) (models.Post, error) {
	var stored models.Post
	err := r.db.GetContext(ctx, &stored,
		`INSERT INTO posts (id, creator_id, title, description, url, type, is_public, price)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+postColumns,
		uuid.New(), post.CreatorID, post.Title, post.Description, post.URL, post.Type, post.IsPublic, post.Price)
	return stored, err
}

// GetPost fetches a post by id.
func (r *PostRepo) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post,
		`SELECT `+postColumns+` FROM posts WHERE id=$1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	return post, err
}

// ListPosts returns posts with their creator summaries, filtered and
// ordered per the feed controls.
func (r *PostRepo) ListPosts(ctx context.Context, filter PostFilter) ([]models.PostWithCreator, error) {
	query := `SELECT p.id, p.creator_id, p.title, p.description, p.url, p.type, p.is_public, p.price, p.created_at,
                     c.id AS "creator.id", c.name AS "creator.name", c.avatar_url AS "creator.avatar_url"
              FROM posts p INNER JOIN profiles c ON c.id = p.creator_id`
	var conditions []string
	var args []interface{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		conditions = append(conditions, fmt.Sprintf("p.creator_id=$%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("p.type=$%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		conditions = append(conditions, fmt.Sprintf("p.description ILIKE '%%' || $%d || '%%'", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	switch filter.Sort {
	case "oldest":
		query += " ORDER BY p.created_at ASC"
	case "price_high":
		query += " ORDER BY p.price DESC"
	case "price_low":
		query += " ORDER BY p.price ASC"
	default:
		query += " ORDER BY p.created_at DESC"
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.PostWithCreator
	for rows.Next() {
		var post models.PostWithCreator
		if err := rows.Scan(
			&post.ID, &post.CreatorID, &post.Title, &post.Description, &post.URL,
			&post.Type, &post.IsPublic, &post.Price, &post.CreatedAt,
			&post.Creator.ID, &post.Creator.Name, &post.Creator.AvatarURL); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}

// HasAccess reports whether the user bought access to the post.
func (r *PostRepo) HasAccess(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM post_access WHERE post_id=$1 AND user_id=$2)`, postID, userID)
	return exists, err
}
