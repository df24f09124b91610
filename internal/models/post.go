package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostTypeImage = "image"
	PostTypeVideo = "video"
)

// Post is a piece of uploaded creator content.
type Post struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CreatorID   uuid.UUID `db:"creator_id" json:"creator_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	URL         string    `db:"url" json:"url"`
	Type        string    `db:"type" json:"type"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	Price       int       `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PostWithCreator joins the creator summary onto a post for feeds.
type PostWithCreator struct {
	Post
	Creator ProfileSummary `json:"creator"`
}

// PostView is one recorded view event, stored in Mongo.
type PostView struct {
	PostID    uuid.UUID `bson:"post_id" json:"post_id"`
	ViewerID  uuid.UUID `bson:"viewer_id" json:"viewer_id"`
	CreatorID uuid.UUID `bson:"creator_id" json:"creator_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
