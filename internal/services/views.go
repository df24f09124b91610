package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fanhub/internal/models"
)

const viewsCollection = "post_views"

// ViewRecorder appends post-view events.
type ViewRecorder interface {
	RecordView(ctx context.Context, postID, viewerID, creatorID uuid.UUID) error
	CountViewsForCreator(ctx context.Context, creatorID uuid.UUID) (int64, error)
}

// ViewService stores view events in Mongo; the collection is
// append-only and kept out of the relational store.
type ViewService struct {
	db *mongo.Database
}

// NewViewService constructs a ViewService.
func NewViewService(db *mongo.Database) *ViewService {
	return &ViewService{db: db}
}

// RecordView appends one view event.
func (s *ViewService) RecordView(ctx context.Context, postID, viewerID, creatorID uuid.UUID) error {
	view := models.PostView{
		PostID:    postID,
		ViewerID:  viewerID,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Collection(viewsCollection).InsertOne(ctx, view)
	return err
}

// CountViewsForCreator totals recorded views across a creator's posts.
func (s *ViewService) CountViewsForCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	return s.db.Collection(viewsCollection).CountDocuments(ctx, bson.M{"creator_id": creatorID})
}
