package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fanhub/internal/models"
	"fanhub/internal/repositories"
	"fanhub/internal/services"
)

// PostHandler manages creator content and the public feed.
type PostHandler struct {
	posts repositories.PostRepository
	media services.MediaUploader
	views services.ViewRecorder
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(posts repositories.PostRepository, media services.MediaUploader, views services.ViewRecorder) *PostHandler {
	return &PostHandler{posts: posts, media: media, views: views}
}

// CreatePost uploads the file and inserts the post row.
func (h *PostHandler) CreatePost(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	price := 0
	if raw := c.PostForm("price"); raw != "" {
		price, err = strconv.Atoi(raw)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
	}
	isPublic := c.PostForm("is_public") != "false"

	userID := currentUserID(c)
	url, err := h.media.UploadFromHeader(c.Request.Context(), fileHeader, "posts")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), repositories.NewPost{
		CreatorID:   userID,
		Title:       title,
		Description: c.PostForm("description"),
		URL:         url,
		Type:        services.MediaTypeFromContentType(fileHeader.Header.Get("Content-Type")),
		IsPublic:    isPublic,
		Price:       price,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPosts returns the feed, filtered and ordered by query params.
func (h *PostHandler) ListPosts(c *gin.Context) {
	filter := repositories.PostFilter{
		Type:   c.Query("type"),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}
	if raw := c.Query("creator_id"); raw != "" {
		creatorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
			return
		}
		filter.CreatorID = &creatorID
	}
	if filter.Type != "" && filter.Type != models.PostTypeImage && filter.Type != models.PostTypeVideo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
		return
	}

	posts, err := h.posts.ListPosts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// RecordView stores one view event for a post.
func (h *PostHandler) RecordView(c *gin.Context) {
	var req struct {
		PostID string `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "post not found"})
		return
	}

	userID := currentUserID(c)
	if err := h.views.RecordView(c.Request.Context(), post.ID, userID, post.CreatorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record view"})
		return
	}

	c.Status(http.StatusNoContent)
}
