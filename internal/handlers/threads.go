package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fanhub/internal/models"
	"fanhub/internal/repositories"
	"fanhub/internal/ws"
)

// ThreadHandler manages the inbox endpoints.
type ThreadHandler struct {
	threads  repositories.ThreadRepository
	messages repositories.MessageRepository
	profiles repositories.ProfileRepository
	posts    repositories.PostRepository
	hub      *ws.Hub
}

// NewThreadHandler builds a ThreadHandler.
func NewThreadHandler(threads repositories.ThreadRepository, messages repositories.MessageRepository, profiles repositories.ProfileRepository, posts repositories.PostRepository, hub *ws.Hub) *ThreadHandler {
	return &ThreadHandler{
		threads:  threads,
		messages: messages,
		profiles: profiles,
		posts:    posts,
		hub:      hub,
	}
}

// ListThreads returns the caller's threads, newest activity first.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	userID := currentUserID(c)

	summaries, err := h.threads.ListThreadSummaries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load threads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"threads": summaries})
}

// GetThreadMessages returns a thread's messages in ascending order,
// with sender summaries and attached posts joined in.
func (h *ThreadHandler) GetThreadMessages(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	userID := currentUserID(c)
	thread, ok := h.loadThreadForUser(c, threadID, userID)
	if !ok {
		return
	}

	msgs, err := h.messages.ListThreadMessages(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senders := map[uuid.UUID]models.ProfileSummary{}
	for _, id := range []uuid.UUID{thread.User1ID, thread.User2ID} {
		profile, err := h.profiles.GetProfile(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
			return
		}
		senders[id] = profile.Summary()
	}

	attachments := map[uuid.UUID]models.Post{}
	for _, m := range msgs {
		if m.AttachedContentID == nil {
			continue
		}
		if _, seen := attachments[*m.AttachedContentID]; seen {
			continue
		}
		post, err := h.posts.GetPost(c.Request.Context(), *m.AttachedContentID)
		if err != nil {
			if errors.Is(err, repositories.ErrPostNotFound) {
				continue
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load attachments"})
			return
		}
		attachments[post.ID] = post
	}

	type messageResponse struct {
		models.Message
		Sender       models.ProfileSummary `json:"sender"`
		AttachedPost *models.Post          `json:"attached_post,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		item := messageResponse{Message: m, Sender: senders[m.SenderID]}
		if m.AttachedContentID != nil {
			if post, ok := attachments[*m.AttachedContentID]; ok {
				item.AttachedPost = &post
			}
		}
		resp = append(resp, item)
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// MarkThreadRead marks every unread message addressed to the caller in
// the thread and notifies both rooms.
func (h *ThreadHandler) MarkThreadRead(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	userID := currentUserID(c)
	thread, ok := h.loadThreadForUser(c, threadID, userID)
	if !ok {
		return
	}

	marked, err := h.messages.MarkThreadRead(c.Request.Context(), threadID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark thread read"})
		return
	}

	if marked > 0 {
		h.hub.BroadcastThreadRead(threadID, userID)
		h.hub.BroadcastInboxRead(thread.OtherUser(userID), threadID)
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// UnreadCount returns the caller's total unread message count.
func (h *ThreadHandler) UnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	count, err := h.messages.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *ThreadHandler) loadThreadForUser(c *gin.Context, threadID, userID uuid.UUID) (models.Thread, bool) {
	thread, err := h.threads.GetThread(c.Request.Context(), threadID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrThreadNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "thread not found"})
		return models.Thread{}, false
	}
	if !thread.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a thread participant"})
		return models.Thread{}, false
	}
	return thread, true
}
