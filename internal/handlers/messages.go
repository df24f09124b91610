package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fanhub/internal/observability"
	"fanhub/internal/repositories"
	"fanhub/internal/services"
	"fanhub/internal/telemetry"
	"fanhub/internal/ws"
)

// MessageHandler manages direct and mass sends.
type MessageHandler struct {
	threads       repositories.ThreadRepository
	messages      repositories.MessageRepository
	profiles      repositories.ProfileRepository
	posts         repositories.PostRepository
	subscriptions repositories.SubscriptionRepository
	media         services.MediaUploader
	hub           *ws.Hub
	audit         *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	threads repositories.ThreadRepository,
	messages repositories.MessageRepository,
	profiles repositories.ProfileRepository,
	posts repositories.PostRepository,
	subscriptions repositories.SubscriptionRepository,
	media services.MediaUploader,
	hub *ws.Hub,
	audit *telemetry.AuditEmitter,
) *MessageHandler {
	return &MessageHandler{
		threads:       threads,
		messages:      messages,
		profiles:      profiles,
		posts:         posts,
		subscriptions: subscriptions,
		media:         media,
		hub:           hub,
		audit:         audit,
	}
}

type sendRequest struct {
	RecipientID       string `json:"recipient_id" form:"recipient_id"`
	Content           string `json:"content" form:"content"`
	AttachedContentID string `json:"attached_content_id" form:"attached_content_id"`
	ContentPrice      int    `json:"content_price" form:"content_price"`
}

// SendDirect stores a direct message, after any attachment upload has
// succeeded, and pushes it to the thread and inbox rooms.
func (h *MessageHandler) SendDirect(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient id"})
		return
	}

	userID := currentUserID(c)
	if recipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}
	if _, err := h.profiles.GetProfile(c.Request.Context(), recipientID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "recipient not found"})
		return
	}

	fileHeader, _ := c.FormFile("attachment")
	if strings.TrimSpace(req.Content) == "" && fileHeader == nil && req.AttachedContentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message needs content or an attachment"})
		return
	}

	thread, err := h.threads.GetOrCreateThread(c.Request.Context(), userID, recipientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve thread"})
		return
	}

	// The upload goes first so a failed upload leaves no message row.
	attachedID, ok := h.resolveAttachment(c, userID, fileHeader, req)
	if !ok {
		return
	}

	msg, err := h.messages.CreateDirectMessage(c.Request.Context(), repositories.NewDirectMessage{
		ThreadID:          thread.ID,
		SenderID:          userID,
		RecipientID:       recipientID,
		Content:           req.Content,
		AttachedContentID: attachedID,
		ContentPrice:      req.ContentPrice,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	// Pointer update is a read optimization; a failure here must not
	// fail the send.
	if err := h.threads.SetLastMessage(c.Request.Context(), thread.ID, msg.ID); err != nil {
		log.Printf("update thread pointer for %s: %v", thread.ID, err)
	}

	h.hub.BroadcastThreadMessage(thread.ID, msg)
	h.hub.BroadcastInboxMessage(recipientID, msg)
	observability.IncMessageSent("direct")
	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("direct message %s sent in thread %s", msg.ID, thread.ID),
		requestIDFromContext(c), userIDFromContext(c))

	c.JSON(http.StatusCreated, msg)
}

// SendMass fans one message out to every active subscriber of the
// caller in a single transaction.
func (h *MessageHandler) SendMass(c *gin.Context) {
	var req struct {
		Content           string `json:"content"`
		AttachedContentID string `json:"attached_content_id"`
		ContentPrice      int    `json:"content_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Content) == "" && req.AttachedContentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message needs content or an attachment"})
		return
	}

	userID := currentUserID(c)

	var attachedID *uuid.UUID
	if req.AttachedContentID != "" {
		id, ok := h.ownedPost(c, userID, req.AttachedContentID)
		if !ok {
			return
		}
		attachedID = &id
	}

	recipients, err := h.subscriptions.ActiveSubscriberIDs(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load subscribers"})
		return
	}
	if len(recipients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no subscribers"})
		return
	}

	msg, err := h.messages.CreateMassMessage(c.Request.Context(), repositories.NewMassMessage{
		SenderID:          userID,
		Content:           req.Content,
		AttachedContentID: attachedID,
		ContentPrice:      req.ContentPrice,
		RecipientIDs:      recipients,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNoRecipients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no subscribers"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	for _, recipientID := range recipients {
		h.hub.BroadcastInboxMessage(recipientID, msg)
	}
	observability.IncMessageSent("mass")
	observability.ObserveMassFanout(len(recipients))
	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("mass message %s sent to %d subscribers", msg.ID, len(recipients)),
		requestIDFromContext(c), userIDFromContext(c))

	c.JSON(http.StatusCreated, gin.H{"message": msg, "recipient_count": len(recipients)})
}

// MarkMessageRead marks the caller's copy of a mass message as read.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := currentUserID(c)
	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if !msg.IsMassMessage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a mass message"})
		return
	}

	if err := h.messages.MarkMassMessageRead(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not mark message read"})
		return
	}

	h.hub.BroadcastInboxMessageRead(userID, messageID)
	c.Status(http.StatusNoContent)
}

// ListMassRecipients returns the delivery and read state of a mass
// message to its sender.
func (h *MessageHandler) ListMassRecipients(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := currentUserID(c)
	msg, err := h.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the sender"})
		return
	}

	recipients, err := h.messages.ListMassRecipients(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recipients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipients": recipients})
}

// resolveAttachment uploads a new file or validates a referenced post
// and returns the attached content id, or nil when there is none.
func (h *MessageHandler) resolveAttachment(c *gin.Context, userID uuid.UUID, fileHeader *multipart.FileHeader, req sendRequest) (*uuid.UUID, bool) {
	if fileHeader != nil {
		url, err := h.media.UploadFromHeader(c.Request.Context(), fileHeader, "messages")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "attachment upload failed"})
			return nil, false
		}
		post, err := h.posts.CreatePost(c.Request.Context(), repositories.NewPost{
			CreatorID: userID,
			Title:     fileHeader.Filename,
			URL:       url,
			Type:      services.MediaTypeFromContentType(fileHeader.Header.Get("Content-Type")),
			IsPublic:  false,
			Price:     req.ContentPrice,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store attachment"})
			return nil, false
		}
		return &post.ID, true
	}

	if req.AttachedContentID != "" {
		id, ok := h.ownedPost(c, userID, req.AttachedContentID)
		if !ok {
			return nil, false
		}
		return &id, true
	}

	return nil, true
}

func (h *MessageHandler) ownedPost(c *gin.Context, userID uuid.UUID, rawID string) (uuid.UUID, bool) {
	postID, err := uuid.Parse(rawID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attached content id"})
		return uuid.Nil, false
	}
	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "attached content not found"})
		return uuid.Nil, false
	}
	if post.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "attached content is not yours"})
		return uuid.Nil, false
	}
	return post.ID, true
}
