package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fanhub/internal/models"
	"fanhub/internal/payments"
	"fanhub/internal/repositories"
)

// SubscriptionHandler manages checkout creation and cancellation.
type SubscriptionHandler struct {
	subscriptions repositories.SubscriptionRepository
	profiles      repositories.ProfileRepository
	posts         repositories.PostRepository
	payments      payments.Client
}

// NewSubscriptionHandler builds a SubscriptionHandler.
func NewSubscriptionHandler(subscriptions repositories.SubscriptionRepository, profiles repositories.ProfileRepository, posts repositories.PostRepository, payments payments.Client) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		profiles:      profiles,
		posts:         posts,
		payments:      payments,
	}
}

// CreateSubscriptionCheckout opens a recurring checkout session for a
// creator's subscription.
func (h *SubscriptionHandler) CreateSubscriptionCheckout(c *gin.Context) {
	var req struct {
		CreatorID string `json:"creator_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}

	userID := currentUserID(c)
	if creatorID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot subscribe to yourself"})
		return
	}

	creator, err := h.profiles.GetProfile(c.Request.Context(), creatorID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "creator not found"})
		return
	}
	if creator.SubscriptionPrice == nil || *creator.SubscriptionPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile does not offer subscriptions"})
		return
	}

	active, err := h.subscriptions.HasActiveSubscription(c.Request.Context(), creatorID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check subscription"})
		return
	}
	if active {
		c.JSON(http.StatusConflict, gin.H{"error": "already subscribed"})
		return
	}

	url, err := h.payments.CreateSubscriptionCheckout(c.Request.Context(), creator, userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// CreatePostCheckout opens a one-off checkout session for a paid post.
func (h *SubscriptionHandler) CreatePostCheckout(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("post_id"))
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
	if post.CreatorID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot purchase your own post"})
		return
	}
	if post.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post is not for sale"})
		return
	}

	owned, err := h.posts.HasAccess(c.Request.Context(), postID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check access"})
		return
	}
	if owned {
		c.JSON(http.StatusConflict, gin.H{"error": "already purchased"})
		return
	}

	url, err := h.payments.CreatePostCheckout(c.Request.Context(), post, userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListSubscriptions returns the caller's subscriptions.
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptions.ListForSubscriber(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscriptions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// CancelSubscription cancels the caller's subscription to a creator,
// at Stripe first, then locally.
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	var req struct {
		CreatorID string `json:"creator_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}

	userID := currentUserID(c)
	subs, err := h.subscriptions.ListForSubscriber(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscriptions"})
		return
	}

	var target *models.Subscription
	for i := range subs {
		if subs[i].CreatorID == creatorID && subs[i].Status == models.SubscriptionActive {
			target = &subs[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	if err := h.payments.CancelSubscription(c.Request.Context(), target.StripeSubscriptionID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not cancel at payment provider"})
		return
	}
	if err := h.subscriptions.SetStatusByStripeID(c.Request.Context(), target.StripeSubscriptionID, models.SubscriptionCancelled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update subscription"})
		return
	}

	c.Status(http.StatusNoContent)
}
