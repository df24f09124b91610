package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v81"

	"fanhub/internal/models"
	"fanhub/internal/observability"
	"fanhub/internal/payments"
	"fanhub/internal/repositories"
	"fanhub/internal/telemetry"
)

// WebhookHandler consumes Stripe webhook events. Signature or payload
// failures return 400 without mutating anything; Stripe retries on its
// own schedule, so there is no retry logic here.
type WebhookHandler struct {
	subscriptions repositories.SubscriptionRepository
	billing       repositories.BillingRepository
	payments      payments.Client
	audit         *telemetry.AuditEmitter
}

// NewWebhookHandler builds a WebhookHandler.
func NewWebhookHandler(subscriptions repositories.SubscriptionRepository, billing repositories.BillingRepository, payments payments.Client, audit *telemetry.AuditEmitter) *WebhookHandler {
	return &WebhookHandler{
		subscriptions: subscriptions,
		billing:       billing,
		payments:      payments,
		audit:         audit,
	}
}

// HandleStripeWebhook verifies and dispatches one event.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read payload"})
		return
	}

	event, err := h.payments.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("stripe webhook signature rejected: %v", err)
		observability.IncWebhookEvent("unknown", "signature_failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	eventType := string(event.Type)
	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, eventType, event)
	case "customer.subscription.created", "customer.subscription.updated":
		h.handleSubscriptionChanged(c, eventType, event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(c, eventType, event)
	default:
		observability.IncWebhookEvent(eventType, "ignored")
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, eventType string, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.reject(c, http.StatusBadRequest, eventType, "bad_payload", "malformed checkout session", err)
		return
	}

	// Subscription-mode sessions are synced by the subscription
	// lifecycle events; only one-off post purchases are settled here.
	if session.Mode == stripe.CheckoutSessionModeSubscription {
		observability.IncWebhookEvent(eventType, "ignored")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	postID, err1 := uuid.Parse(session.Metadata["postId"])
	creatorID, err2 := uuid.Parse(session.Metadata["creatorId"])
	userID, err3 := uuid.Parse(session.Metadata["userId"])
	if err1 != nil || err2 != nil || err3 != nil {
		h.reject(c, http.StatusBadRequest, eventType, "missing_metadata", "checkout session missing post metadata", nil)
		return
	}

	ctx := c.Request.Context()
	txn, err := h.billing.CreateTransaction(ctx, repositories.NewTransaction{
		PostID:          &postID,
		CreatorID:       creatorID,
		UserID:          userID,
		Amount:          int(session.AmountTotal),
		StripeSessionID: session.ID,
	})
	if err != nil {
		h.reject(c, http.StatusInternalServerError, eventType, "store_failed", "could not record transaction", err)
		return
	}
	if err := h.billing.GrantPostAccess(ctx, postID, userID); err != nil {
		h.reject(c, http.StatusInternalServerError, eventType, "store_failed", "could not grant post access", err)
		return
	}

	observability.IncWebhookEvent(eventType, "processed")
	h.audit.Emit(ctx, "INFO",
		fmt.Sprintf("post %s purchased by %s (transaction %s)", postID, userID, txn.ID),
		requestIDFromContext(c), nil)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handleSubscriptionChanged(c *gin.Context, eventType string, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.reject(c, http.StatusBadRequest, eventType, "bad_payload", "malformed subscription", err)
		return
	}

	status := models.SubscriptionCancelled
	if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
		status = models.SubscriptionActive
	}

	ctx := c.Request.Context()
	creatorID, err1 := uuid.Parse(sub.Metadata["creatorId"])
	subscriberID, err2 := uuid.Parse(sub.Metadata["subscriberId"])
	if err1 != nil || err2 != nil {
		// Updated events can arrive without the checkout metadata; the
		// row created by the created event still identifies the pair.
		if _, err := h.subscriptions.GetByStripeID(ctx, sub.ID); err == nil {
			if err := h.subscriptions.SetStatusByStripeID(ctx, sub.ID, status); err != nil {
				h.reject(c, http.StatusInternalServerError, eventType, "store_failed", "could not update subscription", err)
				return
			}
			observability.IncWebhookEvent(eventType, "processed")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.reject(c, http.StatusBadRequest, eventType, "missing_metadata", "subscription missing creator metadata", nil)
		return
	}

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}

	if _, err := h.subscriptions.UpsertSubscription(ctx, repositories.SubscriptionUpsert{
		CreatorID:            creatorID,
		SubscriberID:         subscriberID,
		Status:               status,
		StripeSubscriptionID: sub.ID,
		CurrentPeriodEnd:     periodEnd,
	}); err != nil {
		h.reject(c, http.StatusInternalServerError, eventType, "store_failed", "could not upsert subscription", err)
		return
	}

	observability.IncWebhookEvent(eventType, "processed")
	h.audit.Emit(ctx, "INFO",
		fmt.Sprintf("subscription %s for creator %s is now %s", sub.ID, creatorID, status),
		requestIDFromContext(c), nil)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handleSubscriptionDeleted(c *gin.Context, eventType string, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.reject(c, http.StatusBadRequest, eventType, "bad_payload", "malformed subscription", err)
		return
	}

	err := h.subscriptions.SetStatusByStripeID(c.Request.Context(), sub.ID, models.SubscriptionCancelled)
	if err != nil && !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		h.reject(c, http.StatusInternalServerError, eventType, "store_failed", "could not cancel subscription", err)
		return
	}

	observability.IncWebhookEvent(eventType, "processed")
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) reject(c *gin.Context, status int, eventType, outcome, reason string, err error) {
	if err != nil {
		log.Printf("stripe webhook %s: %s: %v", eventType, reason, err)
	} else {
		log.Printf("stripe webhook %s: %s", eventType, reason)
	}
	observability.IncWebhookEvent(eventType, outcome)
	c.JSON(status, gin.H{"error": reason})
}
