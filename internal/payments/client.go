package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"fanhub/internal/models"
)

// Client is the payment-processor boundary. Checkout capture and
// billing run entirely on the processor's side; this service only
// creates redirect sessions and consumes the signed webhooks.
type Client interface {
	CreateSubscriptionCheckout(ctx context.Context, creator models.Profile, subscriberID uuid.UUID) (string, error)
	CreatePostCheckout(ctx context.Context, post models.Post, userID uuid.UUID) (string, error)
	CancelSubscription(ctx context.Context, stripeSubscriptionID string) error
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	api           *client.API
	webhookSecret string
	frontendURL   string
}

// NewStripeClient constructs a StripeClient.
func NewStripeClient(secretKey, webhookSecret, frontendURL string) *StripeClient {
	return &StripeClient{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		frontendURL:   frontendURL,
	}
}

// CreateSubscriptionCheckout opens a recurring checkout session for a
// creator's subscription and returns the redirect URL. The creator and
// subscriber ids ride along as metadata so the webhook can map the
// completed session back to a subscription row.
func (c *StripeClient) CreateSubscriptionCheckout(ctx context.Context, creator models.Profile, subscriberID uuid.UUID) (string, error) {
	if creator.SubscriptionPrice == nil || *creator.SubscriptionPrice <= 0 {
		return "", fmt.Errorf("creator %s has no subscription price", creator.ID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(c.frontendURL + "/feed?checkout=success"),
		CancelURL:  stripe.String(c.frontendURL + "/creator/" + creator.ID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(int64(*creator.SubscriptionPrice)),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String("month"),
				},
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Subscription to " + creator.Name),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"creatorId":    creator.ID.String(),
				"subscriberId": subscriberID.String(),
			},
		},
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create subscription checkout: %w", err)
	}
	return sess.URL, nil
}

// CreatePostCheckout opens a one-off checkout session for a paid post.
func (c *StripeClient) CreatePostCheckout(ctx context.Context, post models.Post, userID uuid.UUID) (string, error) {
	if post.Price <= 0 {
		return "", fmt.Errorf("post %s is not purchasable", post.ID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.frontendURL + "/feed?checkout=success"),
		CancelURL:  stripe.String(c.frontendURL + "/feed"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(int64(post.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(post.Title),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.AddMetadata("postId", post.ID.String())
	params.AddMetadata("creatorId", post.CreatorID.String())
	params.AddMetadata("userId", userID.String())

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create post checkout: %w", err)
	}
	return sess.URL, nil
}

// CancelSubscription cancels the subscription at the processor.
func (c *StripeClient) CancelSubscription(ctx context.Context, stripeSubscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := c.api.Subscriptions.Cancel(stripeSubscriptionID, params); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

// VerifyWebhook checks the webhook signature against the shared secret
// and parses the event. Callers reject the request with 400 when this
// fails; nothing is mutated for an unverified payload.
func (c *StripeClient) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, c.webhookSecret)
}
