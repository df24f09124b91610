package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	stripe "github.com/stripe/stripe-go/v81"

	"fanhub/internal/models"
	"fanhub/internal/payments"
	"fanhub/internal/services"
)

type ViewRecorderMock struct {
	mock.Mock
}

func (m *ViewRecorderMock) RecordView(ctx context.Context, postID, viewerID, creatorID uuid.UUID) error {
	args := m.Called(ctx, postID, viewerID, creatorID)
	return args.Error(0)
}

func (m *ViewRecorderMock) CountViewsForCreator(ctx context.Context, creatorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).(int64), args.Error(1)
}

type PaymentsClientMock struct {
	mock.Mock
}

func (m *PaymentsClientMock) CreateSubscriptionCheckout(ctx context.Context, creator models.Profile, subscriberID uuid.UUID) (string, error) {
	args := m.Called(ctx, creator, subscriberID)
	return args.String(0), args.Error(1)
}

func (m *PaymentsClientMock) CreatePostCheckout(ctx context.Context, post models.Post, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, post, userID)
	return args.String(0), args.Error(1)
}

func (m *PaymentsClientMock) CancelSubscription(ctx context.Context, stripeSubscriptionID string) error {
	args := m.Called(ctx, stripeSubscriptionID)
	return args.Error(0)
}

func (m *PaymentsClientMock) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)
	var event stripe.Event
	if val := args.Get(0); val != nil {
		event = val.(stripe.Event)
	}
	return event, args.Error(1)
}

var (
	_ services.ViewRecorder   = (*ViewRecorderMock)(nil)
	_ services.MediaUploader  = (*MediaUploaderMock)(nil)
	_ services.SessionManager = (*SessionManagerMock)(nil)
	_ payments.Client         = (*PaymentsClientMock)(nil)
)
