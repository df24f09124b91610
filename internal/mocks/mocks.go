package mocks

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fanhub/internal/models"
	"fanhub/internal/repositories"
)

type ThreadRepositoryMock struct {
	mock.Mock
}

func (m *ThreadRepositoryMock) GetOrCreateThread(ctx context.Context, userID, otherID uuid.UUID) (models.Thread, error) {
	args := m.Called(ctx, userID, otherID)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadRepositoryMock) GetThread(ctx context.Context, threadID uuid.UUID) (models.Thread, error) {
	args := m.Called(ctx, threadID)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadRepositoryMock) ListThreadSummaries(ctx context.Context, userID uuid.UUID) ([]models.ThreadSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ThreadSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ThreadSummary)
	}
	return list, args.Error(1)
}

func (m *ThreadRepositoryMock) SetLastMessage(ctx context.Context, threadID, messageID uuid.UUID) error {
	args := m.Called(ctx, threadID, messageID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateDirectMessage(ctx context.Context, msg repositories.NewDirectMessage) (models.Message, error) {
	args := m.Called(ctx, msg)
	var message models.Message
	if val := args.Get(0); val != nil {
		message = val.(models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageRepositoryMock) CreateMassMessage(ctx context.Context, msg repositories.NewMassMessage) (models.Message, error) {
	args := m.Called(ctx, msg)
	var message models.Message
	if val := args.Get(0); val != nil {
		message = val.(models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageRepositoryMock) ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, threadID)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID uuid.UUID) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var message models.Message
	if val := args.Get(0); val != nil {
		message = val.(models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageRepositoryMock) MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, threadID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkMassMessageRead(ctx context.Context, messageID, userID uuid.UUID) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) ListMassRecipients(ctx context.Context, messageID uuid.UUID) ([]models.MassMessageRecipient, error) {
	args := m.Called(ctx, messageID)
	var list []models.MassMessageRecipient
	if val := args.Get(0); val != nil {
		list = val.([]models.MassMessageRecipient)
	}
	return list, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) CreateProfile(ctx context.Context, name, email, passwordHash string) (models.Profile, error) {
	args := m.Called(ctx, name, email, passwordHash)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	args := m.Called(ctx, id)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	args := m.Called(ctx, email)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) SearchProfiles(ctx context.Context, query string, limit int) ([]models.ProfileSummary, error) {
	args := m.Called(ctx, query, limit)
	var list []models.ProfileSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ProfileSummary)
	}
	return list, args.Error(1)
}

func (m *ProfileRepositoryMock) UpdateCreatorSettings(ctx context.Context, id uuid.UUID, subscriptionPrice *int, bio *string) (models.Profile, error) {
	args := m.Called(ctx, id, subscriptionPrice, bio)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) CountCreators(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ProfileRepositoryMock) CountSupporters(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type SubscriptionRepositoryMock struct {
	mock.Mock
}

func (m *SubscriptionRepositoryMock) ActiveSubscriberIDs(ctx context.Context, creatorID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, creatorID)
	var list []uuid.UUID
	if val := args.Get(0); val != nil {
		list = val.([]uuid.UUID)
	}
	return list, args.Error(1)
}

func (m *SubscriptionRepositoryMock) HasActiveSubscription(ctx context.Context, creatorID, subscriberID uuid.UUID) (bool, error) {
	args := m.Called(ctx, creatorID, subscriberID)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriptionRepositoryMock) UpsertSubscription(ctx context.Context, sub repositories.SubscriptionUpsert) (models.Subscription, error) {
	args := m.Called(ctx, sub)
	var subscription models.Subscription
	if val := args.Get(0); val != nil {
		subscription = val.(models.Subscription)
	}
	return subscription, args.Error(1)
}

func (m *SubscriptionRepositoryMock) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (models.Subscription, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	var subscription models.Subscription
	if val := args.Get(0); val != nil {
		subscription = val.(models.Subscription)
	}
	return subscription, args.Error(1)
}

func (m *SubscriptionRepositoryMock) SetStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error {
	args := m.Called(ctx, stripeSubscriptionID, status)
	return args.Error(0)
}

func (m *SubscriptionRepositoryMock) ListForSubscriber(ctx context.Context, subscriberID uuid.UUID) ([]models.Subscription, error) {
	args := m.Called(ctx, subscriberID)
	var list []models.Subscription
	if val := args.Get(0); val != nil {
		list = val.([]models.Subscription)
	}
	return list, args.Error(1)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) CreatePost(ctx context.Context, post repositories.NewPost) (models.Post, error) {
	args := m.Called(ctx, post)
	var created models.Post
	if val := args.Get(0); val != nil {
		created = val.(models.Post)
	}
	return created, args.Error(1)
}

func (m *PostRepositoryMock) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	args := m.Called(ctx, postID)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) ListPosts(ctx context.Context, filter repositories.PostFilter) ([]models.PostWithCreator, error) {
	args := m.Called(ctx, filter)
	var list []models.PostWithCreator
	if val := args.Get(0); val != nil {
		list = val.([]models.PostWithCreator)
	}
	return list, args.Error(1)
}

func (m *PostRepositoryMock) HasAccess(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

type BillingRepositoryMock struct {
	mock.Mock
}

func (m *BillingRepositoryMock) CreateTransaction(ctx context.Context, txn repositories.NewTransaction) (models.Transaction, error) {
	args := m.Called(ctx, txn)
	var created models.Transaction
	if val := args.Get(0); val != nil {
		created = val.(models.Transaction)
	}
	return created, args.Error(1)
}

func (m *BillingRepositoryMock) GrantPostAccess(ctx context.Context, postID, userID uuid.UUID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *BillingRepositoryMock) TotalCompletedAmount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MediaUploaderMock struct {
	mock.Mock
}

func (m *MediaUploaderMock) UploadFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	args := m.Called(ctx, fileHeader, folder)
	return args.String(0), args.Error(1)
}

type SessionManagerMock struct {
	mock.Mock
}

func (m *SessionManagerMock) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *SessionManagerMock) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	var id uuid.UUID
	if val := args.Get(0); val != nil {
		id = val.(uuid.UUID)
	}
	return id, args.Error(1)
}

func (m *SessionManagerMock) Destroy(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

var (
	_ repositories.ThreadRepository       = (*ThreadRepositoryMock)(nil)
	_ repositories.MessageRepository      = (*MessageRepositoryMock)(nil)
	_ repositories.ProfileRepository      = (*ProfileRepositoryMock)(nil)
	_ repositories.SubscriptionRepository = (*SubscriptionRepositoryMock)(nil)
	_ repositories.PostRepository         = (*PostRepositoryMock)(nil)
	_ repositories.BillingRepository      = (*BillingRepositoryMock)(nil)
)
