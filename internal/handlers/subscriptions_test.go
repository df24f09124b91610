package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fanhub/internal/mocks"
	"fanhub/internal/models"
)

func setupSubscriptionRouter(handler *SubscriptionHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	r.POST("/subscriptions/checkout", handler.CreateSubscriptionCheckout)
	r.POST("/posts/:post_id/checkout", handler.CreatePostCheckout)
	r.POST("/subscriptions/cancel", handler.CancelSubscription)
	return r
}

func TestSubscriptionCheckoutRequiresCreator(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	payments := new(mocks.PaymentsClientMock)
	handler := NewSubscriptionHandler(new(mocks.SubscriptionRepositoryMock), profiles, new(mocks.PostRepositoryMock), payments)
	router := setupSubscriptionRouter(handler)

	profiles.On("GetProfile", mock.Anything, testRecipientID).
		Return(models.Profile{ID: testRecipientID, Name: "ana"}, nil).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"creator_id":%q}`, testRecipientID))
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payments.AssertNotCalled(t, "CreateSubscriptionCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscriptionCheckoutSuccess(t *testing.T) {
	profiles := new(mocks.ProfileRepositoryMock)
	subs := new(mocks.SubscriptionRepositoryMock)
	payments := new(mocks.PaymentsClientMock)
	handler := NewSubscriptionHandler(subs, profiles, new(mocks.PostRepositoryMock), payments)
	router := setupSubscriptionRouter(handler)

	price := 500
	creator := models.Profile{ID: testRecipientID, Name: "ana", SubscriptionPrice: &price}
	profiles.On("GetProfile", mock.Anything, testRecipientID).Return(creator, nil).Once()
	subs.On("HasActiveSubscription", mock.Anything, testRecipientID, testUserID).Return(false, nil).Once()
	payments.On("CreateSubscriptionCheckout", mock.Anything, creator, testUserID).
		Return("https://checkout.example/s1", nil).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"creator_id":%q}`, testRecipientID))
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "https://checkout.example/s1", resp["url"])
	payments.AssertExpectations(t)
}

func TestPostCheckoutFreePostRejected(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	payments := new(mocks.PaymentsClientMock)
	handler := NewSubscriptionHandler(new(mocks.SubscriptionRepositoryMock), new(mocks.ProfileRepositoryMock), posts, payments)
	router := setupSubscriptionRouter(handler)

	postID := uuid.New()
	posts.On("GetPost", mock.Anything, postID).
		Return(models.Post{ID: postID, CreatorID: testRecipientID, Price: 0}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID.String()+"/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payments.AssertNotCalled(t, "CreatePostCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelSubscription(t *testing.T) {
	subs := new(mocks.SubscriptionRepositoryMock)
	payments := new(mocks.PaymentsClientMock)
	handler := NewSubscriptionHandler(subs, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), payments)
	router := setupSubscriptionRouter(handler)

	subs.On("ListForSubscriber", mock.Anything, testUserID).Return([]models.Subscription{{
		ID:                   uuid.New(),
		CreatorID:            testRecipientID,
		SubscriberID:         testUserID,
		Status:               models.SubscriptionActive,
		StripeSubscriptionID: "sub_9",
	}}, nil).Once()
	payments.On("CancelSubscription", mock.Anything, "sub_9").Return(nil).Once()
	subs.On("SetStatusByStripeID", mock.Anything, "sub_9", models.SubscriptionCancelled).Return(nil).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"creator_id":%q}`, testRecipientID))
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/cancel", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	payments.AssertExpectations(t)
	subs.AssertExpectations(t)
}

func TestCancelSubscriptionNotSubscribed(t *testing.T) {
	subs := new(mocks.SubscriptionRepositoryMock)
	payments := new(mocks.PaymentsClientMock)
	handler := NewSubscriptionHandler(subs, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), payments)
	router := setupSubscriptionRouter(handler)

	subs.On("ListForSubscriber", mock.Anything, testUserID).Return([]models.Subscription{}, nil).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"creator_id":%q}`, testRecipientID))
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/cancel", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	payments.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything)
}
