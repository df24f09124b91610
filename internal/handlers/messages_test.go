package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fanhub/internal/mocks"
	"fanhub/internal/models"
	"fanhub/internal/repositories"
	"fanhub/internal/ws"
)

var (
	testUserID      = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testRecipientID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testThreadID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	r.POST("/messages", handler.SendDirect)
	r.POST("/messages/mass", handler.SendMass)
	r.POST("/messages/:message_id/read", handler.MarkMessageRead)
	r.GET("/messages/:message_id/recipients", handler.ListMassRecipients)
	return r
}

func newMessageHandlerForTest(threads *mocks.ThreadRepositoryMock, messages *mocks.MessageRepositoryMock, profiles *mocks.ProfileRepositoryMock, posts *mocks.PostRepositoryMock, subs *mocks.SubscriptionRepositoryMock, media *mocks.MediaUploaderMock) *MessageHandler {
	return NewMessageHandler(threads, messages, profiles, posts, subs, media, ws.NewHub(), nil)
}

func TestSendDirectSuccess(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	profiles := new(mocks.ProfileRepositoryMock)
	handler := newMessageHandlerForTest(threads, messages, profiles, new(mocks.PostRepositoryMock), new(mocks.SubscriptionRepositoryMock), new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	thread := models.Thread{ID: testThreadID, User1ID: testUserID, User2ID: testRecipientID}
	msgID := uuid.New()

	profiles.On("GetProfile", mock.Anything, testRecipientID).Return(models.Profile{ID: testRecipientID}, nil).Once()
	threads.On("GetOrCreateThread", mock.Anything, testUserID, testRecipientID).Return(thread, nil).Once()
	messages.On("CreateDirectMessage", mock.Anything, repositories.NewDirectMessage{
		ThreadID:    testThreadID,
		SenderID:    testUserID,
		RecipientID: testRecipientID,
		Content:     "hi there",
	}).Return(models.Message{ID: msgID, ThreadID: &thread.ID, SenderID: testUserID, Content: "hi there"}, nil).Once()
	threads.On("SetLastMessage", mock.Anything, testThreadID, msgID).Return(nil).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"recipient_id":%q,"content":"hi there"}`, testRecipientID))
	req := httptest.NewRequest(http.MethodPost, "/messages", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	threads.AssertExpectations(t)
	messages.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestSendDirectToSelfRejected(t *testing.T) {
	handler := newMessageHandlerForTest(new(mocks.ThreadRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), new(mocks.SubscriptionRepositoryMock), new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	body := bytes.NewBufferString(fmt.Sprintf(`{"recipient_id":%q,"content":"hi"}`, testUserID))
	req := httptest.NewRequest(http.MethodPost, "/messages", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendDirectUploadFailureLeavesNoMessage(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	profiles := new(mocks.ProfileRepositoryMock)
	media := new(mocks.MediaUploaderMock)
	handler := newMessageHandlerForTest(threads, messages, profiles, new(mocks.PostRepositoryMock), new(mocks.SubscriptionRepositoryMock), media)
	router := setupMessageRouter(handler)

	thread := models.Thread{ID: testThreadID, User1ID: testUserID, User2ID: testRecipientID}
	profiles.On("GetProfile", mock.Anything, testRecipientID).Return(models.Profile{ID: testRecipientID}, nil).Once()
	threads.On("GetOrCreateThread", mock.Anything, testUserID, testRecipientID).Return(thread, nil).Once()
	media.On("UploadFromHeader", mock.Anything, mock.Anything, "messages").Return("", assert.AnError).Once()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("recipient_id", testRecipientID.String()))
	require.NoError(t, writer.WriteField("content", "see attached"))
	part, err := writer.CreateFormFile("attachment", "pic.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpegdata"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/messages", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	messages.AssertNotCalled(t, "CreateDirectMessage", mock.Anything, mock.Anything)
	media.AssertExpectations(t)
}

func TestSendMassNoSubscribers(t *testing.T) {
	subs := new(mocks.SubscriptionRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newMessageHandlerForTest(new(mocks.ThreadRepositoryMock), messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), subs, new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	subs.On("ActiveSubscriberIDs", mock.Anything, testUserID).Return([]uuid.UUID{}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/mass", bytes.NewBufferString(`{"content":"new drop"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "no subscribers", resp["error"])
	messages.AssertNotCalled(t, "CreateMassMessage", mock.Anything, mock.Anything)
	subs.AssertExpectations(t)
}

func TestSendMassFansOutToSnapshot(t *testing.T) {
	subs := new(mocks.SubscriptionRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newMessageHandlerForTest(new(mocks.ThreadRepositoryMock), messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), subs, new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	recipients := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	subs.On("ActiveSubscriberIDs", mock.Anything, testUserID).Return(recipients, nil).Once()
	messages.On("CreateMassMessage", mock.Anything, repositories.NewMassMessage{
		SenderID:     testUserID,
		Content:      "new drop",
		RecipientIDs: recipients,
	}).Return(models.Message{ID: uuid.New(), SenderID: testUserID, IsMassMessage: true, Content: "new drop"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/mass", bytes.NewBufferString(`{"content":"new drop"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		RecipientCount int `json:"recipient_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, len(recipients), resp.RecipientCount)
	subs.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestMarkMessageReadMassOnly(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := newMessageHandlerForTest(new(mocks.ThreadRepositoryMock), messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), new(mocks.SubscriptionRepositoryMock), new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	msgID := uuid.New()
	messages.On("GetMessage", mock.Anything, msgID).Return(models.Message{ID: msgID, IsMassMessage: false}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/"+msgID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messages.AssertNotCalled(t, "MarkMassMessageRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkMessageReadSuccess(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := newMessageHandlerForTest(new(mocks.ThreadRepositoryMock), messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), new(mocks.SubscriptionRepositoryMock), new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	msgID := uuid.New()
	messages.On("GetMessage", mock.Anything, msgID).Return(models.Message{ID: msgID, IsMassMessage: true}, nil).Once()
	messages.On("MarkMassMessageRead", mock.Anything, msgID, testUserID).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/"+msgID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	messages.AssertExpectations(t)
}

func TestListMassRecipientsSenderOnly(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := newMessageHandlerForTest(new(mocks.ThreadRepositoryMock), messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock), new(mocks.SubscriptionRepositoryMock), new(mocks.MediaUploaderMock))
	router := setupMessageRouter(handler)

	msgID := uuid.New()
	messages.On("GetMessage", mock.Anything, msgID).Return(models.Message{ID: msgID, SenderID: testRecipientID, IsMassMessage: true}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/"+msgID.String()+"/recipients", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messages.AssertNotCalled(t, "ListMassRecipients", mock.Anything, mock.Anything)
}
