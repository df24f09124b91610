package handlers

import (
	"encoding/json"
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

func setupThreadRouter(handler *ThreadHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	r.GET("/threads", handler.ListThreads)
	r.GET("/threads/:thread_id/messages", handler.GetThreadMessages)
	r.POST("/threads/:thread_id/read", handler.MarkThreadRead)
	r.GET("/inbox/unread_count", handler.UnreadCount)
	return r
}

func newThreadHandlerForTest(threads *mocks.ThreadRepositoryMock, messages *mocks.MessageRepositoryMock, profiles *mocks.ProfileRepositoryMock, posts *mocks.PostRepositoryMock) *ThreadHandler {
	return NewThreadHandler(threads, messages, profiles, posts, ws.NewHub())
}

func TestListThreadsSuccess(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	handler := newThreadHandlerForTest(threads, new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock))
	router := setupThreadRouter(handler)

	summaries := []models.ThreadSummary{{
		Thread:       models.Thread{ID: testThreadID, User1ID: testUserID, User2ID: testRecipientID},
		OtherProfile: models.ProfileSummary{ID: testRecipientID, Name: "ana"},
		UnreadCount:  2,
	}}
	threads.On("ListThreadSummaries", mock.Anything, testUserID).Return(summaries, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/threads", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Threads []models.ThreadSummary `json:"threads"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Threads, 1)
	assert.Equal(t, 2, resp.Threads[0].UnreadCount)
	threads.AssertExpectations(t)
}

func TestGetThreadMessagesForbiddenForOutsider(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newThreadHandlerForTest(threads, messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock))
	router := setupThreadRouter(handler)

	outsiderThread := models.Thread{ID: testThreadID, User1ID: uuid.New(), User2ID: uuid.New()}
	threads.On("GetThread", mock.Anything, testThreadID).Return(outsiderThread, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/threads/"+testThreadID.String()+"/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messages.AssertNotCalled(t, "ListThreadMessages", mock.Anything, mock.Anything)
}

func TestGetThreadMessagesSuccess(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	profiles := new(mocks.ProfileRepositoryMock)
	handler := newThreadHandlerForTest(threads, messages, profiles, new(mocks.PostRepositoryMock))
	router := setupThreadRouter(handler)

	thread := models.Thread{ID: testThreadID, User1ID: testUserID, User2ID: testRecipientID}
	threads.On("GetThread", mock.Anything, testThreadID).Return(thread, nil).Once()
	messages.On("ListThreadMessages", mock.Anything, testThreadID).Return([]models.Message{
		{ID: uuid.New(), SenderID: testRecipientID, Content: "hello"},
	}, nil).Once()
	profiles.On("GetProfile", mock.Anything, testUserID).Return(models.Profile{ID: testUserID, Name: "me"}, nil).Once()
	profiles.On("GetProfile", mock.Anything, testRecipientID).Return(models.Profile{ID: testRecipientID, Name: "ana"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/threads/"+testThreadID.String()+"/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	threads.AssertExpectations(t)
	messages.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestMarkThreadReadReturnsCount(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newThreadHandlerForTest(threads, messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock))
	router := setupThreadRouter(handler)

	thread := models.Thread{ID: testThreadID, User1ID: testUserID, User2ID: testRecipientID}
	threads.On("GetThread", mock.Anything, testThreadID).Return(thread, nil).Once()
	messages.On("MarkThreadRead", mock.Anything, testThreadID, testUserID).Return(3, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/threads/"+testThreadID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp["marked"])
	messages.AssertExpectations(t)
}

func TestMarkThreadReadNotFound(t *testing.T) {
	threads := new(mocks.ThreadRepositoryMock)
	handler := newThreadHandlerForTest(threads, new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock))
	router := setupThreadRouter(handler)

	threads.On("GetThread", mock.Anything, testThreadID).Return(models.Thread{}, repositories.ErrThreadNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/threads/"+testThreadID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnreadCount(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := newThreadHandlerForTest(new(mocks.ThreadRepositoryMock), messages, new(mocks.ProfileRepositoryMock), new(mocks.PostRepositoryMock))
	router := setupThreadRouter(handler)

	messages.On("UnreadCount", mock.Anything, testUserID).Return(7, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/inbox/unread_count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp["unread_count"])
	messages.AssertExpectations(t)
}
