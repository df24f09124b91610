package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fanhub/internal/mocks"
	"fanhub/internal/models"
	"fanhub/internal/repositories"
)

func setupPostRouter(handler *PostHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Next()
	})
	r.POST("/posts", handler.CreatePost)
	r.GET("/posts", handler.ListPosts)
	r.POST("/views", handler.RecordView)
	return r
}

func postMultipart(t *testing.T, fields map[string]string, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, val := range fields {
		require.NoError(t, writer.WriteField(key, val))
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("filedata"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestCreatePostUploadsAndInserts(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	media := new(mocks.MediaUploaderMock)
	handler := NewPostHandler(posts, media, new(mocks.ViewRecorderMock))
	router := setupPostRouter(handler)

	media.On("UploadFromHeader", mock.Anything, mock.Anything, "posts").
		Return("https://cdn.example/v.mp4", nil).Once()
	posts.On("CreatePost", mock.Anything, mock.MatchedBy(func(p repositories.NewPost) bool {
		return p.CreatorID == testUserID &&
			p.Title == "My clip" &&
			p.URL == "https://cdn.example/v.mp4" &&
			p.Type == models.PostTypeVideo &&
			p.Price == 300
	})).Return(models.Post{ID: uuid.New(), Title: "My clip"}, nil).Once()

	body, contentType := postMultipart(t, map[string]string{
		"title": "My clip",
		"price": "300",
	}, "clip.mp4", "video/mp4")
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	posts.AssertExpectations(t)
	media.AssertExpectations(t)
}

func TestCreatePostUploadFailureAborts(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	media := new(mocks.MediaUploaderMock)
	handler := NewPostHandler(posts, media, new(mocks.ViewRecorderMock))
	router := setupPostRouter(handler)

	media.On("UploadFromHeader", mock.Anything, mock.Anything, "posts").
		Return("", assert.AnError).Once()

	body, contentType := postMultipart(t, map[string]string{"title": "My pic"}, "pic.jpg", "image/jpeg")
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestListPostsPassesFilter(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	handler := NewPostHandler(posts, new(mocks.MediaUploaderMock), new(mocks.ViewRecorderMock))
	router := setupPostRouter(handler)

	posts.On("ListPosts", mock.Anything, mock.MatchedBy(func(f repositories.PostFilter) bool {
		return f.Type == models.PostTypeImage && f.Search == "sunset" && f.Sort == "price_low"
	})).Return([]models.PostWithCreator{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/posts?type=image&search=sunset&sort=price_low", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	posts.AssertExpectations(t)
}

func TestListPostsRejectsUnknownType(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	handler := NewPostHandler(posts, new(mocks.MediaUploaderMock), new(mocks.ViewRecorderMock))
	router := setupPostRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/posts?type=audio", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	posts.AssertNotCalled(t, "ListPosts", mock.Anything, mock.Anything)
}

func TestRecordViewResolvesCreator(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	views := new(mocks.ViewRecorderMock)
	handler := NewPostHandler(posts, new(mocks.MediaUploaderMock), views)
	router := setupPostRouter(handler)

	postID := uuid.New()
	posts.On("GetPost", mock.Anything, postID).
		Return(models.Post{ID: postID, CreatorID: testRecipientID}, nil).Once()
	views.On("RecordView", mock.Anything, postID, testUserID, testRecipientID).Return(nil).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"post_id":%q}`, postID))
	req := httptest.NewRequest(http.MethodPost, "/views", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	views.AssertExpectations(t)
}

func TestRecordViewUnknownPost(t *testing.T) {
	posts := new(mocks.PostRepositoryMock)
	views := new(mocks.ViewRecorderMock)
	handler := NewPostHandler(posts, new(mocks.MediaUploaderMock), views)
	router := setupPostRouter(handler)

	postID := uuid.New()
	posts.On("GetPost", mock.Anything, postID).Return(models.Post{}, repositories.ErrPostNotFound).Once()

	body := bytes.NewBufferString(fmt.Sprintf(`{"post_id":%q}`, postID))
	req := httptest.NewRequest(http.MethodPost, "/views", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	views.AssertNotCalled(t, "RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
