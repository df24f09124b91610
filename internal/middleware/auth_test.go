package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fanhub/internal/mocks"
	"fanhub/internal/services"
)

func setupAuthMiddlewareRouter(sessions services.SessionValidator) (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	seen := new(uuid.UUID)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(sessions), func(c *gin.Context) {
		if val, ok := c.Get("userID"); ok {
			*seen = val.(uuid.UUID)
		}
		c.Status(http.StatusOK)
	})
	return r, seen
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	sessions := new(mocks.SessionManagerMock)
	userID := uuid.New()
	sessions.On("Validate", mock.Anything, "tok123").Return(userID, nil).Once()

	router, seen := setupAuthMiddlewareRouter(sessions)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, *seen)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	sessions := new(mocks.SessionManagerMock)
	router, _ := setupAuthMiddlewareRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	sessions.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	sessions := new(mocks.SessionManagerMock)
	sessions.On("Validate", mock.Anything, "bad").Return(uuid.Nil, services.ErrSessionNotFound).Once()

	router, _ := setupAuthMiddlewareRouter(sessions)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
