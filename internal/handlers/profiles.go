package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fanhub/internal/repositories"
	"fanhub/internal/services"
)

// ProfileHandler manages account settings and lookups.
type ProfileHandler struct {
	profiles repositories.ProfileRepository
	views    services.ViewRecorder
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profiles repositories.ProfileRepository, views services.ViewRecorder) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, views: views}
}

// Me returns the caller's own profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Search matches profile names for recipient lookup.
func (h *ProfileHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := h.profiles.SearchProfiles(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": results})
}

// UpdateCreatorSettings sets the caller's subscription price and bio.
// A null price turns the account back into a supporter.
func (h *ProfileHandler) UpdateCreatorSettings(c *gin.Context) {
	var req struct {
		SubscriptionPrice *int    `json:"subscription_price"`
		Bio               *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SubscriptionPrice != nil && *req.SubscriptionPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription price must be positive"})
		return
	}

	profile, err := h.profiles.UpdateCreatorSettings(c.Request.Context(), currentUserID(c), req.SubscriptionPrice, req.Bio)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CreatorViews returns the caller's total content view count.
func (h *ProfileHandler) CreatorViews(c *gin.Context) {
	count, err := h.views.CountViewsForCreator(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count views"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view_count": count})
}
