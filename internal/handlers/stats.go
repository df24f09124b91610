package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fanhub/internal/services"
)

// StatsHandler serves the public platform stats.
type StatsHandler struct {
	stats *services.StatsService
}

// NewStatsHandler builds a StatsHandler.
func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// PlatformStats returns creator/supporter counts and total earnings.
func (h *StatsHandler) PlatformStats(c *gin.Context) {
	stats, err := h.stats.PlatformStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
