package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ImageStatistics serves the view and download counters of one image.
func (h *Handler) ImageStatistics(c *gin.Context) {
	stats, err := h.engine.ImageStatistics(c.Request.Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		respondError(c, "image statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListStatistics serves the counters of all images.
func (h *Handler) ListStatistics(c *gin.Context) {
	stats, err := h.engine.AllStatistics(c.Request.Context(), bearerToken(c))
	if err != nil {
		respondError(c, "list statistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": stats})
}
