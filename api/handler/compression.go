package handler

import (
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"
)

// CompressImage compresses one image at the requested level.
func (h *Handler) CompressImage(c *gin.Context) {
	level := 0
	if levelStr := c.Query("compressionLevel"); levelStr != "" {
		l, err := strconv.ParseUint(levelStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidParam("compressionLevel").Error()})
			return
		}
		level, err = safecast.ToInt(l)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidParam("compressionLevel").Error()})
			return
		}
	}
	if level < 1 || level > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "compressionLevel must be between 1 and 100"})
		return
	}

	result, err := h.engine.Compress(c.Request.Context(), bearerToken(c), c.Param("id"), level)
	if err != nil {
		respondError(c, "compress image", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RestoreImage restores the original of a compressed image.
func (h *Handler) RestoreImage(c *gin.Context) {
	if err := h.engine.Restore(c.Request.Context(), bearerToken(c), c.Param("id")); err != nil {
		respondError(c, "restore image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// OriginalSize serves the pre-compression byte size of a compressed image.
func (h *Handler) OriginalSize(c *gin.Context) {
	size, err := h.engine.OriginalSize(c.Request.Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		respondError(c, "original size", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"originalSize": size})
}
