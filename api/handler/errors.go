package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/httpx"
)

// respondError translates a backend error into the panel's API response.
// Client errors pass through with the backend's message, conflicts get a
// fixed message, and server errors are logged and hidden behind a generic
// one.
func respondError(c *gin.Context, op string, err error) {
	_ = c.Error(err)
	code := httpx.StatusCode(err)

	switch {
	case code == http.StatusConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case code == http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError:
		c.JSON(code, gin.H{"error": backendMessage(err)})
	case code >= http.StatusInternalServerError:
		log.Error("Backend request failed", "op", op, "status", code, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend request failed"})
	default:
		log.Error("Backend unreachable", "op", op, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unreachable"})
	}
}

// backendMessage returns the message the backend put in its error body, or a
// generic one when there is none.
func backendMessage(err error) string {
	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return "request rejected"
}

func errInvalidParam(name string) error {
	return fmt.Errorf("invalid %s parameter", name)
}
