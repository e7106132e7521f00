package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me serves the profile of the calling user.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword changes the password of the calling user. Only available for
// credentials sessions, OIDC users manage their password at the identity
// provider.
func (h *Handler) ChangePassword(c *gin.Context) {
	tok := bearerToken(c)
	if tok == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is managed by the identity provider"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new password must be at least 8 characters"})
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), tok, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, "change password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
