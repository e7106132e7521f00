package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/authsvc"
)

// ListSettings serves all system settings grouped by section.
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.users.ListSettings(c.Request.Context(), bearerToken(c))
	if err != nil {
		respondError(c, "list settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": models.SettingsGroupsFrom(settings)})
}

type upsertSettingRequest struct {
	SettingKey   string `json:"settingKey" binding:"required"`
	SettingValue string `json:"settingValue" binding:"required"`
	Description  string `json:"description"`
	SettingGroup string `json:"settingGroup"`
}

// UpsertSetting creates or updates one system setting.
func (h *Handler) UpsertSetting(c *gin.Context) {
	var req upsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.users.UpsertSetting(c.Request.Context(), bearerToken(c), authsvc.Setting{
		SettingKey:   req.SettingKey,
		SettingValue: req.SettingValue,
		Description:  req.Description,
		SettingGroup: req.SettingGroup,
	})
	if err != nil {
		respondError(c, "upsert setting", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteSetting deletes one system setting by key.
func (h *Handler) DeleteSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidParam("key").Error()})
		return
	}

	if err := h.users.DeleteSetting(c.Request.Context(), bearerToken(c), key); err != nil {
		respondError(c, "delete setting", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
