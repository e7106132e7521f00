// Package models holds the view models the gateway serves to the admin SPA.
package models

import "github.com/DarlingInSteam/compressrank-admin/gallery"

// User represents an authenticated user of the admin panel.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ImageView is one gallery entry enriched with display strings.
type ImageView struct {
	ID                string `json:"id"`
	OriginalFilename  string `json:"originalFilename"`
	ContentType       string `json:"contentType"`
	Size              int64  `json:"size"`
	SizeHuman         string `json:"sizeHuman"`
	CompressionLevel  int    `json:"compressionLevel"`
	OriginalImageID   string `json:"originalImageId,omitempty"`
	OriginalSize      int64  `json:"originalSize,omitempty"`
	OriginalSizeHuman string `json:"originalSizeHuman,omitempty"`
	IsCompressed      bool   `json:"isCompressed"`
	UploadedAt        string `json:"uploadedAt"`
	UploadedAgo       string `json:"uploadedAgo"`
	ViewCount         int64  `json:"viewCount"`
	DownloadCount     int64  `json:"downloadCount"`
	Popularity        int64  `json:"popularity"`
}

// GroupView is an original image with its compressed derivatives.
type GroupView struct {
	Original    ImageView   `json:"original"`
	Derivatives []ImageView `json:"derivatives"`
}

// GalleryResponse is the paginated gallery payload.
type GalleryResponse struct {
	Items      []ImageView        `json:"items"`
	Groups     []GroupView        `json:"groups"`
	Pagination gallery.Pagination `json:"pagination"`
}

// SettingView is one system setting.
type SettingView struct {
	SettingKey   string `json:"settingKey"`
	SettingValue string `json:"settingValue"`
	Description  string `json:"description,omitempty"`
}

// SettingsGroup bundles the settings of one settings group.
type SettingsGroup struct {
	Group    string        `json:"group"`
	Settings []SettingView `json:"settings"`
}

// QuotaView is a user's usage with display strings.
type QuotaView struct {
	UserID              int64  `json:"userId"`
	ImagesUsed          int64  `json:"imagesUsed"`
	ImagesQuota         int64  `json:"imagesQuota"`
	ImagesPercent       int    `json:"imagesPercent"`
	DiskSpaceUsed       int64  `json:"diskSpaceUsed"`
	DiskSpaceUsedHuman  string `json:"diskSpaceUsedHuman"`
	DiskSpaceQuota      int64  `json:"diskSpaceQuota"`
	DiskSpaceQuotaHuman string `json:"diskSpaceQuotaHuman"`
	DiskSpacePercent    int    `json:"diskSpacePercent"`
}
