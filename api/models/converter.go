package models

import (
	"time"

	"github.com/DarlingInSteam/compressrank-admin/authsvc"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/format"
	"github.com/DarlingInSteam/compressrank-admin/gallery"
	"github.com/DarlingInSteam/compressrank-admin/gravatar"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
	"github.com/DarlingInSteam/compressrank-admin/token"
)

// UserFromClaims builds the view model of the authenticated user.
func UserFromClaims(claims *token.Claims, gravatarCfg *config.GravatarConfig) *User {
	return &User{
		ID:        claims.UserID,
		Username:  claims.Username,
		Role:      string(claims.Role),
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: gravatar.GenerateURL(claims.Email, gravatarCfg),
	}
}

// UserFromAccount builds the view model of a managed user account.
func UserFromAccount(account authsvc.User, gravatarCfg *config.GravatarConfig) User {
	return User{
		ID:        account.ID,
		Username:  account.Username,
		Role:      string(token.ParseRole(account.Role)),
		Name:      account.Name,
		Email:     account.Email,
		AvatarURL: gravatar.GenerateURL(account.Email, gravatarCfg),
	}
}

// ImageViewFrom enriches one gallery entry with display strings.
func ImageViewFrom(img gallery.Image) ImageView {
	view := ImageView{
		ID:               img.ID,
		OriginalFilename: img.OriginalFilename,
		ContentType:      img.ContentType,
		Size:             img.Size,
		SizeHuman:        format.Bytes(img.Size),
		CompressionLevel: img.CompressionLevel,
		OriginalImageID:  img.OriginalImageID,
		OriginalSize:     img.OriginalSize,
		IsCompressed:     img.IsCompressed(),
		UploadedAt:       img.UploadedAt.Format(time.RFC3339),
		UploadedAgo:      format.RelativeTime(img.UploadedAt),
		ViewCount:        img.ViewCount,
		DownloadCount:    img.DownloadCount,
		Popularity:       img.Popularity(),
	}
	if img.OriginalSize > 0 {
		view.OriginalSizeHuman = format.Bytes(img.OriginalSize)
	}
	return view
}

// GalleryResponseFrom converts a derived gallery view to the API payload.
func GalleryResponseFrom(view *gallery.View) GalleryResponse {
	resp := GalleryResponse{
		Items:      make([]ImageView, 0, len(view.Items)),
		Groups:     make([]GroupView, 0, len(view.Groups)),
		Pagination: view.Pagination,
	}
	for _, img := range view.Items {
		resp.Items = append(resp.Items, ImageViewFrom(img))
	}
	for _, group := range view.Groups {
		gv := GroupView{
			Original:    ImageViewFrom(group.Original),
			Derivatives: make([]ImageView, 0, len(group.Derivatives)),
		}
		for _, d := range group.Derivatives {
			gv.Derivatives = append(gv.Derivatives, ImageViewFrom(d))
		}
		resp.Groups = append(resp.Groups, gv)
	}
	return resp
}

// QuotaViewFrom enriches a quota with display strings.
func QuotaViewFrom(quota *imagesvc.Quota) QuotaView {
	return QuotaView{
		UserID:              quota.UserID,
		ImagesUsed:          quota.ImagesUsed,
		ImagesQuota:         quota.ImagesQuota,
		ImagesPercent:       quota.ImagesPercent,
		DiskSpaceUsed:       quota.DiskSpaceUsed,
		DiskSpaceUsedHuman:  format.Bytes(quota.DiskSpaceUsed),
		DiskSpaceQuota:      quota.DiskSpaceQuota,
		DiskSpaceQuotaHuman: format.Bytes(quota.DiskSpaceQuota),
		DiskSpacePercent:    quota.DiskSpacePercent,
	}
}

// SettingsGroupsFrom groups the flat settings list by settings group,
// preserving the backend order inside each group.
func SettingsGroupsFrom(settings []authsvc.Setting) []SettingsGroup {
	order := make([]string, 0)
	grouped := make(map[string][]SettingView)
	for _, s := range settings {
		group := s.SettingGroup
		if group == "" {
			group = "general"
		}
		if _, ok := grouped[group]; !ok {
			order = append(order, group)
		}
		grouped[group] = append(grouped[group], SettingView{
			SettingKey:   s.SettingKey,
			SettingValue: s.SettingValue,
			Description:  s.Description,
		})
	}

	groups := make([]SettingsGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, SettingsGroup{Group: name, Settings: grouped[name]})
	}
	return groups
}
