// Package gravatar builds avatar URLs for user accounts from their email
// address.
package gravatar

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strings"

	"github.com/DarlingInSteam/compressrank-admin/config"
)

// GenerateURL generates a Gravatar URL for the given email address using the
// provided configuration. Returns an empty string if Gravatar is disabled or
// email is empty. Invalid parameter values fall back to safe defaults instead
// of producing a broken URL.
func GenerateURL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled || email == "" {
		return ""
	}

	// Gravatar hashes the normalized address.
	email = strings.TrimSpace(strings.ToLower(email))
	hash := md5.Sum([]byte(email))

	baseURL := fmt.Sprintf("https://www.gravatar.com/avatar/%x", hash)

	params := url.Values{}

	defaultImage := cfg.DefaultImage
	if !IsValidDefaultImage(defaultImage) {
		defaultImage = "robohash"
	}
	params.Add("d", defaultImage)

	rating := cfg.Rating
	if !IsValidRating(rating) {
		rating = "g"
	}
	params.Add("r", rating)

	size := cfg.Size
	if !IsValidSize(size) {
		size = 80
	}
	params.Add("s", fmt.Sprintf("%d", size))

	return baseURL + "?" + params.Encode()
}

// IsValidDefaultImage checks if the provided default image value is valid for Gravatar.
func IsValidDefaultImage(defaultImage string) bool {
	validDefaults := map[string]bool{
		"404":       true,
		"mp":        true,
		"identicon": true,
		"monsterid": true,
		"wavatar":   true,
		"retro":     true,
		"robohash":  true,
		"blank":     true,
	}
	return validDefaults[defaultImage]
}

// IsValidRating checks if the provided rating value is valid for Gravatar.
func IsValidRating(rating string) bool {
	validRatings := map[string]bool{
		"g":  true,
		"pg": true,
		"r":  true,
		"x":  true,
	}
	return validRatings[rating]
}

// IsValidSize checks if the provided size value is valid for Gravatar (1-2048 pixels).
func IsValidSize(size int) bool {
	return size >= 1 && size <= 2048
}
