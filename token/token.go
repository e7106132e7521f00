// Package token decodes the bearer tokens issued by the auth backend.
//
// The gateway never validates token signatures locally: tokens are decoded
// best-effort for display and role checks, and the backends reject forged
// tokens on their own.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is a user role embedded in the token claims.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleReader    Role = "reader"
)

// ParseRole normalizes a role claim. Unknown values map to the reader role.
func ParseRole(s string) Role {
	switch strings.TrimPrefix(strings.ToLower(s), "role_") {
	case "admin":
		return RoleAdmin
	case "moderator":
		return RoleModerator
	default:
		return RoleReader
	}
}

// Claims holds the identity claims embedded in a bearer token.
type Claims struct {
	UserID    int64
	Username  string
	Role      Role
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed. Tokens without an
// expiry claim are treated as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.After(c.ExpiresAt)
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsModerator reports whether the claims carry at least the moderator role.
func (c *Claims) IsModerator() bool {
	return c.Role == RoleAdmin || c.Role == RoleModerator
}

// Decode parses a bearer token without verifying its signature and extracts
// the identity claims.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty token")
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mapClaims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims := &Claims{
		Username: stringClaim(mapClaims, "sub"),
		Role:     ParseRole(stringClaim(mapClaims, "role")),
		Name:     stringClaim(mapClaims, "name"),
		Email:    stringClaim(mapClaims, "email"),
	}

	if claims.Username == "" {
		claims.Username = stringClaim(mapClaims, "username")
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("token has no subject claim")
	}

	claims.UserID = int64Claim(mapClaims, "userId")
	if claims.UserID == 0 {
		claims.UserID = int64Claim(mapClaims, "id")
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func int64Claim(claims jwt.MapClaims, key string) int64 {
	switch val := claims[key].(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case string:
		var n int64
		if _, err := fmt.Sscanf(val, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
