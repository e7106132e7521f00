// Package auth implements the login flows of the admin panel and the
// middleware gating its API.
package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys.
const (
	sessionKeyToken    = "token"
	sessionKeySub      = "user_sub"
	sessionKeyEmail    = "user_email"
	sessionKeyName     = "user_name"
	sessionKeyUsername = "user_username"
	sessionKeyIsAdmin  = "user_is_admin"
)

// Provider defines the interface for authentication providers.
type Provider interface {
	// Login handles the login process for the provider.
	Login(c *gin.Context)

	// Callback handles the authentication callback (if applicable).
	Callback(c *gin.Context)

	// RequireAuth returns middleware that requires authentication.
	RequireAuth() gin.HandlerFunc
}

// clearSession drops every stored session value.
func clearSession(session sessions.Session) {
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()
}

// Helper functions to safely get session values.
func getSessionString(session sessions.Session, key string) string {
	if val := session.Get(key); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getSessionBool(session sessions.Session, key string) bool {
	if val := session.Get(key); val != nil {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
