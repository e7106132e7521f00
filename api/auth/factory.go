package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/token"
)

// MultiProvider wraps the enabled auth providers.
type MultiProvider struct {
	credentialsProvider *CredentialsProvider
	oidcProvider        *OIDCProvider
	cfg                 *config.AuthConfig
}

// NewProvider creates a multi-provider from the enabled authentication
// methods.
func NewProvider(ctx context.Context, cfg *config.Config, authService AuthService) (*MultiProvider, error) {
	if cfg.Auth == nil {
		return nil, fmt.Errorf("auth config is required")
	}

	mp := &MultiProvider{cfg: cfg.Auth}

	if cfg.Auth.Credentials {
		mp.credentialsProvider = NewCredentialsProvider(authService, cfg.Gravatar)
	}

	if cfg.Auth.OIDC != nil && cfg.Auth.OIDC.Enabled {
		oidcProvider, err := NewOIDCProvider(ctx, cfg.Auth.OIDC, cfg.Gravatar)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		mp.oidcProvider = oidcProvider
	}

	if mp.credentialsProvider == nil && mp.oidcProvider == nil {
		return nil, fmt.Errorf("no authentication provider is enabled")
	}

	return mp, nil
}

// Login dispatches to the matching provider: JSON credential posts go to the
// auth backend, everything else starts the OIDC redirect flow.
func (mp *MultiProvider) Login(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		if mp.credentialsProvider != nil {
			mp.credentialsProvider.Login(c)
			return
		}
	}

	if mp.oidcProvider != nil {
		mp.oidcProvider.Login(c)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "No authentication method available"})
}

// Callback handles OAuth callbacks (OIDC only).
func (mp *MultiProvider) Callback(c *gin.Context) {
	if mp.oidcProvider != nil {
		mp.oidcProvider.Callback(c)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "OAuth callback not supported"})
}

// Logout terminates the session.
func (mp *MultiProvider) Logout(c *gin.Context) {
	clearSession(sessions.Default(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RequireAuth accepts a session from either provider.
func (mp *MultiProvider) RequireAuth() gin.HandlerFunc {
	credentialsAuth := gin.HandlerFunc(nil)
	if mp.credentialsProvider != nil {
		credentialsAuth = mp.credentialsProvider.RequireAuth()
	}
	oidcAuth := gin.HandlerFunc(nil)
	if mp.oidcProvider != nil {
		oidcAuth = mp.oidcProvider.RequireAuth()
	}

	return func(c *gin.Context) {
		session := sessions.Default(c)

		if credentialsAuth != nil && getSessionString(session, sessionKeyToken) != "" {
			credentialsAuth(c)
			return
		}
		if oidcAuth != nil && getSessionString(session, sessionKeySub) != "" {
			oidcAuth(c)
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
}

// RequireAdmin returns middleware that checks for the admin role.
func (mp *MultiProvider) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok || token.Role(user.Role) != token.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireModerator returns middleware that checks for at least the moderator
// role.
func (mp *MultiProvider) RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		role := token.Role(user.Role)
		if role != token.RoleAdmin && role != token.RoleModerator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
