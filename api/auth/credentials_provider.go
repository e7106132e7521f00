package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/token"
)

// AuthService is the part of the auth backend the credentials provider
// needs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// CredentialsProvider authenticates against the platform's auth backend with
// username and password. The issued bearer token is kept in the session and
// replayed on every backend call.
type CredentialsProvider struct {
	auth        AuthService
	gravatarCfg *config.GravatarConfig
}

// NewCredentialsProvider creates a credentials provider backed by the auth
// backend.
func NewCredentialsProvider(auth AuthService, gravatarCfg *config.GravatarConfig) *CredentialsProvider {
	return &CredentialsProvider{
		auth:        auth,
		gravatarCfg: gravatarCfg,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a bearer token and stores it in the
// session.
func (p *CredentialsProvider) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	rawToken, err := p.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("Login failed", "username", req.Username, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	claims, err := token.Decode(rawToken)
	if err != nil {
		log.Error("Auth backend issued an undecodable token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process login"})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyToken, rawToken)
	if err := session.Save(); err != nil {
		log.Error("Failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	log.Info("User logged in", "username", claims.Username, "role", claims.Role)
	c.JSON(http.StatusOK, gin.H{"user": models.UserFromClaims(claims, p.gravatarCfg)})
}

// Callback is a no-op, the credentials flow has no OAuth callback.
func (p *CredentialsProvider) Callback(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not implemented"})
}

// RequireAuth decodes the session token and attaches the user identity to
// the request context. Expired or malformed tokens terminate the session.
func (p *CredentialsProvider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		rawToken := getSessionString(session, sessionKeyToken)
		if rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := token.Decode(rawToken)
		if err != nil {
			log.Debug("Session token is malformed, clearing session", "error", err)
			clearSession(session)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			return
		}
		if claims.Expired(time.Now()) {
			log.Debug("Session token expired, clearing session", "username", claims.Username)
			clearSession(session)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			return
		}

		c.Set("user", models.UserFromClaims(claims, p.gravatarCfg))
		c.Set("claims", claims)
		c.Set("token", rawToken)
		c.Next()
	}
}
