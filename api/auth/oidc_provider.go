package auth

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/gravatar"
	"github.com/DarlingInSteam/compressrank-admin/token"
)

// OIDCProvider authenticates operators against an external identity
// provider. OIDC sessions carry no platform bearer token, so backend calls
// made on behalf of an OIDC user are unauthenticated. Members of the
// configured admin group get the admin role, everyone else is a reader.
type OIDCProvider struct {
	provider    *oidc.Provider
	verifier    *oidc.IDTokenVerifier
	config      *oauth2.Config
	cfg         *config.OIDCConfig
	gravatarCfg *config.GravatarConfig
}

// NewOIDCProvider creates an OIDC provider from the configuration.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCConfig, gravatarCfg *config.GravatarConfig) (*OIDCProvider, error) {
	p := OIDCProvider{
		cfg:         cfg,
		gravatarCfg: gravatarCfg,
	}
	var err error
	p.provider, err = oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     p.provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "groups"},
	}

	p.verifier = p.provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return &p, nil
}

// Login redirects to the identity provider.
func (p *OIDCProvider) Login(c *gin.Context) {
	state := uuid.New().String()
	url := p.config.AuthCodeURL(state)
	c.Redirect(http.StatusFound, url)
}

// Callback completes the OAuth flow and stores the identity in the session.
func (p *OIDCProvider) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Query("code")

	oauth2Token, err := p.config.Exchange(ctx, code)
	if err != nil {
		c.AbortWithError(http.StatusUnauthorized, err) //nolint:errcheck
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "No id_token in token response"})
		return
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.AbortWithError(http.StatusUnauthorized, err) //nolint:errcheck
		return
	}

	var claims struct {
		Email             string   `json:"email"`
		Name              string   `json:"name"`
		PreferredUsername string   `json:"preferred_username"`
		Sub               string   `json:"sub"`
		Groups            []string `json:"groups"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	var isAdmin bool
	for _, group := range claims.Groups {
		if group == p.cfg.AdminGroup {
			isAdmin = true
			break
		}
	}

	session := sessions.Default(c)
	session.Set(sessionKeySub, claims.Sub)
	session.Set(sessionKeyEmail, claims.Email)
	session.Set(sessionKeyName, claims.Name)
	session.Set(sessionKeyUsername, claims.PreferredUsername)
	session.Set(sessionKeyIsAdmin, isAdmin)

	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// RequireAuth rebuilds the user identity from the session.
func (p *OIDCProvider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		sub := getSessionString(session, sessionKeySub)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		role := token.RoleReader
		if getSessionBool(session, sessionKeyIsAdmin) {
			role = token.RoleAdmin
		}

		email := getSessionString(session, sessionKeyEmail)
		user := &models.User{
			Username:  getSessionString(session, sessionKeyUsername),
			Role:      string(role),
			Name:      getSessionString(session, sessionKeyName),
			Email:     email,
			AvatarURL: gravatar.GenerateURL(email, p.gravatarCfg),
		}

		c.Set("user", user)
		c.Set("token", "")
		c.Next()
	}
}
