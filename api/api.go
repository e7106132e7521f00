// Package api exposes the HTTP surface of the admin gateway: session-based
// authentication and the JSON endpoints the admin SPA consumes.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/auth"
	"github.com/DarlingInSteam/compressrank-admin/api/handler"
	"github.com/DarlingInSteam/compressrank-admin/authsvc"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/engine"
	"github.com/DarlingInSteam/compressrank-admin/scheduler"
	"github.com/DarlingInSteam/compressrank-admin/version"
)

const sessionName = "compressrank_session"

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	engine       *engine.Engine
	authProvider *auth.MultiProvider
	handler      *handler.Handler
	httpServer   *http.Server
}

// New assembles the gateway server around an already constructed engine and
// scheduler.
func New(ctx context.Context, cfg *config.Config, e *engine.Engine, sched *scheduler.Scheduler) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	authClient := authsvc.New(cfg.AuthService)
	authProvider, err := auth.NewProvider(ctx, cfg, authClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	s := &Server{
		cfg:          cfg,
		ginEngine:    gin.New(),
		engine:       e,
		authProvider: authProvider,
		handler:      handler.New(e, authClient, sched, cfg.Gravatar),
	}
	s.ginEngine.Use(gin.Recovery())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store))
}

func (s *Server) setupRoutes() {
	s.setupSession()

	h := s.handler

	s.ginEngine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
	})

	s.ginEngine.POST("/api/auth/login", s.authProvider.Login)
	s.ginEngine.GET("/auth/oidc/login", s.authProvider.Login)
	s.ginEngine.GET("/auth/oidc/callback", s.authProvider.Callback)

	api := s.ginEngine.Group("/api")
	api.Use(s.authProvider.RequireAuth())

	api.POST("/auth/logout", s.authProvider.Logout)
	api.GET("/auth/me", h.Me)
	api.POST("/auth/change-password", h.ChangePassword)

	api.GET("/images", h.ListImages)
	api.GET("/images/quota", h.Quota)
	api.GET("/images/:id/metadata", h.ImageMetadata)
	api.GET("/images/:id/preview", h.ImagePreview)

	api.GET("/statistics", h.ListStatistics)
	api.GET("/statistics/:id", h.ImageStatistics)

	// Mutations on the image catalog need at least the moderator role.
	moderator := api.Group("/")
	moderator.Use(s.authProvider.RequireModerator())

	moderator.POST("/images", h.Upload)
	moderator.DELETE("/images/:id", h.DeleteImage)
	moderator.POST("/compression/:id", h.CompressImage)
	moderator.POST("/compression/:id/restore", h.RestoreImage)
	moderator.GET("/compression/:id/original-size", h.OriginalSize)

	admin := api.Group("/")
	admin.Use(s.authProvider.RequireAdmin())

	admin.GET("/auth/users", h.ListUsers)
	admin.POST("/auth/users", h.CreateUser)
	admin.GET("/auth/users/:id", h.GetUser)
	admin.PUT("/auth/users/:id", h.UpdateUser)
	admin.DELETE("/auth/users/:id", h.DeleteUser)

	admin.GET("/auth/system/settings", h.ListSettings)
	admin.POST("/auth/system/settings", h.UpsertSetting)
	admin.DELETE("/auth/system/settings/:key", h.DeleteSetting)

	admin.GET("/admin/metrics", h.Metrics)
	admin.GET("/admin/jobs", h.ListJobs)
	admin.POST("/admin/jobs/:id/run", h.RunJob)
}

// Run serves requests until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting admin gateway", "listen", s.cfg.Listen, "version", version.Version)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
