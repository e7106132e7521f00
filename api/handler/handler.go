// Package handler implements the HTTP handlers of the admin API.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/authsvc"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/engine"
	"github.com/DarlingInSteam/compressrank-admin/scheduler"
)

// UserService is the part of the auth backend the handlers use.
type UserService interface {
	ChangePassword(ctx context.Context, tok, oldPassword, newPassword string) error
	ListUsers(ctx context.Context, tok string) ([]authsvc.User, error)
	GetUser(ctx context.Context, tok string, id int64) (*authsvc.User, error)
	CreateUser(ctx context.Context, tok string, req authsvc.CreateUserRequest) (*authsvc.User, error)
	UpdateUser(ctx context.Context, tok string, id int64, req authsvc.UpdateUserRequest) (*authsvc.User, error)
	DeleteUser(ctx context.Context, tok string, id int64) error
	ListSettings(ctx context.Context, tok string) ([]authsvc.Setting, error)
	UpsertSetting(ctx context.Context, tok string, setting authsvc.Setting) (*authsvc.Setting, error)
	DeleteSetting(ctx context.Context, tok, key string) error
}

type Handler struct {
	engine      *engine.Engine
	users       UserService
	sched       *scheduler.Scheduler
	gravatarCfg *config.GravatarConfig
}

func New(eng *engine.Engine, users UserService, sched *scheduler.Scheduler, gravatarCfg *config.GravatarConfig) *Handler {
	return &Handler{
		engine:      eng,
		users:       users,
		sched:       sched,
		gravatarCfg: gravatarCfg,
	}
}

// currentUser returns the authenticated user attached by the auth
// middleware.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}

// bearerToken returns the backend token of the current session, empty for
// OIDC sessions.
func bearerToken(c *gin.Context) string {
	return c.GetString("token")
}
