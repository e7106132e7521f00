package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/authsvc"
	"github.com/DarlingInSteam/compressrank-admin/token"
)

// ListUsers serves all user accounts.
func (h *Handler) ListUsers(c *gin.Context) {
	accounts, err := h.users.ListUsers(c.Request.Context(), bearerToken(c))
	if err != nil {
		respondError(c, "list users", err)
		return
	}

	users := make([]models.User, 0, len(accounts))
	for _, account := range accounts {
		users = append(users, models.UserFromAccount(account, h.gravatarCfg))
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser serves one user account.
func (h *Handler) GetUser(c *gin.Context) {
	id, err := userIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.users.GetUser(c.Request.Context(), bearerToken(c), id)
	if err != nil {
		respondError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, models.UserFromAccount(*account, h.gravatarCfg))
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// CreateUser creates a new user account.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	role := token.ParseRole(req.Role)

	account, err := h.users.CreateUser(c.Request.Context(), bearerToken(c), authsvc.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     string(role),
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		respondError(c, "create user", err)
		return
	}
	c.JSON(http.StatusCreated, models.UserFromAccount(*account, h.gravatarCfg))
}

type updateUserRequest struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUser updates an existing user account. Empty fields are left
// unchanged.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := userIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Role != "" {
		req.Role = string(token.ParseRole(req.Role))
	}

	account, err := h.users.UpdateUser(c.Request.Context(), bearerToken(c), id, authsvc.UpdateUserRequest{
		Role:  req.Role,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, models.UserFromAccount(*account, h.gravatarCfg))
}

// DeleteUser deletes a user account. Admins cannot delete themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := userIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if id == currentUser(c).ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), bearerToken(c), id); err != nil {
		respondError(c, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func userIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidParam("id")
	}
	return id, nil
}
