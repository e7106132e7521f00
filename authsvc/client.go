// Package authsvc is the client for the auth backend: login, password
// changes, user management and system settings.
package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/httpx"
	"github.com/DarlingInSteam/compressrank-admin/version"
)

// Client represents an auth backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new auth backend client.
func New(cfg *config.ServiceConfig) *Client {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// User represents a platform user account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Setting represents a system setting, identified by its key.
type Setting struct {
	SettingKey   string `json:"settingKey"`
	SettingValue string `json:"settingValue"`
	Description  string `json:"description,omitempty"`
	SettingGroup string `json:"settingGroup"`
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UpdateUserRequest is the payload for updating a user. Empty fields are
// left unchanged by the backend.
type UpdateUserRequest struct {
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Login authenticates a user and returns the issued bearer token. Transport
// errors are propagated uninterpreted.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{
		Username: username,
		Password: password,
	}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("auth backend returned an empty token")
	}
	return resp.Token, nil
}

// ChangePassword changes the password of the calling user.
func (c *Client) ChangePassword(ctx context.Context, tok, oldPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", tok, changePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}

// ListUsers returns all user accounts.
func (c *Client) ListUsers(ctx context.Context, tok string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/auth/users", tok, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a single user account.
func (c *Client) GetUser(ctx context.Context, tok string, id int64) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/auth/users/%d", id), tok, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user account.
func (c *Client) CreateUser(ctx context.Context, tok string, req CreateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/auth/users", tok, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user account.
func (c *Client) UpdateUser(ctx context.Context, tok string, id int64, req UpdateUserRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/auth/users/%d", id), tok, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user account.
func (c *Client) DeleteUser(ctx context.Context, tok string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/auth/users/%d", id), tok, nil, nil)
}

// ListSettings returns all system settings.
func (c *Client) ListSettings(ctx context.Context, tok string) ([]Setting, error) {
	var settings []Setting
	if err := c.do(ctx, http.MethodGet, "/api/auth/system/settings", tok, nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpsertSetting creates or updates a system setting. The setting key is the
// natural identifier.
func (c *Client) UpsertSetting(ctx context.Context, tok string, setting Setting) (*Setting, error) {
	var saved Setting
	if err := c.do(ctx, http.MethodPost, "/api/auth/system/settings", tok, setting, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteSetting deletes a system setting by key.
func (c *Client) DeleteSetting(ctx context.Context, tok, key string) error {
	return c.do(ctx, http.MethodDelete, "/api/auth/system/settings/"+url.PathEscape(key), tok, nil, nil)
}

// do performs one request against the auth backend and decodes the response
// body into out when it is non-nil.
func (c *Client) do(ctx context.Context, method, path, tok string, reqBody, out any) error {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("failed to build request URL: %w", err)
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("User-Agent", "CompressRank-Admin/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("auth backend request failed: %w", httpx.NewStatusError(resp.StatusCode, body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
