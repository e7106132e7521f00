package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/authsvc"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/engine"
	"github.com/DarlingInSteam/compressrank-admin/httpx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockUserService struct {
	users       []authsvc.User
	settings    []authsvc.Setting
	err         error
	deletedID   int64
	createdReq  authsvc.CreateUserRequest
	passwordOld string
	passwordNew string
}

func (m *mockUserService) ChangePassword(_ context.Context, _, oldPassword, newPassword string) error {
	m.passwordOld = oldPassword
	m.passwordNew = newPassword
	return m.err
}

func (m *mockUserService) ListUsers(_ context.Context, _ string) ([]authsvc.User, error) {
	return m.users, m.err
}

func (m *mockUserService) GetUser(_ context.Context, _ string, id int64) (*authsvc.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, httpx.NewStatusError(http.StatusNotFound, nil)
}

func (m *mockUserService) CreateUser(_ context.Context, _ string, req authsvc.CreateUserRequest) (*authsvc.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdReq = req
	return &authsvc.User{ID: 99, Username: req.Username, Role: req.Role}, nil
}

func (m *mockUserService) UpdateUser(_ context.Context, _ string, id int64, req authsvc.UpdateUserRequest) (*authsvc.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &authsvc.User{ID: id, Username: "updated", Role: req.Role}, nil
}

func (m *mockUserService) DeleteUser(_ context.Context, _ string, id int64) error {
	m.deletedID = id
	return m.err
}

func (m *mockUserService) ListSettings(_ context.Context, _ string) ([]authsvc.Setting, error) {
	return m.settings, m.err
}

func (m *mockUserService) UpsertSetting(_ context.Context, _ string, setting authsvc.Setting) (*authsvc.Setting, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &setting, nil
}

func (m *mockUserService) DeleteSetting(_ context.Context, _, _ string) error {
	return m.err
}

// newTestHandler builds a handler whose engine talks to the given backend
// server, with caching and previews disabled.
func newTestHandler(t *testing.T, backend http.Handler, users UserService) *Handler {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		ImageService:       &config.ServiceConfig{URL: server.URL},
		CompressionService: &config.ServiceConfig{URL: server.URL},
		Cache:              &config.CacheConfig{Enabled: false},
		Gravatar:           &config.GravatarConfig{Enabled: false},
	}
	eng, err := engine.New(cfg)
	require.NoError(t, err)

	return New(eng, users, nil, cfg.Gravatar)
}

// newTestRouter wires the handler routes behind a middleware that injects the
// given user, the way the auth provider does for a live session.
func newTestRouter(h *Handler, user *models.User) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user", user)
		c.Set("token", "test-token")
	})

	router.GET("/api/images", h.ListImages)
	router.GET("/api/images/quota", h.Quota)
	router.DELETE("/api/images/:id", h.DeleteImage)
	router.POST("/api/compression/:id", h.CompressImage)
	router.GET("/api/auth/users", h.ListUsers)
	router.GET("/api/auth/users/:id", h.GetUser)
	router.POST("/api/auth/users", h.CreateUser)
	router.DELETE("/api/auth/users/:id", h.DeleteUser)
	router.GET("/api/auth/system/settings", h.ListSettings)
	router.POST("/api/auth/change-password", h.ChangePassword)
	return router
}

func adminUser() *models.User {
	return &models.User{ID: 1, Username: "admin", Role: "admin"}
}

func TestHandler_ListImages(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/images":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": "img-1", "originalFilename": "photo.jpg", "contentType": "image/jpeg", "size": 2048, "uploadedAt": "2026-08-30T10:00:00Z", "accessCount": 4},
				{"id": "img-2", "originalFilename": "photo.jpg", "contentType": "image/jpeg", "size": 512, "compressionLevel": 60, "originalImageId": "img-1", "uploadedAt": "2026-08-30T11:00:00Z"}
			]`))
		case "/api/statistics":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"imageId": "img-1", "viewCount": 10, "downloadCount": 3}]`))
		case "/api/compression/img-2/original-size":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"originalSize": 2048}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	h := newTestHandler(t, backend, &mockUserService{})
	router := newTestRouter(h, adminUser())

	t.Run("returns the derived gallery", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.GalleryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, 2, resp.Pagination.TotalItems)
		assert.Equal(t, "img-1", resp.Items[1].OriginalImageID)
		assert.True(t, resp.Items[1].IsCompressed)
		assert.Equal(t, int64(16), resp.Items[0].Popularity)
		assert.Equal(t, "2.00 КБ", resp.Items[1].OriginalSizeHuman)
	})

	t.Run("rejects an invalid page", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/images?page=zero", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an oversized page size", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/images?pageSize=500", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Quota(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/images/quota" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId": 7, "imagesUsed": 5, "imagesQuota": 100, "diskSpaceUsed": 100, "diskSpaceQuota": 1000}`))
	})
	h := newTestHandler(t, backend, &mockUserService{})

	t.Run("admin can look up another user", func(t *testing.T) {
		router := newTestRouter(h, adminUser())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/images/quota?userId=7", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.QuotaView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.UserID)
	})

	t.Run("non-admin cannot look up another user", func(t *testing.T) {
		router := newTestRouter(h, &models.User{ID: 2, Username: "bob", Role: "moderator"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/images/quota?userId=7", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_CompressImage(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"imageId": "img-9", "originalImageId": "img-1", "compressionLevel": 75, "compressedSize": 512}`))
	})
	h := newTestHandler(t, backend, &mockUserService{})
	router := newTestRouter(h, adminUser())

	t.Run("compresses at the requested level", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/compression/img-1?compressionLevel=75", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "img-9")
	})

	t.Run("rejects a missing level", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/compression/img-1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an out of range level", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/compression/img-1?compressionLevel=150", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Users(t *testing.T) {
	users := &mockUserService{users: []authsvc.User{
		{ID: 1, Username: "admin", Role: "admin"},
		{ID: 2, Username: "bob", Role: "reader"},
	}}
	h := newTestHandler(t, http.NotFoundHandler(), users)
	router := newTestRouter(h, adminUser())

	t.Run("lists all accounts", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/users", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Users []models.User `json:"users"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Users, 2)
	})

	t.Run("unknown account maps to not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/users/42", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("creates an account with a normalized role", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"username": "carol", "password": "secret123", "role": "Moderator"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "moderator", users.createdReq.Role)
	})

	t.Run("rejects deleting your own account", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/auth/users/1", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, users.deletedID)
	})

	t.Run("deletes another account", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/auth/users/2", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), users.deletedID)
	})
}

func TestHandler_ListSettings(t *testing.T) {
	users := &mockUserService{settings: []authsvc.Setting{
		{SettingKey: "max_upload_mb", SettingValue: "25", SettingGroup: "uploads"},
		{SettingKey: "site_name", SettingValue: "CompressRank"},
	}}
	h := newTestHandler(t, http.NotFoundHandler(), users)
	router := newTestRouter(h, adminUser())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/system/settings", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Groups []models.SettingsGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "uploads", resp.Groups[0].Group)
	assert.Equal(t, "general", resp.Groups[1].Group)
}

func TestHandler_ChangePassword(t *testing.T) {
	users := &mockUserService{}
	h := newTestHandler(t, http.NotFoundHandler(), users)

	t.Run("changes the password", func(t *testing.T) {
		router := newTestRouter(h, adminUser())
		w := httptest.NewRecorder()
		body := `{"oldPassword": "oldsecret", "newPassword": "newsecret9"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "newsecret9", users.passwordNew)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		router := newTestRouter(h, adminUser())
		w := httptest.NewRecorder()
		body := `{"oldPassword": "oldsecret", "newPassword": "short"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects sessions without a backend token", func(t *testing.T) {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("user", adminUser())
			c.Set("token", "")
		})
		router.POST("/api/auth/change-password", h.ChangePassword)

		w := httptest.NewRecorder()
		body := `{"oldPassword": "oldsecret", "newPassword": "newsecret9"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
