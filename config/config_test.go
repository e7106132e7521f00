package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
session_key: test-key
auth_service:
  url: http://auth:8080
image_service:
  url: http://images:8081
compression_service:
  url: http://compression:8082
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3003", cfg.Listen)
	assert.Equal(t, "http://auth:8080", cfg.AuthService.URL)
	assert.Equal(t, 30, cfg.AuthService.Timeout)
	assert.Equal(t, 60, cfg.ImageService.Timeout)
	assert.True(t, cfg.Auth.Credentials)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, CacheTypeMemory, cfg.Cache.Type)
	assert.Equal(t, 86400, cfg.SessionMaxAge)
}

func TestLoadGatewayURLFallback(t *testing.T) {
	path := writeConfigFile(t, `
session_key: test-key
gateway_url: http://gateway:9000
image_service:
  url: http://images:8081
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Unset service URLs fall back to the gateway URL, explicit ones win.
	assert.Equal(t, "http://gateway:9000", cfg.AuthService.URL)
	assert.Equal(t, "http://images:8081", cfg.ImageService.URL)
	assert.Equal(t, "http://gateway:9000", cfg.CompressionService.URL)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing session key",
			content: `
auth_service:
  url: http://auth:8080
image_service:
  url: http://images:8081
compression_service:
  url: http://compression:8082
`,
			wantErr: "session key is required",
		},
		{
			name: "missing image service",
			content: `
session_key: test-key
auth_service:
  url: http://auth:8080
compression_service:
  url: http://compression:8082
`,
			wantErr: "image service URL is required",
		},
		{
			name: "no auth method",
			content: `
session_key: test-key
auth:
  credentials: false
auth_service:
  url: http://auth:8080
image_service:
  url: http://images:8081
compression_service:
  url: http://compression:8082
`,
			wantErr: "no authentication method is enabled",
		},
		{
			name: "oidc without issuer",
			content: `
session_key: test-key
auth:
  oidc:
    enabled: true
    client_id: cid
    client_secret: secret
    redirect_url: http://localhost/callback
auth_service:
  url: http://auth:8080
image_service:
  url: http://images:8081
compression_service:
  url: http://compression:8082
`,
			wantErr: "OIDC issuer is required",
		},
		{
			name: "redis cache without url",
			content: `
session_key: test-key
cache:
  enabled: true
  type: redis
auth_service:
  url: http://auth:8080
image_service:
  url: http://images:8081
compression_service:
  url: http://compression:8082
`,
			wantErr: "redis URL is required",
		},
		{
			name: "email without smtp host",
			content: `
session_key: test-key
email:
  enabled: true
  from_email: admin@example.com
  admin_email: admin@example.com
auth_service:
  url: http://auth:8080
image_service:
  url: http://images:8081
compression_service:
  url: http://compression:8082
`,
			wantErr: "SMTP host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
