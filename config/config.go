package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// CacheType selects the backing store for the gateway caches.
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Config holds the configuration for the CompressRank admin gateway and the
// platform backends it talks to.
type Config struct {
	// Listen is the address the gateway will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// GatewayURL is an optional base URL of an API gateway fronting all
	// backends. It only serves as a fallback for unset service URLs.
	GatewayURL string `yaml:"gateway_url" mapstructure:"gateway_url"`
	// SessionKey is the key used to encrypt session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`

	// Auth holds the authentication configuration for the gateway itself.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// AuthService holds the configuration for the auth/user backend.
	AuthService *ServiceConfig `yaml:"auth_service" mapstructure:"auth_service"`
	// ImageService holds the configuration for the image storage backend.
	ImageService *ServiceConfig `yaml:"image_service" mapstructure:"image_service"`
	// CompressionService holds the configuration for the compression backend.
	CompressionService *ServiceConfig `yaml:"compression_service" mapstructure:"compression_service"`

	// Cache holds the configuration for the quota/statistics caches.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Preview holds the configuration for the gallery preview cache.
	Preview *PreviewConfig `yaml:"preview" mapstructure:"preview"`
	// Email holds the quota alert email configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// ServiceConfig holds the connection settings for one platform backend.
type ServiceConfig struct {
	// URL is the base URL of the backend.
	URL string `yaml:"url" mapstructure:"url"`
	// Timeout is the request timeout in seconds.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
}

// AuthConfig holds the authentication configuration for the gateway.
type AuthConfig struct {
	// Credentials indicates whether username/password login against the
	// auth backend is enabled.
	Credentials bool `yaml:"credentials" mapstructure:"credentials"`
	// OIDC holds the optional OpenID Connect configuration.
	OIDC *OIDCConfig `yaml:"oidc" mapstructure:"oidc"`
}

// OIDCConfig holds the OpenID Connect configuration for SSO admin login.
type OIDCConfig struct {
	// Enabled indicates whether OIDC authentication is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Issuer is the OIDC issuer URL.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// ClientID is the OIDC client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OIDC client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// RedirectURL is the redirect URL for the oidc flow.
	RedirectURL string `yaml:"redirect_url" mapstructure:"redirect_url"`
	// AdminGroup is the group that is mapped to the admin role.
	AdminGroup string `yaml:"admin_group" mapstructure:"admin_group"`
}

// CacheConfig holds the configuration for the quota/statistics caches.
type CacheConfig struct {
	// Enabled indicates whether caching is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Type is the cache backend, either "memory" or "redis".
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the redis server when Type is "redis".
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// QuotaTTL is the quota cache entry lifetime in seconds.
	QuotaTTL int `yaml:"quota_ttl" mapstructure:"quota_ttl"`
	// StatisticsTTL is the statistics cache entry lifetime in seconds.
	StatisticsTTL int `yaml:"statistics_ttl" mapstructure:"statistics_ttl"`
}

// PreviewConfig holds the configuration for the gallery preview cache.
type PreviewConfig struct {
	// Enabled indicates whether preview thumbnails are generated.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Dir is the directory where scaled previews are stored.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// MaxWidth is the maximum width of a preview in pixels.
	MaxWidth int `yaml:"max_width" mapstructure:"max_width"`
	// MaxHeight is the maximum height of a preview in pixels.
	MaxHeight int `yaml:"max_height" mapstructure:"max_height"`
	// Quality is the JPEG quality (1-100) of stored previews.
	Quality int `yaml:"quality" mapstructure:"quality"`
	// MaxAge is the preview retention in hours before cleanup.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
}

// EmailConfig holds the quota alert email configuration.
type EmailConfig struct {
	// Enabled indicates whether quota alert emails are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which alerts are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which alerts are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// AdminEmail is the address quota alerts are delivered to.
	AdminEmail string `yaml:"admin_email" mapstructure:"admin_email"`
	// QuotaAlertPercent is the disk usage percentage that triggers an alert.
	QuotaAlertPercent int `yaml:"quota_alert_percent" mapstructure:"quota_alert_percent"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("COMPRESSRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.compressrank-admin")
		v.AddConfigPath("/etc/compressrank-admin")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with COMPRESSRANK_ prefix will override config file values")
	}

	resolveServiceURLs(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3003")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_max_age", 86400) // 24 hours

	// Auth defaults
	v.SetDefault("auth.credentials", true)
	v.SetDefault("auth.oidc.enabled", false)

	// Backend defaults
	v.SetDefault("auth_service.timeout", 30)
	v.SetDefault("image_service.timeout", 60)
	v.SetDefault("compression_service.timeout", 60)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.quota_ttl", 60)
	v.SetDefault("cache.statistics_ttl", 300)

	// Preview defaults
	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.dir", "./data/cache/previews")
	v.SetDefault("preview.max_width", 340)
	v.SetDefault("preview.max_height", 340)
	v.SetDefault("preview.quality", 85)
	v.SetDefault("preview.max_age", 168) // 7 days

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from_name", "CompressRank Admin")
	v.SetDefault("email.quota_alert_percent", 90)
	v.SetDefault("email.use_tls", true)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "robohash")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// resolveServiceURLs fills unset backend URLs from the gateway URL.
// The source mixed direct-to-service and gateway configurations; after this
// step the per-service URLs are the single source of truth.
func resolveServiceURLs(c *Config) {
	if c.GatewayURL == "" {
		return
	}
	if c.AuthService != nil && c.AuthService.URL == "" {
		c.AuthService.URL = c.GatewayURL
	}
	if c.ImageService != nil && c.ImageService.URL == "" {
		c.ImageService.URL = c.GatewayURL
	}
	if c.CompressionService != nil && c.CompressionService.URL == "" {
		c.CompressionService.URL = c.GatewayURL
	}
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}

	authEnabled := c.Auth.Credentials
	if c.Auth.OIDC != nil && c.Auth.OIDC.Enabled {
		authEnabled = true
		if c.Auth.OIDC.Issuer == "" {
			return fmt.Errorf("OIDC issuer is required when OIDC is enabled")
		}
		if c.Auth.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC client ID is required when OIDC is enabled")
		}
		if c.Auth.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC client secret is required when OIDC is enabled")
		}
		if c.Auth.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC redirect URL is required when OIDC is enabled")
		}
	}
	if !authEnabled {
		return fmt.Errorf("no authentication method is enabled")
	}

	if c.AuthService == nil || c.AuthService.URL == "" {
		return fmt.Errorf("auth service URL is required")
	}
	if c.ImageService == nil || c.ImageService.URL == "" {
		return fmt.Errorf("image service URL is required")
	}
	if c.CompressionService == nil || c.CompressionService.URL == "" {
		return fmt.Errorf("compression service URL is required")
	}

	if c.Cache != nil && c.Cache.Enabled && c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is redis")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
		if c.Email.AdminEmail == "" {
			return fmt.Errorf("admin email is required when email is enabled")
		}
	}

	return nil
}
