// Package engine orchestrates the backend services behind the admin panel:
// it aggregates the image catalog, statistics, quotas and compression
// operations into the views the API serves.
package engine

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/DarlingInSteam/compressrank-admin/cache"
	"github.com/DarlingInSteam/compressrank-admin/compsvc"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
	"github.com/DarlingInSteam/compressrank-admin/notify/email"
)

// ImageService is the surface of the image storage backend the engine uses.
type ImageService interface {
	ListImages(ctx context.Context, tok string) ([]imagesvc.Image, error)
	GetMetadata(ctx context.Context, tok, id string) (*imagesvc.Metadata, error)
	GetQuota(ctx context.Context, tok string, userID int64) (*imagesvc.Quota, error)
	ListStatistics(ctx context.Context, tok string) ([]imagesvc.Statistics, error)
	GetStatistics(ctx context.Context, tok, id string) (*imagesvc.Statistics, error)
	DeleteImage(ctx context.Context, tok, id string) error
	Upload(ctx context.Context, tok string, identity imagesvc.Identity, filename, contentType string, data io.Reader) (*imagesvc.Image, error)
	Download(ctx context.Context, tok, id string) (io.ReadCloser, string, error)
}

// CompressionService is the surface of the compression backend the engine
// uses.
type CompressionService interface {
	Compress(ctx context.Context, tok, id string, level int) (*compsvc.Result, error)
	Restore(ctx context.Context, tok, id string) error
	GetOriginalSize(ctx context.Context, tok, id string) (int64, error)
}

// Notifier delivers quota alerts.
type Notifier interface {
	SendQuotaAlert(username string, quota *imagesvc.Quota) error
}

// Engine aggregates the platform backends for the admin panel.
type Engine struct {
	cfg         *config.Config
	images      ImageService
	compression CompressionService
	cache       *cache.GatewayCache
	notifier    Notifier
	preview     *cache.PreviewCache
}

// New creates a new Engine instance from the configuration.
func New(cfg *config.Config) (*Engine, error) {
	imageClient := imagesvc.New(cfg.ImageService)
	compressionClient := compsvc.New(cfg.CompressionService)

	e := &Engine{
		cfg:         cfg,
		images:      imageClient,
		compression: compressionClient,
	}

	if cfg.Cache != nil && cfg.Cache.Enabled {
		gatewayCache, err := cache.NewGatewayCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		e.cache = gatewayCache
	} else {
		log.Warn("Cache is disabled, every request hits the backends directly")
	}

	if cfg.Email != nil && cfg.Email.Enabled {
		e.notifier = email.New(cfg.Email)
	}

	if cfg.Preview != nil && cfg.Preview.Enabled {
		e.preview = cache.NewPreviewCache(cfg.Preview, e.fetchImage)
	}

	return e, nil
}

// Cache returns the gateway cache, or nil when caching is disabled.
func (e *Engine) Cache() *cache.GatewayCache {
	return e.cache
}

// Preview returns the preview cache, or nil when previews are disabled.
func (e *Engine) Preview() *cache.PreviewCache {
	return e.preview
}

// fetchImage downloads the original bytes of an image for the preview cache.
// Previews are generated on behalf of the panel itself, not a specific user,
// so the request carries no token. The storage backend serves image content
// publicly by id.
func (e *Engine) fetchImage(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return e.images.Download(ctx, "", id)
}

// Close stops the engine and cleans up resources.
func (e *Engine) Close() error {
	return nil
}
