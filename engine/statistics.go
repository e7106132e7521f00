package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/store"

	"github.com/DarlingInSteam/compressrank-admin/httpx"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// ImageStatistics returns the view and download counters of one image. The
// result is cached. When the statistics endpoint has no record for the image,
// the coarse access counter from the image metadata stands in for views.
func (e *Engine) ImageStatistics(ctx context.Context, tok, id string) (*imagesvc.Statistics, error) {
	if e.cache != nil {
		if cached, err := e.cache.StatisticsCache.Get(ctx, id); err == nil {
			log.Debug("Statistics cache hit", "imageID", id)
			return &cached, nil
		}
	}

	stats, err := e.images.GetStatistics(ctx, tok, id)
	if err != nil {
		if !httpx.IsStatus(err, http.StatusNotFound) {
			log.Warn("Failed to get image statistics", "imageID", id, "error", err)
			return &imagesvc.Statistics{ImageID: id}, nil
		}

		meta, metaErr := e.images.GetMetadata(ctx, tok, id)
		if metaErr != nil {
			log.Warn("Failed to get image metadata for statistics fallback", "imageID", id, "error", metaErr)
			return &imagesvc.Statistics{ImageID: id}, nil
		}
		stats = &imagesvc.Statistics{
			ImageID:   id,
			ViewCount: meta.AccessCount,
		}
	}

	e.cacheStatistics(ctx, stats)
	return stats, nil
}

// AllStatistics returns the counters of every image the statistics endpoint
// knows about. Unlike the per-image lookup this is not cached, the listing is
// meant for the dashboard which refreshes on its own schedule.
func (e *Engine) AllStatistics(ctx context.Context, tok string) ([]imagesvc.Statistics, error) {
	return e.images.ListStatistics(ctx, tok)
}

func (e *Engine) cacheStatistics(ctx context.Context, stats *imagesvc.Statistics) {
	if e.cache == nil {
		return
	}
	ttl := time.Duration(e.cfg.Cache.StatisticsTTL) * time.Second
	if err := e.cache.StatisticsCache.Set(ctx, stats.ImageID, *stats, store.WithExpiration(ttl)); err != nil {
		log.Warn("Failed to cache image statistics", "imageID", stats.ImageID, "error", err)
	}
}

// invalidateStatistics drops the cached counters of an image after a
// mutation.
func (e *Engine) invalidateStatistics(ctx context.Context, id string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.StatisticsCache.Delete(ctx, id); err != nil {
		log.Debug("Failed to invalidate statistics cache", "imageID", id, "error", err)
	}
}
