package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/go-co-op/gocron/v2"

	"github.com/DarlingInSteam/compressrank-admin/scheduler"
)

// ServePreview writes the downscaled preview of an image to the response.
func (e *Engine) ServePreview(ctx context.Context, id string, w http.ResponseWriter, r *http.Request) error {
	if e.preview == nil {
		return fmt.Errorf("previews are disabled")
	}
	return e.preview.ServePreview(ctx, id, w, r)
}

// RegisterJobs adds the engine's maintenance jobs to the scheduler.
func (e *Engine) RegisterJobs(s *scheduler.Scheduler) error {
	if e.cache != nil {
		err := s.AddJob("cache-cleanup", "Cache cleanup", "every 12h",
			gocron.DurationJob(12*time.Hour),
			e.cache.Cleanup,
		)
		if err != nil {
			return err
		}
	}

	if e.preview != nil && e.cfg.Preview.MaxAge > 0 {
		maxAge := time.Duration(e.cfg.Preview.MaxAge) * time.Hour
		err := s.AddJob("preview-cleanup", "Preview cleanup", "every 6h",
			gocron.DurationJob(6*time.Hour),
			func(ctx context.Context) error {
				return e.preview.CleanupOld(maxAge)
			},
		)
		if err != nil {
			return err
		}
	}

	return s.AddJob("metrics-sample", "System metrics sample", "every 5m",
		gocron.DurationJob(5*time.Minute),
		e.sampleSystemMetrics,
	)
}

// sampleSystemMetrics keeps an eye on the gateway host between dashboard
// visits. High disk usage endangers the preview cache, so it is logged loudly.
func (e *Engine) sampleSystemMetrics(ctx context.Context) error {
	metrics, err := e.SystemMetrics(ctx)
	if err != nil {
		return err
	}

	if metrics.DiskUsedPercent >= 90 {
		log.Warn("Gateway disk is almost full",
			"used", humanize.IBytes(metrics.DiskUsed),
			"total", humanize.IBytes(metrics.DiskTotal),
			"percent", metrics.DiskUsedPercent,
		)
		return nil
	}

	log.Debug("Sampled system metrics",
		"cpuPercent", metrics.CPUPercent,
		"memoryPercent", metrics.MemoryUsedPercent,
		"diskPercent", metrics.DiskUsedPercent,
	)
	return nil
}
