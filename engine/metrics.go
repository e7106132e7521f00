package engine

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// SystemMetrics is a snapshot of the host running the gateway.
type SystemMetrics struct {
	CPUPercent        float64 `json:"cpuPercent"`
	MemoryUsed        uint64  `json:"memoryUsed"`
	MemoryTotal       uint64  `json:"memoryTotal"`
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	DiskUsed          uint64  `json:"diskUsed"`
	DiskTotal         uint64  `json:"diskTotal"`
	DiskUsedPercent   float64 `json:"diskUsedPercent"`
}

// DashboardMetrics aggregates the image catalog for the admin dashboard.
type DashboardMetrics struct {
	TotalImages      int            `json:"totalImages"`
	CompressedImages int            `json:"compressedImages"`
	TotalSize        int64          `json:"totalSize"`
	SavedBytes       int64          `json:"savedBytes"`
	TotalViews       int64          `json:"totalViews"`
	TotalDownloads   int64          `json:"totalDownloads"`
	ImagesByType     map[string]int `json:"imagesByType"`
	TopImages        []TopImage     `json:"topImages"`
}

// TopImage is one entry of the dashboard's most-viewed list.
type TopImage struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
	ViewCount        int64  `json:"viewCount"`
	DownloadCount    int64  `json:"downloadCount"`
	Popularity       int64  `json:"popularity"`
}

// topImageCount caps the dashboard's most-viewed list.
const topImageCount = 5

// SystemMetrics collects host metrics for the admin panel.
func (e *Engine) SystemMetrics(ctx context.Context) (*SystemMetrics, error) {
	metrics := &SystemMetrics{}

	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		log.Warn("Failed to collect cpu metrics", "error", err)
	} else if len(cpuPercents) > 0 {
		metrics.CPUPercent = cpuPercents[0]
	}

	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		log.Warn("Failed to collect memory metrics", "error", err)
	} else {
		metrics.MemoryUsed = vmem.Used
		metrics.MemoryTotal = vmem.Total
		metrics.MemoryUsedPercent = vmem.UsedPercent
	}

	diskPath := "/"
	if e.cfg.Preview != nil && e.cfg.Preview.Dir != "" {
		diskPath = e.cfg.Preview.Dir
	}
	usage, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		log.Warn("Failed to collect disk metrics", "path", diskPath, "error", err)
	} else {
		metrics.DiskUsed = usage.Used
		metrics.DiskTotal = usage.Total
		metrics.DiskUsedPercent = usage.UsedPercent
	}

	return metrics, nil
}

// DashboardMetrics aggregates catalog totals. Statistics failures degrade to
// zero counters, the catalog itself is required.
func (e *Engine) DashboardMetrics(ctx context.Context, tok string) (*DashboardMetrics, error) {
	images, err := e.images.ListImages(ctx, tok)
	if err != nil {
		return nil, err
	}

	metrics := &DashboardMetrics{
		TotalImages:  len(images),
		ImagesByType: make(map[string]int),
	}
	for _, img := range images {
		metrics.TotalSize += img.Size
		metrics.ImagesByType[img.ContentType]++
		if img.CompressionLevel > 0 || img.OriginalImageID != "" {
			metrics.CompressedImages++
		}
	}

	// Savings are the difference between original and compressed sizes of
	// the derivatives we can resolve.
	for _, img := range images {
		if img.OriginalImageID == "" && img.CompressionLevel == 0 {
			continue
		}
		size, err := e.compression.GetOriginalSize(ctx, tok, img.ID)
		if err != nil {
			log.Debug("Failed to resolve original size for dashboard", "imageID", img.ID, "error", err)
			continue
		}
		if size > img.Size {
			metrics.SavedBytes += size - img.Size
		}
	}

	if stats, err := e.images.ListStatistics(ctx, tok); err != nil {
		log.Warn("Failed to list statistics for dashboard", "error", err)
	} else {
		byID := lo.KeyBy(images, func(img imagesvc.Image) string { return img.ID })
		top := make([]TopImage, 0, len(stats))
		for _, s := range stats {
			metrics.TotalViews += s.ViewCount
			metrics.TotalDownloads += s.DownloadCount
			entry := TopImage{
				ID:            s.ImageID,
				ViewCount:     s.ViewCount,
				DownloadCount: s.DownloadCount,
				Popularity:    s.ViewCount + 2*s.DownloadCount,
			}
			if img, ok := byID[s.ImageID]; ok {
				entry.OriginalFilename = img.OriginalFilename
			}
			top = append(top, entry)
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].Popularity != top[j].Popularity {
				return top[i].Popularity > top[j].Popularity
			}
			return top[i].ID < top[j].ID
		})
		if len(top) > topImageCount {
			top = top[:topImageCount]
		}
		metrics.TopImages = top
	}

	//nolint:gosec
	log.Debug("Computed dashboard metrics",
		"images", metrics.TotalImages,
		"totalSize", humanize.IBytes(uint64(metrics.TotalSize)),
		"saved", humanize.IBytes(uint64(metrics.SavedBytes)),
	)
	return metrics, nil
}
