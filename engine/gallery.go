package engine

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/DarlingInSteam/compressrank-admin/gallery"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// originalSizeWorkers caps the fan-out against the compression backend when
// resolving pre-compression sizes for a gallery page.
const originalSizeWorkers = 8

// GalleryView assembles the gallery for the admin panel: the image catalog
// enriched with access statistics and original sizes, then filtered, sorted,
// grouped and paginated.
func (e *Engine) GalleryView(ctx context.Context, tok string, opts gallery.Options) (*gallery.View, error) {
	images, err := e.images.ListImages(ctx, tok)
	if err != nil {
		return nil, err
	}

	statsByID := e.listStatistics(ctx, tok)

	items := make([]gallery.Image, 0, len(images))
	for _, img := range images {
		item := gallery.Image{
			ID:               img.ID,
			OriginalFilename: img.OriginalFilename,
			ContentType:      img.ContentType,
			Size:             img.Size,
			CompressionLevel: img.CompressionLevel,
			OriginalImageID:  img.OriginalImageID,
			UploadedAt:       img.UploadedAt,
			AccessCount:      img.AccessCount,
		}
		if stats, ok := statsByID[img.ID]; ok {
			item.ViewCount = stats.ViewCount
			item.DownloadCount = stats.DownloadCount
		} else {
			// Degrade to the coarse access counter from the catalog.
			item.ViewCount = img.AccessCount
		}
		items = append(items, item)
	}

	e.resolveOriginalSizes(ctx, tok, items)

	view := gallery.DeriveView(items, opts)
	return &view, nil
}

// listStatistics fetches the per-image statistics in bulk. A failing
// statistics backend degrades the gallery instead of breaking it.
func (e *Engine) listStatistics(ctx context.Context, tok string) map[string]imagesvc.Statistics {
	stats, err := e.images.ListStatistics(ctx, tok)
	if err != nil {
		log.Warn("Failed to list image statistics, falling back to access counts", "error", err)
		return nil
	}
	return lo.KeyBy(stats, func(s imagesvc.Statistics) string {
		return s.ImageID
	})
}

// resolveOriginalSizes fills in the pre-compression size of every compressed
// image in place. Lookup failures leave the size at zero.
func (e *Engine) resolveOriginalSizes(ctx context.Context, tok string, items []gallery.Image) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(originalSizeWorkers)

	for i := range items {
		if !items[i].IsCompressed() {
			continue
		}
		g.Go(func() error {
			size, err := e.compression.GetOriginalSize(gctx, tok, items[i].ID)
			if err != nil {
				log.Debug("Failed to resolve original size", "imageID", items[i].ID, "error", err)
				return nil
			}
			items[i].OriginalSize = size
			return nil
		})
	}
	_ = g.Wait()
}
