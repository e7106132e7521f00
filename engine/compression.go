package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/DarlingInSteam/compressrank-admin/compsvc"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// Compress produces a compressed derivative of an image at the given level.
// The source record is never mutated by the backend.
func (e *Engine) Compress(ctx context.Context, tok, id string, level int) (*compsvc.Result, error) {
	if level < 0 || level > 100 {
		return nil, fmt.Errorf("compression level must be between 0 and 100, got %d", level)
	}

	result, err := e.compression.Compress(ctx, tok, id, level)
	if err != nil {
		return nil, err
	}

	log.Info("Compressed image",
		"imageID", id,
		"derivativeID", result.ImageID,
		"level", result.CompressionLevel,
		"compressedSize", humanize.IBytes(uint64(result.CompressedSize)), //nolint:gosec
	)
	e.invalidateStatistics(ctx, id)
	return result, nil
}

// Restore restores the original content of a compressed image.
func (e *Engine) Restore(ctx context.Context, tok, id string) error {
	if err := e.compression.Restore(ctx, tok, id); err != nil {
		return err
	}
	log.Info("Restored image", "imageID", id)
	e.invalidateStatistics(ctx, id)
	return nil
}

// OriginalSize returns the pre-compression size of an image in bytes.
func (e *Engine) OriginalSize(ctx context.Context, tok, id string) (int64, error) {
	return e.compression.GetOriginalSize(ctx, tok, id)
}

// DeleteImage deletes an image and drops its cached counters.
func (e *Engine) DeleteImage(ctx context.Context, tok, id string, ownerID int64) error {
	if err := e.images.DeleteImage(ctx, tok, id); err != nil {
		return err
	}
	log.Info("Deleted image", "imageID", id)
	e.invalidateStatistics(ctx, id)
	e.invalidateQuota(ctx, ownerID)
	return nil
}

// ImageMetadata returns the technical metadata of an image.
func (e *Engine) ImageMetadata(ctx context.Context, tok, id string) (*imagesvc.Metadata, error) {
	return e.images.GetMetadata(ctx, tok, id)
}
