package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/DarlingInSteam/compressrank-admin/config"
)

// FetchFunc retrieves the original bytes of an image from the storage
// backend. The returned reader must be closed by the caller.
type FetchFunc func(ctx context.Context, id string) (io.ReadCloser, string, error)

// PreviewCache keeps downscaled gallery previews on disk so the admin panel
// never streams full-size originals just to render a thumbnail grid.
type PreviewCache struct {
	cacheDir  string
	fetch     FetchFunc
	maxWidth  int
	maxHeight int
	quality   int // JPEG quality (1-100)
}

// NewPreviewCache creates a new preview cache backed by the configured
// directory.
func NewPreviewCache(cfg *config.PreviewConfig, fetch FetchFunc) *PreviewCache {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		log.Errorf("Failed to create preview cache directory: %v", err)
	}

	return &PreviewCache{
		cacheDir:  cfg.Dir,
		fetch:     fetch,
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		quality:   cfg.Quality,
	}
}

// getCacheKey generates a cache key from the image ID.
func (pc *PreviewCache) getCacheKey(id string) string {
	hash := md5.Sum([]byte(id))
	return fmt.Sprintf("%x", hash)
}

func (pc *PreviewCache) getCacheFilePath(id, contentType string) string {
	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	}
	// webp sources degrade to jpeg, imaging has no webp encoder
	return filepath.Join(pc.cacheDir, pc.getCacheKey(id)+ext)
}

// GetPreviewPath returns the local path of the downscaled preview for an
// image, generating it on first access.
func (pc *PreviewCache) GetPreviewPath(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty image id")
	}

	// The extension depends on the backend content type, so probe every
	// candidate path before fetching.
	for _, ext := range []string{".jpg", ".png", ".gif"} {
		candidate := filepath.Join(pc.cacheDir, pc.getCacheKey(id)+ext)
		if _, err := os.Stat(candidate); err == nil {
			log.Debugf("Using cached preview: %s", candidate)
			return candidate, nil
		}
	}

	log.Debugf("Generating preview for image: %s", id)
	return pc.fetchAndCache(ctx, id)
}

// fetchAndCache downloads an image from the storage backend, scales it and
// saves the preview.
func (pc *PreviewCache) fetchAndCache(ctx context.Context, id string) (string, error) {
	body, contentType, err := pc.fetch(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer body.Close() //nolint:errcheck

	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("invalid content type: %s", contentType)
	}

	img, _, err := image.Decode(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	cacheFilePath := pc.getCacheFilePath(id, contentType)
	tempFilePath := filepath.Join(pc.cacheDir, "tmp_"+filepath.Base(cacheFilePath))
	defer os.Remove(tempFilePath) //nolint:errcheck

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	processedImg := img
	if originalWidth > pc.maxWidth || originalHeight > pc.maxHeight {
		newWidth, newHeight := pc.calculateScaledDimensions(originalWidth, originalHeight)
		processedImg = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
		log.Debugf("Resized preview from %dx%d to %dx%d for: %s",
			originalWidth, originalHeight, newWidth, newHeight, id)
	}

	if err := pc.saveImage(processedImg, tempFilePath); err != nil {
		return "", fmt.Errorf("failed to save preview: %w", err)
	}

	// Atomic move into the final location.
	if err := os.Rename(tempFilePath, cacheFilePath); err != nil {
		return "", fmt.Errorf("failed to move temp file: %w", err)
	}

	log.Infof("Cached preview: %s -> %s (%dx%d)", id, cacheFilePath,
		processedImg.Bounds().Dx(), processedImg.Bounds().Dy())
	return cacheFilePath, nil
}

// ServePreview writes the preview of an image to the response, generating it
// if necessary.
func (pc *PreviewCache) ServePreview(ctx context.Context, id string, w http.ResponseWriter, r *http.Request) error {
	cacheFilePath, err := pc.GetPreviewPath(ctx, id)
	if err != nil {
		return err
	}

	file, err := os.Open(cacheFilePath)
	if err != nil {
		return fmt.Errorf("failed to open preview: %w", err)
	}
	defer file.Close() //nolint:errcheck

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat preview: %w", err)
	}

	switch filepath.Ext(cacheFilePath) {
	case ".jpg", ".jpeg":
		w.Header().Set("Content-Type", "image/jpeg")
	case ".png":
		w.Header().Set("Content-Type", "image/png")
	case ".webp":
		w.Header().Set("Content-Type", "image/webp")
	case ".gif":
		w.Header().Set("Content-Type", "image/gif")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	http.ServeContent(w, r, fileInfo.Name(), fileInfo.ModTime(), file)
	return nil
}

// CleanupOld removes cached previews older than the specified duration.
func (pc *PreviewCache) CleanupOld(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	return filepath.Walk(pc.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && info.ModTime().Before(cutoff) {
			log.Debugf("Removing old preview: %s", path)
			return os.Remove(path)
		}

		return nil
	})
}

// calculateScaledDimensions calculates new dimensions while maintaining
// aspect ratio.
func (pc *PreviewCache) calculateScaledDimensions(originalWidth, originalHeight int) (int, int) {
	widthRatio := float64(pc.maxWidth) / float64(originalWidth)
	heightRatio := float64(pc.maxHeight) / float64(originalHeight)

	ratio := widthRatio
	if heightRatio < widthRatio {
		ratio = heightRatio
	}

	return int(float64(originalWidth) * ratio), int(float64(originalHeight) * ratio)
}

func (pc *PreviewCache) saveImage(img image.Image, filePath string) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return imaging.Save(img, filePath, imaging.PNGCompressionLevel(6))
	case ".gif":
		return imaging.Save(img, filePath)
	default:
		return imaging.Save(img, filePath, imaging.JPEGQuality(pc.quality))
	}
}
