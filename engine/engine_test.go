package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarlingInSteam/compressrank-admin/gallery"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

var testUploadedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func catalogFixture() []imagesvc.Image {
	return []imagesvc.Image{
		{ID: "1", OriginalFilename: "photo.png", ContentType: "image/png", Size: 2048, UploadedAt: testUploadedAt, AccessCount: 7},
		{ID: "2", OriginalFilename: "photo-small.png", ContentType: "image/png", Size: 512, CompressionLevel: 60, OriginalImageID: "1", UploadedAt: testUploadedAt.Add(time.Hour)},
		{ID: "3", OriginalFilename: "scan.jpg", ContentType: "image/jpeg", Size: 4096, UploadedAt: testUploadedAt.Add(2 * time.Hour), AccessCount: 3},
	}
}

func TestEngine_GalleryView(t *testing.T) {
	images := &mockImageService{
		images: catalogFixture(),
		stats: []imagesvc.Statistics{
			{ImageID: "1", ViewCount: 10, DownloadCount: 4},
		},
	}
	compression := &mockCompressionService{
		originalSizes: map[string]int64{"2": 2048},
	}
	e := newTestEngine(t, images, compression)

	view, err := e.GalleryView(context.Background(), "tok", gallery.Options{Now: testUploadedAt.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, view.Items, 3)

	byID := map[string]gallery.Image{}
	for _, item := range view.Items {
		byID[item.ID] = item
	}

	// Statistics merged where present.
	assert.Equal(t, int64(10), byID["1"].ViewCount)
	assert.Equal(t, int64(4), byID["1"].DownloadCount)

	// No statistics record degrades to the catalog access counter.
	assert.Equal(t, int64(3), byID["3"].ViewCount)
	assert.Zero(t, byID["3"].DownloadCount)

	// Original size resolved for the compressed derivative only.
	assert.Equal(t, int64(2048), byID["2"].OriginalSize)
	assert.Zero(t, byID["1"].OriginalSize)
}

func TestEngine_GalleryView_StatisticsBackendDown(t *testing.T) {
	images := &mockImageService{
		images:   catalogFixture(),
		statsErr: assert.AnError,
	}
	e := newTestEngine(t, images, &mockCompressionService{})

	view, err := e.GalleryView(context.Background(), "tok", gallery.Options{Now: testUploadedAt.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, view.Items, 3)

	for _, item := range view.Items {
		assert.Equal(t, item.AccessCount, item.ViewCount)
	}
}

func TestEngine_GalleryView_CatalogRequired(t *testing.T) {
	images := &mockImageService{imagesErr: assert.AnError}
	e := newTestEngine(t, images, &mockCompressionService{})

	_, err := e.GalleryView(context.Background(), "tok", gallery.Options{})
	assert.Error(t, err)
}

func TestEngine_ImageStatistics(t *testing.T) {
	t.Run("caches the backend response", func(t *testing.T) {
		images := &mockImageService{
			stats: []imagesvc.Statistics{{ImageID: "1", ViewCount: 10, DownloadCount: 4}},
		}
		e := newTestEngine(t, images, &mockCompressionService{})

		stats, err := e.ImageStatistics(context.Background(), "tok", "1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), stats.ViewCount)

		again, err := e.ImageStatistics(context.Background(), "tok", "1")
		require.NoError(t, err)
		assert.Equal(t, stats, again)
		assert.Equal(t, 1, images.statsCalls)
	})

	t.Run("falls back to metadata access count", func(t *testing.T) {
		images := &mockImageService{
			metadata: map[string]*imagesvc.Metadata{
				"1": {ImageID: "1", AccessCount: 9},
			},
		}
		e := newTestEngine(t, images, &mockCompressionService{})

		stats, err := e.ImageStatistics(context.Background(), "tok", "1")
		require.NoError(t, err)
		assert.Equal(t, int64(9), stats.ViewCount)
		assert.Zero(t, stats.DownloadCount)
	})

	t.Run("degrades to zero counters", func(t *testing.T) {
		e := newTestEngine(t, &mockImageService{}, &mockCompressionService{})

		stats, err := e.ImageStatistics(context.Background(), "tok", "unknown")
		require.NoError(t, err)
		assert.Equal(t, "unknown", stats.ImageID)
		assert.Zero(t, stats.ViewCount)
	})
}

func TestEngine_Quota(t *testing.T) {
	t.Run("recomputes percentages", func(t *testing.T) {
		images := &mockImageService{
			quota: &imagesvc.Quota{
				UserID:         42,
				ImagesUsed:     10,
				ImagesQuota:    100,
				DiskSpaceUsed:  900,
				DiskSpaceQuota: 1000,
			},
		}
		e := newTestEngine(t, images, &mockCompressionService{})

		quota, err := e.Quota(context.Background(), "tok", 42, "alice")
		require.NoError(t, err)
		assert.Equal(t, 10, quota.ImagesPercent)
		assert.Equal(t, 90, quota.DiskSpacePercent)
	})

	t.Run("degrades to zero usage", func(t *testing.T) {
		images := &mockImageService{quotaErr: assert.AnError}
		e := newTestEngine(t, images, &mockCompressionService{})

		quota, err := e.Quota(context.Background(), "tok", 42, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(42), quota.UserID)
		assert.Zero(t, quota.DiskSpaceUsed)
	})

	t.Run("alerts once above the threshold", func(t *testing.T) {
		images := &mockImageService{
			quota: &imagesvc.Quota{
				UserID:         42,
				DiskSpaceUsed:  950,
				DiskSpaceQuota: 1000,
			},
		}
		e := newTestEngine(t, images, &mockCompressionService{})
		notifier := e.notifier.(*mockNotifier)

		_, err := e.Quota(context.Background(), "tok", 42, "alice")
		require.NoError(t, err)
		require.Equal(t, []string{"alice"}, notifier.alerts)

		// A second lookup within the dedup window sends nothing more.
		e.invalidateQuota(context.Background(), 42)
		_, err = e.Quota(context.Background(), "tok", 42, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, notifier.alerts)
	})

	t.Run("no alert below the threshold", func(t *testing.T) {
		images := &mockImageService{
			quota: &imagesvc.Quota{
				UserID:         42,
				DiskSpaceUsed:  500,
				DiskSpaceQuota: 1000,
			},
		}
		e := newTestEngine(t, images, &mockCompressionService{})

		_, err := e.Quota(context.Background(), "tok", 42, "alice")
		require.NoError(t, err)
		assert.Empty(t, e.notifier.(*mockNotifier).alerts)
	})
}

func TestEngine_UploadAll(t *testing.T) {
	images := &mockImageService{
		uploadErr: map[string]error{"broken.png": assert.AnError},
	}
	e := newTestEngine(t, images, &mockCompressionService{})

	identity := imagesvc.Identity{UserID: 42, Username: "alice", Role: "admin"}
	items := e.UploadAll(context.Background(), "tok", identity, []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Data: strings.NewReader("a")},
		{Filename: "broken.png", ContentType: "image/png", Data: strings.NewReader("b")},
		{Filename: "c.png", ContentType: "image/png", Data: strings.NewReader("c")},
	})

	require.Len(t, items, 3)
	assert.Equal(t, UploadStatusSuccess, items[0].Status)
	assert.Equal(t, "uploaded-a.png", items[0].ImageID)
	assert.Equal(t, UploadStatusError, items[1].Status)
	assert.NotEmpty(t, items[1].Error)
	// The failure never stops the rest of the batch.
	assert.Equal(t, UploadStatusSuccess, items[2].Status)
	assert.Equal(t, []string{"a.png", "c.png"}, images.uploaded)
}

func TestEngine_Compress(t *testing.T) {
	e := newTestEngine(t, &mockImageService{}, &mockCompressionService{})

	t.Run("rejects out of range levels", func(t *testing.T) {
		_, err := e.Compress(context.Background(), "tok", "1", -1)
		assert.Error(t, err)
		_, err = e.Compress(context.Background(), "tok", "1", 101)
		assert.Error(t, err)
	})

	t.Run("passes through the backend result", func(t *testing.T) {
		result, err := e.Compress(context.Background(), "tok", "1", 60)
		require.NoError(t, err)
		assert.Equal(t, "1-compressed", result.ImageID)
		assert.Equal(t, 60, result.CompressionLevel)
	})
}

func TestEngine_DeleteImage_InvalidatesCaches(t *testing.T) {
	images := &mockImageService{
		stats: []imagesvc.Statistics{{ImageID: "1", ViewCount: 5}},
		quota: &imagesvc.Quota{UserID: 42, DiskSpaceUsed: 10, DiskSpaceQuota: 100},
	}
	e := newTestEngine(t, images, &mockCompressionService{})

	// Warm both caches.
	_, err := e.ImageStatistics(context.Background(), "tok", "1")
	require.NoError(t, err)
	_, err = e.Quota(context.Background(), "tok", 42, "alice")
	require.NoError(t, err)

	require.NoError(t, e.DeleteImage(context.Background(), "tok", "1", 42))
	assert.Equal(t, []string{"1"}, images.deleted)

	// The statistics lookup hits the backend again after invalidation.
	before := images.statsCalls
	_, err = e.ImageStatistics(context.Background(), "tok", "1")
	require.NoError(t, err)
	assert.Equal(t, before+1, images.statsCalls)
}

func TestEngine_DashboardMetrics(t *testing.T) {
	images := &mockImageService{
		images: catalogFixture(),
		stats: []imagesvc.Statistics{
			{ImageID: "1", ViewCount: 10, DownloadCount: 4},
			{ImageID: "3", ViewCount: 2, DownloadCount: 1},
		},
	}
	compression := &mockCompressionService{
		originalSizes: map[string]int64{"2": 2048},
	}
	e := newTestEngine(t, images, compression)

	metrics, err := e.DashboardMetrics(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.TotalImages)
	assert.Equal(t, 1, metrics.CompressedImages)
	assert.Equal(t, int64(2048+512+4096), metrics.TotalSize)
	assert.Equal(t, int64(2048-512), metrics.SavedBytes)
	assert.Equal(t, int64(12), metrics.TotalViews)
	assert.Equal(t, int64(5), metrics.TotalDownloads)

	assert.Equal(t, map[string]int{"image/png": 2, "image/jpeg": 1}, metrics.ImagesByType)

	// Top images ordered by popularity, filenames resolved from the catalog.
	require.Len(t, metrics.TopImages, 2)
	assert.Equal(t, "1", metrics.TopImages[0].ID)
	assert.Equal(t, "photo.png", metrics.TopImages[0].OriginalFilename)
	assert.Equal(t, int64(18), metrics.TopImages[0].Popularity)
	assert.Equal(t, "3", metrics.TopImages[1].ID)
}
