package engine

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DarlingInSteam/compressrank-admin/cache"
	"github.com/DarlingInSteam/compressrank-admin/compsvc"
	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/httpx"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// mockImageService is a hand-rolled ImageService for engine tests.
type mockImageService struct {
	images     []imagesvc.Image
	imagesErr  error
	metadata   map[string]*imagesvc.Metadata
	quota      *imagesvc.Quota
	quotaErr   error
	stats      []imagesvc.Statistics
	statsErr   error
	statsCalls int
	deleted    []string
	uploadErr  map[string]error
	uploaded   []string
}

func (m *mockImageService) ListImages(ctx context.Context, tok string) ([]imagesvc.Image, error) {
	return m.images, m.imagesErr
}

func (m *mockImageService) GetMetadata(ctx context.Context, tok, id string) (*imagesvc.Metadata, error) {
	if meta, ok := m.metadata[id]; ok {
		return meta, nil
	}
	return nil, httpx.NewStatusError(404, nil)
}

func (m *mockImageService) GetQuota(ctx context.Context, tok string, userID int64) (*imagesvc.Quota, error) {
	if m.quotaErr != nil {
		return nil, m.quotaErr
	}
	return m.quota, nil
}

func (m *mockImageService) ListStatistics(ctx context.Context, tok string) ([]imagesvc.Statistics, error) {
	return m.stats, m.statsErr
}

func (m *mockImageService) GetStatistics(ctx context.Context, tok, id string) (*imagesvc.Statistics, error) {
	m.statsCalls++
	for _, s := range m.stats {
		if s.ImageID == id {
			return &s, nil
		}
	}
	return nil, httpx.NewStatusError(404, nil)
}

func (m *mockImageService) DeleteImage(ctx context.Context, tok, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockImageService) Upload(ctx context.Context, tok string, identity imagesvc.Identity, filename, contentType string, data io.Reader) (*imagesvc.Image, error) {
	if err, ok := m.uploadErr[filename]; ok {
		return nil, err
	}
	m.uploaded = append(m.uploaded, filename)
	return &imagesvc.Image{ID: "uploaded-" + filename, OriginalFilename: filename}, nil
}

func (m *mockImageService) Download(ctx context.Context, tok, id string) (io.ReadCloser, string, error) {
	return nil, "", fmt.Errorf("not implemented")
}

// mockCompressionService is a hand-rolled CompressionService for engine
// tests.
type mockCompressionService struct {
	originalSizes map[string]int64
	compressErr   error
	restored      []string
}

func (m *mockCompressionService) Compress(ctx context.Context, tok, id string, level int) (*compsvc.Result, error) {
	if m.compressErr != nil {
		return nil, m.compressErr
	}
	return &compsvc.Result{
		ImageID:          id + "-compressed",
		OriginalImageID:  id,
		CompressionLevel: level,
		CompressedSize:   512,
	}, nil
}

func (m *mockCompressionService) Restore(ctx context.Context, tok, id string) error {
	m.restored = append(m.restored, id)
	return nil
}

func (m *mockCompressionService) GetOriginalSize(ctx context.Context, tok, id string) (int64, error) {
	if size, ok := m.originalSizes[id]; ok {
		return size, nil
	}
	return 0, httpx.NewStatusError(404, nil)
}

// mockNotifier records quota alerts.
type mockNotifier struct {
	alerts []string
}

func (m *mockNotifier) SendQuotaAlert(username string, quota *imagesvc.Quota) error {
	m.alerts = append(m.alerts, username)
	return nil
}

func newTestEngine(t *testing.T, images *mockImageService, compression *mockCompressionService) *Engine {
	t.Helper()

	cfg := &config.Config{
		Cache: &config.CacheConfig{
			Enabled:       true,
			Type:          config.CacheTypeMemory,
			QuotaTTL:      60,
			StatisticsTTL: 300,
		},
		Email: &config.EmailConfig{
			Enabled:           true,
			QuotaAlertPercent: 90,
		},
	}

	gatewayCache, err := cache.NewGatewayCache(cfg.Cache)
	require.NoError(t, err)

	return &Engine{
		cfg:         cfg,
		images:      images,
		compression: compression,
		cache:       gatewayCache,
		notifier:    &mockNotifier{},
	}
}
