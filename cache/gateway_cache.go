package cache

import (
	"context"
	"fmt"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/codec"

	"github.com/DarlingInSteam/compressrank-admin/config"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// Cache key prefixes.
const (
	QuotaCachePrefix      = "quota-"
	StatisticsCachePrefix = "statistics-"
	AlertCachePrefix      = "quota-alert-"
)

// GatewayCache bundles the per-concern caches of the gateway. Quota and
// statistics entries expire on their own ttl from the cache config; alert
// entries dedupe quota notification mails.
type GatewayCache struct {
	QuotaCache      *PrefixedCache[imagesvc.Quota]
	StatisticsCache *PrefixedCache[imagesvc.Statistics]
	AlertCache      *PrefixedCache[bool]
}

func NewGatewayCache(cfg *config.CacheConfig) (*GatewayCache, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("cache is not enabled")
	}

	return &GatewayCache{
		QuotaCache:      NewPrefixedCache[imagesvc.Quota](newCacheInstanceByType(cfg), QuotaCachePrefix),
		StatisticsCache: NewPrefixedCache[imagesvc.Statistics](newCacheInstanceByType(cfg), StatisticsCachePrefix),
		AlertCache:      NewPrefixedCache[bool](newCacheInstanceByType(cfg), AlertCachePrefix),
	}, nil
}

func newCacheInstanceByType(cfg *config.CacheConfig) *cache.Cache[[]byte] {
	switch cfg.Type {
	case config.CacheTypeMemory:
		return newMemoryCache[[]byte]()
	case config.CacheTypeRedis:
		return newRedisCache[[]byte](cfg)
	default:
		return newMemoryCache[[]byte]()
	}
}

type Stats struct {
	*codec.Stats
	CacheName string `json:"cacheName"`
}

func (g *GatewayCache) GetStats() []*Stats {
	return []*Stats{
		{
			Stats:     g.QuotaCache.GetStats(),
			CacheName: "quota",
		},
		{
			Stats:     g.StatisticsCache.GetStats(),
			CacheName: "statistics",
		},
		{
			Stats:     g.AlertCache.GetStats(),
			CacheName: "quota-alert",
		},
	}
}

// Cleanup drops every cached backend response. The scheduler runs it
// periodically so stale entries cannot outlive a redis restart or a ttl
// misconfiguration.
func (g *GatewayCache) Cleanup(ctx context.Context) error {
	if err := g.QuotaCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear quota cache: %w", err)
	}
	if err := g.StatisticsCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear statistics cache: %w", err)
	}
	return nil
}
