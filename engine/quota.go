package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/store"

	"github.com/DarlingInSteam/compressrank-admin/format"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// quotaAlertDedup is how long a quota alert for one user is suppressed after
// it was sent.
const quotaAlertDedup = 24 * time.Hour

// Quota returns the usage limits of a user. Results are cached. A failing
// quota endpoint degrades to zeroed usage so the panel keeps rendering.
func (e *Engine) Quota(ctx context.Context, tok string, userID int64, username string) (*imagesvc.Quota, error) {
	if e.cache != nil {
		if cached, err := e.cache.QuotaCache.Get(ctx, userID); err == nil {
			log.Debug("Quota cache hit", "userID", userID)
			return &cached, nil
		}
	}

	quota, err := e.images.GetQuota(ctx, tok, userID)
	if err != nil {
		log.Warn("Failed to get quota, degrading to zero usage", "userID", userID, "error", err)
		return &imagesvc.Quota{UserID: userID}, nil
	}

	// Percentages are recomputed locally so a backend that reports raw
	// values only, or values above 100, still renders sanely.
	quota.ImagesPercent = format.QuotaPercent(quota.ImagesUsed, quota.ImagesQuota)
	quota.DiskSpacePercent = format.QuotaPercent(quota.DiskSpaceUsed, quota.DiskSpaceQuota)

	if e.cache != nil {
		ttl := time.Duration(e.cfg.Cache.QuotaTTL) * time.Second
		if err := e.cache.QuotaCache.Set(ctx, userID, *quota, store.WithExpiration(ttl)); err != nil {
			log.Warn("Failed to cache quota", "userID", userID, "error", err)
		}
	}

	e.maybeSendQuotaAlert(ctx, username, quota)
	return quota, nil
}

// maybeSendQuotaAlert notifies the administrator once per dedup window when a
// user's disk usage crosses the alert threshold.
func (e *Engine) maybeSendQuotaAlert(ctx context.Context, username string, quota *imagesvc.Quota) {
	if e.notifier == nil || e.cfg.Email == nil {
		return
	}
	if quota.DiskSpacePercent < e.cfg.Email.QuotaAlertPercent {
		return
	}

	if e.cache != nil {
		if _, err := e.cache.AlertCache.Get(ctx, quota.UserID); err == nil {
			log.Debug("Quota alert already sent", "userID", quota.UserID)
			return
		}
	}

	if err := e.notifier.SendQuotaAlert(username, quota); err != nil {
		log.Error("Failed to send quota alert", "userID", quota.UserID, "error", err)
		return
	}

	if e.cache != nil {
		if err := e.cache.AlertCache.Set(ctx, quota.UserID, true, store.WithExpiration(quotaAlertDedup)); err != nil {
			log.Warn("Failed to record quota alert", "userID", quota.UserID, "error", err)
		}
	}
}

// invalidateQuota drops the cached quota of a user after a mutation that
// changes their usage.
func (e *Engine) invalidateQuota(ctx context.Context, userID int64) {
	if e.cache == nil {
		return
	}
	if err := e.cache.QuotaCache.Delete(ctx, userID); err != nil {
		log.Debug("Failed to invalidate quota cache", "userID", userID, "error", err)
	}
}
