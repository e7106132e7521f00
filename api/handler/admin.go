package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/cache"
)

// Metrics serves host resource usage and platform-wide dashboard totals.
func (h *Handler) Metrics(c *gin.Context) {
	ctx := c.Request.Context()

	system, err := h.engine.SystemMetrics(ctx)
	if err != nil {
		respondError(c, "system metrics", err)
		return
	}

	dashboard, err := h.engine.DashboardMetrics(ctx, bearerToken(c))
	if err != nil {
		respondError(c, "dashboard metrics", err)
		return
	}

	var cacheStats []*cache.Stats
	if gc := h.engine.Cache(); gc != nil {
		cacheStats = gc.GetStats()
	}

	c.JSON(http.StatusOK, gin.H{
		"system":    system,
		"dashboard": dashboard,
		"caches":    cacheStats,
	})
}

// ListJobs serves the state of all scheduled jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	if h.sched == nil {
		c.JSON(http.StatusOK, gin.H{"jobs": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": h.sched.GetJobs()})
}

// RunJob triggers one scheduled job immediately.
func (h *Handler) RunJob(c *gin.Context) {
	if h.sched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := h.sched.RunJobNow(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
