package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/crawler"
	"github.com/zoontopia/shopcrawl/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports session utilisation and degrades status when every session
// slot is taken.
func Health(o *crawler.Orchestrator, mgr *browser.Manager, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := mgr.ActiveSessions()
		max := mgr.MaxSessions()

		status := "healthy"
		if max > 0 && active >= max {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         status,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSessions: active,
			MaxSessions:    max,
			Platforms:      o.Platforms(),
			Version:        "0.1.0",
		})
	}
}
