package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoontopia/shopcrawl/cache"
	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/crawler"
	"github.com/zoontopia/shopcrawl/models"
	"github.com/zoontopia/shopcrawl/store"
	"github.com/zoontopia/shopcrawl/webhook"
)

// Crawl returns a handler for POST /api/v1/crawl/:platform?keyword=...
//
// Flow:
//  1. Validate platform + keyword.
//  2. Serve from the result cache when a fresh result set exists.
//  3. Run the crawl job synchronously.
//  4. Persist the records (when a store is configured).
//  5. Cache, notify the webhook, respond.
func Crawl(o *crawler.Orchestrator, st *store.Store, cc *cache.Cache, whCfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		platform := c.Param("platform")
		keyword := c.Query("keyword")
		if keyword == "" {
			c.JSON(http.StatusBadRequest, models.CrawlResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "missing required query parameter: keyword",
				},
			})
			return
		}

		// ── Result cache ────────────────────────────────────────────
		key := cache.Key(platform, keyword)
		if products, hit := cc.Get(key); hit {
			c.JSON(http.StatusOK, models.CrawlResponse{
				Success:  true,
				Platform: platform,
				Keyword:  keyword,
				Count:    len(products),
				Cached:   true,
				Products: products,
			})
			return
		}

		// ── Crawl ───────────────────────────────────────────────────
		result, err := o.Crawl(c.Request.Context(), platform, keyword)
		if err != nil {
			if whCfg.URL != "" {
				webhook.DeliverAsync(whCfg.URL, whCfg.Secret, &webhook.Event{
					Type:      "crawl.failed",
					Platform:  platform,
					Keyword:   keyword,
					Timestamp: time.Now().Unix(),
					Data:      gin.H{"code": models.CodeOf(err)},
				})
			}
			respondCrawlError(c, err)
			return
		}

		// ── Persist ─────────────────────────────────────────────────
		if st != nil && len(result.Products) > 0 {
			if err := st.SaveAll(c.Request.Context(), result.Products); err != nil {
				slog.Error("failed to persist products",
					"job", result.Job.ID, "error", err,
				)
				respondCrawlError(c, err)
				return
			}
			slog.Info("products saved",
				"job", result.Job.ID, "count", len(result.Products),
			)
		}

		cc.Set(key, result.Products)

		if whCfg.URL != "" {
			webhook.DeliverAsync(whCfg.URL, whCfg.Secret, &webhook.Event{
				Type:      "crawl.completed",
				JobID:     result.Job.ID,
				Platform:  platform,
				Keyword:   keyword,
				Timestamp: time.Now().Unix(),
				Data:      gin.H{"count": len(result.Products)},
			})
		}

		c.JSON(http.StatusOK, models.CrawlResponse{
			Success:  true,
			JobID:    result.Job.ID,
			Platform: platform,
			Keyword:  keyword,
			Count:    len(result.Products),
			Products: result.Products,
			Timing:   &result.Timing,
		})
	}
}

// Products returns a handler for GET /api/v1/products?keyword=...
func Products(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			c.JSON(http.StatusNotImplemented, models.CrawlResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeStorage,
					Message: "persistence is not configured",
				},
			})
			return
		}

		keyword := c.Query("keyword")
		if keyword == "" {
			c.JSON(http.StatusBadRequest, models.CrawlResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "missing required query parameter: keyword",
				},
			})
			return
		}

		products, err := st.FindByKeyword(c.Request.Context(), keyword)
		if err != nil {
			respondCrawlError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.CrawlResponse{
			Success:  true,
			Keyword:  keyword,
			Count:    len(products),
			Products: products,
		})
	}
}

// respondCrawlError maps a CrawlError to the correct HTTP status and
// writes a structured JSON error response.
func respondCrawlError(c *gin.Context, err error) {
	var crawlErr *models.CrawlError
	if !errors.As(err, &crawlErr) {
		crawlErr = models.NewCrawlError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(crawlErr), models.CrawlResponse{
		Success: false,
		Error:   crawlErr.ToDetail(),
	})
}

// mapErrorToStatus translates taxonomy codes to HTTP status codes.
func mapErrorToStatus(e *models.CrawlError) int {
	switch e.Code {
	case models.ErrCodeUnsupportedPlatform, models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeSessionAcquisition:
		return http.StatusServiceUnavailable
	case models.ErrCodeNavigationTimeout, models.ErrCodeInteractionTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeExtractionService:
		return http.StatusBadGateway
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
