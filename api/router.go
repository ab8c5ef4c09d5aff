// Package api exposes the crawl operation over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoontopia/shopcrawl/api/handler"
	"github.com/zoontopia/shopcrawl/api/middleware"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/cache"
	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/crawler"
	"github.com/zoontopia/shopcrawl/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(o *crawler.Orchestrator, mgr *browser.Manager, st *store.Store, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(o, mgr, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/crawl/:platform", handler.Crawl(o, st, cc, cfg.Webhook))
	protected.GET("/products", handler.Products(st))

	return r
}
