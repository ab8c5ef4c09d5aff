package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zoontopia/shopcrawl/api"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/cache"
	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/crawler"
	"github.com/zoontopia/shopcrawl/llm"
	"github.com/zoontopia/shopcrawl/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("shopcrawl starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxSessions", cfg.Browser.MaxSessions,
	)

	// ── 3. Launch browser ───────────────────────────────────────────
	mgr, err := browser.NewManager(cfg.Browser)
	if err != nil {
		slog.Error("failed to initialise browser manager", "error", err)
		os.Exit(1)
	}
	defer mgr.Close()

	// ── 4. Site adapter registry ────────────────────────────────────
	registry, err := crawler.NewRegistry(
		crawler.NewNaver(cfg.Crawl),
		crawler.NewKurly(cfg.Crawl),
		crawler.NewGCMeat(cfg.Crawl),
	)
	if err != nil {
		slog.Error("failed to build adapter registry", "error", err)
		os.Exit(1)
	}
	slog.Info("adapters registered", "platforms", registry.Platforms())

	// ── 5. Extraction client + orchestrator ─────────────────────────
	gateway := llm.NewClient(nil, cfg.LLM)
	orch := crawler.NewOrchestrator(mgr, gateway, registry, cfg.Crawl, cfg.Scroll, cfg.LLM)

	// ── 6. Product store (optional) ─────────────────────────────────
	var st *store.Store
	if cfg.Mongo.URI != "" {
		st, err = store.Connect(context.Background(), cfg.Mongo)
		if err != nil {
			slog.Error("failed to connect to mongo", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				slog.Warn("mongo disconnect failed", "error", err)
			}
		}()
	} else {
		slog.Warn("no mongo URI configured, crawl results will not be persisted")
	}

	// ── 7. Result cache + router ────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge)

	startTime := time.Now()
	router := api.NewRouter(orch, mgr, st, cc, cfg, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight crawl requests a moment to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// mgr.Close() runs via defer and kills Chrome and its contexts.
	slog.Info("shopcrawl stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
