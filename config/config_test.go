package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should default to true")
	}
	if cfg.Browser.MaxSessions != 4 {
		t.Errorf("Browser.MaxSessions = %d, want 4", cfg.Browser.MaxSessions)
	}
	if cfg.Scroll.StepPixels != 500 || cfg.Scroll.MaxAttempts != 10 {
		t.Errorf("scroll defaults = %+v", cfg.Scroll)
	}
	if cfg.Crawl.JobTimeout != 180*time.Second {
		t.Errorf("Crawl.JobTimeout = %v, want 180s", cfg.Crawl.JobTimeout)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.ContentMode != "html" {
		t.Errorf("LLM.ContentMode = %q, want html", cfg.LLM.ContentMode)
	}
	if cfg.Cache.MaxAge != 0 {
		t.Errorf("Cache.MaxAge = %v, want 0 (disabled)", cfg.Cache.MaxAge)
	}

	// Stylesheets must not be blocked by default; lazy loading on the
	// target sites depends on layout.
	for _, rt := range cfg.Browser.BlockedResourceTypes {
		if rt == "Stylesheet" {
			t.Error("Stylesheet blocked by default")
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHOPCRAWL_PORT", "9090")
	t.Setenv("SHOPCRAWL_HEADLESS", "false")
	t.Setenv("SHOPCRAWL_SCROLL_MAX_ATTEMPTS", "25")
	t.Setenv("SHOPCRAWL_JOB_TIMEOUT", "90s")
	t.Setenv("SHOPCRAWL_API_KEYS", "key-a, key-b,,key-c")
	t.Setenv("SHOPCRAWL_RATE_RPS", "2.5")
	t.Setenv("SHOPCRAWL_LLM_CONTENT_MODE", "markdown")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("Browser.Headless should be false")
	}
	if cfg.Scroll.MaxAttempts != 25 {
		t.Errorf("Scroll.MaxAttempts = %d, want 25", cfg.Scroll.MaxAttempts)
	}
	if cfg.Crawl.JobTimeout != 90*time.Second {
		t.Errorf("Crawl.JobTimeout = %v, want 90s", cfg.Crawl.JobTimeout)
	}
	if len(cfg.Auth.APIKeys) != 3 || cfg.Auth.APIKeys[1] != "key-b" {
		t.Errorf("Auth.APIKeys = %v, want trimmed non-empty entries", cfg.Auth.APIKeys)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RateLimit.RequestsPerSecond = %v", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.LLM.ContentMode != "markdown" {
		t.Errorf("LLM.ContentMode = %q", cfg.LLM.ContentMode)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SHOPCRAWL_PORT", "not-a-number")
	t.Setenv("SHOPCRAWL_JOB_TIMEOUT", "soon")
	t.Setenv("SHOPCRAWL_HEADLESS", "maybe")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want the default on a malformed value", cfg.Server.Port)
	}
	if cfg.Crawl.JobTimeout != 180*time.Second {
		t.Errorf("Crawl.JobTimeout = %v, want the default", cfg.Crawl.JobTimeout)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should keep its default on a malformed value")
	}
}
