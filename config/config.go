package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Crawl     CrawlConfig
	Scroll    ScrollConfig
	LLM       LLMConfig
	Mongo     MongoConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance and session fingerprint.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// MaxSessions bounds the number of concurrently open sessions.
	// Each session is an isolated incognito context plus a page.
	MaxSessions int // default: 4

	// UserAgent is the fingerprint user agent applied to every session page.
	UserAgent string

	// ViewportWidth / ViewportHeight are the fingerprint viewport size.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	// AcceptLanguage is sent as the Accept-Language header on every request.
	AcceptLanguage string // default: "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"

	// StealthScript overrides the bundled anti-detection init script.
	// Loaded from the file at SHOPCRAWL_STEALTH_SCRIPT_FILE when set.
	StealthScript string

	// BlockedResourceTypes lists resource types dropped by the hijack router.
	// Stylesheets stay enabled: shopping pages gate lazy loading on layout.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// CrawlConfig controls per-job timeouts.
type CrawlConfig struct {
	// JobTimeout is the hard deadline for one crawl job end to end.
	JobTimeout time.Duration // default: 180s

	// NavigationTimeout bounds a single page navigation.
	NavigationTimeout time.Duration // default: 30s

	// InteractionTimeout bounds a single search interaction step
	// (waiting for the search box, typing, clicking).
	InteractionTimeout time.Duration // default: 20s
}

// ScrollConfig controls the progressive loader.
type ScrollConfig struct {
	// StepPixels is the distance of one in-page scroll step.
	StepPixels int // default: 500

	// StepDelay is the pause between scroll steps inside one pass.
	StepDelay time.Duration // default: 1s

	// SettleDelay is the wait after a full pass before re-measuring height.
	SettleDelay time.Duration // default: 2s

	// MaxAttempts caps the number of full scroll passes.
	MaxAttempts int // default: 10
}

// LLMConfig controls the extraction service client.
type LLMConfig struct {
	// APIKey authenticates against the extraction service.
	APIKey string

	// Model is the model used for extraction.
	Model string // default: "gemini-2.0-flash"

	// BaseURL is an OpenAI-compatible chat completions endpoint.
	BaseURL string // default: Gemini's OpenAI-compatibility endpoint

	// Timeout is the deadline for one extraction call.
	Timeout time.Duration // default: 120s

	// MaxItems caps the number of products the service is asked to extract.
	MaxItems int // default: 50

	// ContentMode selects the payload format sent to the service:
	// "html" (sanitized HTML) or "markdown" (converted, fewer tokens).
	ContentMode string // default: "html"
}

// MongoConfig controls the product store.
type MongoConfig struct {
	// URI is the MongoDB connection string. Empty disables persistence.
	URI string

	// Database is the database name. default: "crawling"
	Database string

	// Collection is the products collection name. default: "products"
	Collection string

	// ConnectTimeout bounds the initial connect + ping.
	ConnectTimeout time.Duration // default: 10s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the crawl result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached result sets.
	MaxEntries int // default: 256

	// MaxAge is how long a cached result set stays servable.
	// Zero disables the cache.
	MaxAge time.Duration // default: 0
}

// WebhookConfig controls crawl completion notifications.
type WebhookConfig struct {
	// URL receives crawl.completed / crawl.failed events. Empty disables.
	URL string

	// Secret signs event payloads with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SHOPCRAWL_HOST", "0.0.0.0"),
			Port: envIntOr("SHOPCRAWL_PORT", 8080),
			Mode: envOr("SHOPCRAWL_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("SHOPCRAWL_HEADLESS", true),
			NoSandbox:      envBoolOr("SHOPCRAWL_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("SHOPCRAWL_BROWSER_BIN"),
			MaxSessions:    envIntOr("SHOPCRAWL_MAX_SESSIONS", 4),
			UserAgent:      envOr("SHOPCRAWL_USER_AGENT", defaultUserAgent),
			ViewportWidth:  envIntOr("SHOPCRAWL_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("SHOPCRAWL_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: envOr("SHOPCRAWL_ACCEPT_LANGUAGE", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"),
			StealthScript:  envFileOr("SHOPCRAWL_STEALTH_SCRIPT_FILE", ""),
			BlockedResourceTypes: envSliceOr("SHOPCRAWL_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Crawl: CrawlConfig{
			JobTimeout:         envDurationOr("SHOPCRAWL_JOB_TIMEOUT", 180*time.Second),
			NavigationTimeout:  envDurationOr("SHOPCRAWL_NAV_TIMEOUT", 30*time.Second),
			InteractionTimeout: envDurationOr("SHOPCRAWL_INTERACTION_TIMEOUT", 20*time.Second),
		},
		Scroll: ScrollConfig{
			StepPixels:  envIntOr("SHOPCRAWL_SCROLL_STEP", 500),
			StepDelay:   envDurationOr("SHOPCRAWL_SCROLL_STEP_DELAY", time.Second),
			SettleDelay: envDurationOr("SHOPCRAWL_SCROLL_SETTLE_DELAY", 2*time.Second),
			MaxAttempts: envIntOr("SHOPCRAWL_SCROLL_MAX_ATTEMPTS", 10),
		},
		LLM: LLMConfig{
			APIKey:      os.Getenv("SHOPCRAWL_LLM_API_KEY"),
			Model:       envOr("SHOPCRAWL_LLM_MODEL", "gemini-2.0-flash"),
			BaseURL:     envOr("SHOPCRAWL_LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			Timeout:     envDurationOr("SHOPCRAWL_LLM_TIMEOUT", 120*time.Second),
			MaxItems:    envIntOr("SHOPCRAWL_LLM_MAX_ITEMS", 50),
			ContentMode: envOr("SHOPCRAWL_LLM_CONTENT_MODE", "html"),
		},
		Mongo: MongoConfig{
			URI:            os.Getenv("SHOPCRAWL_MONGO_URI"),
			Database:       envOr("SHOPCRAWL_MONGO_DATABASE", "crawling"),
			Collection:     envOr("SHOPCRAWL_MONGO_COLLECTION", "products"),
			ConnectTimeout: envDurationOr("SHOPCRAWL_MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SHOPCRAWL_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SHOPCRAWL_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SHOPCRAWL_RATE_RPS", 1.0),
			Burst:             envIntOr("SHOPCRAWL_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SHOPCRAWL_CACHE_MAX_ENTRIES", 256),
			MaxAge:     envDurationOr("SHOPCRAWL_CACHE_MAX_AGE", 0),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("SHOPCRAWL_WEBHOOK_URL"),
			Secret: os.Getenv("SHOPCRAWL_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("SHOPCRAWL_LOG_LEVEL", "info"),
			Format: envOr("SHOPCRAWL_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

// envFileOr reads the file named by the env var, falling back when the
// variable is unset or the file cannot be read.
func envFileOr(key, fallback string) string {
	path := os.Getenv(key)
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	return string(data)
}
