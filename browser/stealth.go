package browser

import (
	"github.com/go-rod/stealth"
	"github.com/zoontopia/shopcrawl/config"
)

// Fingerprint is the set of browser properties applied to every page a
// session owns: user agent, viewport, locale headers, and the init
// script that suppresses automation-detection signals such as
// navigator.webdriver.
type Fingerprint struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	InitScript     string
}

// FingerprintFromConfig builds the fingerprint profile from config.
// When no override script is configured, the bundled stealth script is
// used; a minimal webdriver-flag override is the floor either way.
func FingerprintFromConfig(cfg config.BrowserConfig) Fingerprint {
	script := cfg.StealthScript
	if script == "" {
		script = stealth.JS
	}
	return Fingerprint{
		UserAgent:      cfg.UserAgent,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		AcceptLanguage: cfg.AcceptLanguage,
		InitScript:     script,
	}
}
