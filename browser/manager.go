// Package browser owns the headless Chromium lifecycle: one shared
// browser process, and per-job sessions that each get an isolated
// incognito context with a stealth fingerprint applied.
package browser

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/models"
)

// Manager launches the browser once and hands out isolated sessions.
// It is safe for concurrent use.
type Manager struct {
	browser *rod.Browser
	cfg     config.BrowserConfig
	profile Fingerprint
	active  atomic.Int32
}

// NewManager launches a headless browser configured to avoid the obvious
// automation tells, and connects to it.
func NewManager(cfg config.BrowserConfig) (*Manager, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeSessionAcquisition,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeSessionAcquisition,
			"failed to connect to browser",
			err,
		)
	}

	return &Manager{
		browser: browser,
		cfg:     cfg,
		profile: FingerprintFromConfig(cfg),
	}, nil
}

// Open creates a session backed by a fresh incognito context and a page
// with the fingerprint profile applied. Cookies, cache, and fingerprint
// are scoped to the session: nothing is shared with other jobs.
//
// The session keeps the incognito handle WITHOUT the job context bound
// to it. The job context only scopes page creation here; binding it to
// the stored handle would make Close's CDP calls fail instantly once the
// job times out, leaving the context and its pages alive in Chrome.
//
// The caller owns the session exclusively and must Close it on every
// exit path.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	if !m.reserve() {
		return nil, models.NewCrawlError(
			models.ErrCodeSessionAcquisition,
			"session limit reached",
			nil,
		)
	}

	inc, err := m.browser.Incognito()
	if err != nil {
		m.release()
		return nil, models.NewCrawlError(
			models.ErrCodeSessionAcquisition,
			"failed to create incognito context",
			err,
		)
	}

	s := &Session{
		mgr:     m,
		inc:     inc,
		profile: m.profile,
		blocked: m.cfg.BlockedResourceTypes,
	}

	page, err := inc.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		s.disposeContext()
		m.release()
		return nil, models.NewCrawlError(
			models.ErrCodeSessionAcquisition,
			"failed to create page",
			err,
		)
	}

	if err := s.Adopt(page); err != nil {
		_ = page.Close()
		s.disposeContext()
		m.release()
		return nil, models.NewCrawlError(
			models.ErrCodeSessionAcquisition,
			"failed to apply fingerprint profile",
			err,
		)
	}
	s.page = page

	return s, nil
}

// reserve claims a session slot. Claim first, roll back on failure: a
// plain load-then-add lets concurrent opens all pass the check and
// exceed the bound.
func (m *Manager) reserve() bool {
	for {
		cur := m.active.Load()
		if int(cur) >= m.cfg.MaxSessions {
			return false
		}
		if m.active.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// release returns a reserved session slot.
func (m *Manager) release() {
	m.active.Add(-1)
}

// ActiveSessions reports the number of sessions currently open.
func (m *Manager) ActiveSessions() int {
	return int(m.active.Load())
}

// MaxSessions reports the configured session bound.
func (m *Manager) MaxSessions() int {
	return m.cfg.MaxSessions
}

// Close kills the browser process. Call this on graceful shutdown to
// prevent zombie Chrome processes.
func (m *Manager) Close() {
	slog.Info("browser manager shutting down")
	m.browser.MustClose()
	slog.Info("browser manager shutdown complete")
}
