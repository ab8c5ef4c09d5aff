package browser

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Session is one job's exclusively-owned browsing scope: an incognito
// context plus the pages opened inside it. Every page the session owns
// carries the same fingerprint profile, since injecting only the first
// page would leave popups detectable.
type Session struct {
	mgr     *Manager
	inc     *rod.Browser
	profile Fingerprint
	blocked []string

	mu      sync.Mutex
	page    *rod.Page
	pages   []*rod.Page
	routers []*rod.HijackRouter

	closeOnce sync.Once
}

// Page returns the session's current page.
func (s *Session) Page() *rod.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Adopt applies the fingerprint profile and resource blocking to a page
// and registers it for cleanup. Called for the initial page and for
// every popup the session takes over.
func (s *Session) Adopt(page *rod.Page) error {
	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      s.profile.UserAgent,
		AcceptLanguage: s.profile.AcceptLanguage,
	}).Call(page); err != nil {
		return err
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.profile.ViewportWidth,
		Height:            s.profile.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return err
	}

	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": s.profile.AcceptLanguage,
		}),
	}).Call(page); err != nil {
		return err
	}

	// The init script only takes effect for navigations after injection,
	// so adoption must happen before the page is pointed anywhere.
	if _, err := page.EvalOnNewDocument(s.profile.InitScript); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	if router := blockResources(page, s.blocked); router != nil {
		s.mu.Lock()
		s.routers = append(s.routers, router)
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()
	return nil
}

// ExpectPopup runs trigger (typically a click that opens a new tab) and
// returns the page it opened, already adopted into the session.
func (s *Session) ExpectPopup(trigger func() error) (*rod.Page, error) {
	wait := s.Page().WaitOpen()
	if err := trigger(); err != nil {
		return nil, err
	}
	popup, err := wait()
	if err != nil {
		return nil, err
	}
	if err := s.Adopt(popup); err != nil {
		_ = popup.Close()
		return nil, err
	}
	return popup, nil
}

// SwitchTo makes page the session's current page and closes the previous
// one. The page must already be adopted.
func (s *Session) SwitchTo(page *rod.Page) {
	s.mu.Lock()
	old := s.page
	s.page = page
	s.mu.Unlock()

	if old != nil && old != page {
		if err := old.Close(); err != nil {
			slog.Warn("failed to close previous page", "error", err)
		}
	}
}

// Close releases every page and the incognito context, then returns the
// session slot to the manager. It is idempotent and safe to defer on
// every exit path; no exception path may skip it.
//
// Cleanup runs detached from whatever context the pages were last bound
// to: Close is typically reached exactly because the job context timed
// out or was cancelled, and the CDP teardown calls must still go through.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		routers := s.routers
		pages := s.pages
		s.mu.Unlock()

		for _, r := range routers {
			_ = r.Stop()
		}
		for _, p := range pages {
			_ = detach(p).Close()
		}
		s.disposeContext()
		if s.mgr != nil {
			s.mgr.release()
		}
	})
}

// detach rebinds a page to a fresh background context so teardown calls
// outlive the expired job context.
func detach(p *rod.Page) *rod.Page {
	return p.Context(context.Background())
}

// disposeContext tears down the incognito browser context. Closing the
// pages alone is not enough: the context keeps cookies and cache alive.
// The stored incognito handle carries no job context (see Manager.Open),
// so disposal works after a timeout as well.
func (s *Session) disposeContext() {
	if s.inc == nil || s.inc.BrowserContextID == "" {
		return
	}
	err := proto.TargetDisposeBrowserContext{
		BrowserContextID: s.inc.BrowserContextID,
	}.Call(s.inc)
	if err != nil {
		slog.Warn("failed to dispose browser context", "error", err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
