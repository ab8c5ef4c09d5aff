package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/config"
)

const kurlyHomeURL = "https://www.kurly.com/main"

// Kurly crawls Market Kurly's search results. Search submits with Enter;
// results render in place on the same page.
type Kurly struct {
	cfg config.CrawlConfig
}

// NewKurly creates the Market Kurly adapter.
func NewKurly(cfg config.CrawlConfig) *Kurly {
	return &Kurly{cfg: cfg}
}

// Platform implements Adapter.
func (a *Kurly) Platform() string { return "kurly" }

// Search implements Adapter.
func (a *Kurly) Search(ctx context.Context, s *browser.Session, keyword string) (browser.ResultPage, error) {
	page := s.Page().Context(ctx)

	if err := page.Timeout(a.cfg.NavigationTimeout).Navigate(kurlyHomeURL); err != nil {
		return nil, navError(err)
	}
	if err := page.Timeout(a.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return nil, navError(err)
	}
	if err := browser.Pause(ctx, 800*time.Millisecond, 1200*time.Millisecond); err != nil {
		return nil, interactionError("settle", err)
	}

	searchInput, err := page.Timeout(a.cfg.InteractionTimeout).Element(`input[placeholder="검색어를 입력해주세요"]`)
	if err != nil {
		return nil, interactionError("search box", err)
	}
	if err := searchInput.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, interactionError("search box click", err)
	}
	if err := browser.TypeHumanly(ctx, page, keyword); err != nil {
		return nil, interactionError("typing", err)
	}
	if err := browser.PressEnter(page); err != nil {
		return nil, interactionError("submit", err)
	}

	if err := page.Timeout(a.cfg.NavigationTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("results page did not converge, proceeding with current DOM", "error", err)
	}
	// Kurly renders the grid client-side; give it a beat longer.
	if err := browser.Pause(ctx, 1500*time.Millisecond, 2500*time.Millisecond); err != nil {
		return nil, interactionError("results settle", err)
	}
	return browser.Live(page), nil
}
