package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/config"
)

const gcmeatHomeURL = "https://www.ekcm.co.kr/"

// GCMeat crawls the Geumcheon wholesale meat market mall. A plain
// id-addressed search box, submitted with Enter.
type GCMeat struct {
	cfg config.CrawlConfig
}

// NewGCMeat creates the Geumcheon meat market adapter.
func NewGCMeat(cfg config.CrawlConfig) *GCMeat {
	return &GCMeat{cfg: cfg}
}

// Platform implements Adapter.
func (a *GCMeat) Platform() string { return "gcmeat" }

// Search implements Adapter.
func (a *GCMeat) Search(ctx context.Context, s *browser.Session, keyword string) (browser.ResultPage, error) {
	page := s.Page().Context(ctx)

	if err := page.Timeout(a.cfg.NavigationTimeout).Navigate(gcmeatHomeURL); err != nil {
		return nil, navError(err)
	}
	if err := page.Timeout(a.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return nil, navError(err)
	}
	if err := browser.Pause(ctx, 1500*time.Millisecond, 2500*time.Millisecond); err != nil {
		return nil, interactionError("settle", err)
	}

	searchInput, err := page.Timeout(a.cfg.InteractionTimeout).Element("#schText")
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
	return browser.Live(page), nil
}
