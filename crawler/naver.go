package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/config"
)

const naverHomeURL = "https://www.naver.com/"

// Naver crawls Naver's integrated search and follows the "네이버 가격비교
// 더보기" link into the price-comparison tab, where the full product grid
// lives. The comparison page opens as a popup, which the session adopts
// so the stealth fingerprint carries over.
type Naver struct {
	cfg config.CrawlConfig
}

// NewNaver creates the Naver adapter.
func NewNaver(cfg config.CrawlConfig) *Naver {
	return &Naver{cfg: cfg}
}

// Platform implements Adapter.
func (a *Naver) Platform() string { return "naver" }

// Search implements Adapter.
func (a *Naver) Search(ctx context.Context, s *browser.Session, keyword string) (browser.ResultPage, error) {
	page := s.Page().Context(ctx)

	if err := page.Timeout(a.cfg.NavigationTimeout).Navigate(naverHomeURL); err != nil {
		return nil, navError(err)
	}
	if err := page.Timeout(a.cfg.NavigationTimeout).WaitLoad(); err != nil {
		return nil, navError(err)
	}
	// Let the home page settle; waiting for network idle stalls forever
	// on ad and tracking traffic.
	if err := browser.Pause(ctx, 800*time.Millisecond, 1200*time.Millisecond); err != nil {
		return nil, interactionError("settle", err)
	}

	searchInput, err := page.Timeout(a.cfg.InteractionTimeout).Element(`input[title="검색어를 입력해 주세요."]`)
	if err != nil {
		return nil, interactionError("search box", err)
	}
	if err := searchInput.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, interactionError("search box click", err)
	}
	if err := browser.TypeHumanly(ctx, page, keyword); err != nil {
		return nil, interactionError("typing", err)
	}

	searchButton, err := page.Timeout(a.cfg.InteractionTimeout).Element("#search-btn")
	if err != nil {
		return nil, interactionError("search button", err)
	}
	if err := browser.HoverClick(ctx, searchButton); err != nil {
		return nil, interactionError("search button click", err)
	}

	if err := page.Timeout(a.cfg.NavigationTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("results page did not converge, proceeding with current DOM", "error", err)
	}
	if err := browser.Pause(ctx, 800*time.Millisecond, 1200*time.Millisecond); err != nil {
		return nil, interactionError("results settle", err)
	}

	// The comparison link is best-effort: when it is missing (few
	// results, layout change) the integrated results page still carries
	// products worth extracting.
	moreLink, err := page.Timeout(5 * time.Second).ElementR("a", "네이버 가격비교 더보기")
	if err != nil {
		slog.Warn("price comparison link not found, extracting current page", "error", err)
		return browser.Live(page), nil
	}
	if err := moreLink.ScrollIntoView(); err != nil {
		slog.Warn("could not scroll comparison link into view", "error", err)
		return browser.Live(page), nil
	}

	popup, err := s.ExpectPopup(func() error {
		return browser.HoverClick(ctx, moreLink)
	})
	if err != nil {
		slog.Warn("price comparison tab did not open, extracting current page", "error", err)
		return browser.Live(page), nil
	}

	popup = popup.Context(ctx)
	if err := popup.Timeout(a.cfg.NavigationTimeout).WaitLoad(); err != nil {
		slog.Warn("price comparison tab load wait failed, proceeding", "error", err)
	}
	s.SwitchTo(popup)
	return browser.Live(popup), nil
}
