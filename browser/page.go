package browser

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/zoontopia/shopcrawl/config"
)

// ResultPage is the surface of a search-results page the crawl pipeline
// consumes after the site interaction is done: load everything, snapshot
// the DOM, and report the origin for resolving relative links.
type ResultPage interface {
	// LoadAll scrolls until the page stops growing or the attempt cap
	// runs out.
	LoadAll(ctx context.Context, cfg config.ScrollConfig) (ScrollResult, error)

	// HTML returns the full serialized DOM.
	HTML(ctx context.Context) (string, error)

	// Origin reports the page's current origin; empty on failure.
	Origin(ctx context.Context) string
}

// Live wraps a rod page as a ResultPage.
func Live(page *rod.Page) ResultPage {
	return livePage{page: page}
}

type livePage struct {
	page *rod.Page
}

func (l livePage) LoadAll(ctx context.Context, cfg config.ScrollConfig) (ScrollResult, error) {
	return ScrollToBottom(ctx, l.page.Context(ctx), cfg)
}

func (l livePage) HTML(ctx context.Context) (string, error) {
	return l.page.Context(ctx).HTML()
}

func (l livePage) Origin(ctx context.Context) string {
	res, err := l.page.Context(ctx).Eval(`() => window.location.origin`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
