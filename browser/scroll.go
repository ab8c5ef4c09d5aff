package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/zoontopia/shopcrawl/config"
)

// The progressive loader reveals lazily-rendered content on infinite or
// virtualized scroll pages. There is no reliable "loading complete"
// signal, so it scrolls, waits, and re-measures until the document
// height stops changing, or gives up at the attempt cap and keeps
// whatever loaded, on the policy that partial results beat blocking
// forever.

// Pager is the minimal page surface the loader needs.
type Pager interface {
	// ScrollHeight reports the document's current scrollable height.
	ScrollHeight() (int, error)

	// ScrollPass scrolls incrementally from the current position toward
	// the bottom, pausing between steps so lazy sections can mount.
	ScrollPass() error
}

// ScrollResult reports how a scroll run terminated.
type ScrollResult struct {
	// Attempts is the number of full scroll passes performed.
	Attempts int

	// Stable is true when two consecutive passes measured the same
	// height ("bottom reached"); false when the attempt cap ran out.
	Stable bool

	// FinalHeight is the last measured document height.
	FinalHeight int
}

// LoadAll runs scroll passes until the height stabilizes or the attempt
// cap is exhausted. Exhaustion is not an error. Any height change counts
// as "not yet stable", a decrease included, since collapsing content is
// still movement.
func LoadAll(ctx context.Context, p Pager, cfg config.ScrollConfig) (ScrollResult, error) {
	last, err := p.ScrollHeight()
	if err != nil {
		return ScrollResult{}, err
	}

	res := ScrollResult{FinalHeight: last}
	for res.Attempts < cfg.MaxAttempts {
		if err := p.ScrollPass(); err != nil {
			return res, err
		}
		if err := settle(ctx, cfg.SettleDelay); err != nil {
			return res, err
		}

		h, err := p.ScrollHeight()
		if err != nil {
			return res, err
		}
		res.Attempts++
		res.FinalHeight = h

		if h == last {
			res.Stable = true
			return res, nil
		}
		last = h
	}
	return res, nil
}

// ScrollToBottom runs the loader against a live page.
func ScrollToBottom(ctx context.Context, page *rod.Page, cfg config.ScrollConfig) (ScrollResult, error) {
	return LoadAll(ctx, &rodPager{page: page, cfg: cfg}, cfg)
}

// scrollPassJS scrolls in fixed-size steps inside the browser, where the
// stepping stays smooth regardless of CDP round-trip latency. It bails
// out early when the document grows mid-pass; the outer loop re-measures.
const scrollPassJS = `async () => {
	const delay = (ms) => new Promise((resolve) => setTimeout(resolve, ms));
	const total = document.body.scrollHeight;
	while (window.scrollY + window.innerHeight < total) {
		window.scrollBy(0, %d);
		await delay(%d);
		if (document.body.scrollHeight > total) break;
	}
}`

type rodPager struct {
	page *rod.Page
	cfg  config.ScrollConfig
}

func (p *rodPager) ScrollHeight() (int, error) {
	res, err := p.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPager) ScrollPass() error {
	js := fmt.Sprintf(scrollPassJS, p.cfg.StepPixels, p.cfg.StepDelay.Milliseconds())
	_, err := p.page.Eval(js)
	return err
}

func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
