// Package crawler composes the browser, cleaner, llm, and repair stages
// into one crawl job per invocation, dispatched to a site adapter that
// knows only its platform's navigation and search interaction.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/models"
)

// Adapter supplies the site-specific half of a crawl: where to go and
// how to search. Everything after the search is shared and uniform
// across platforms.
type Adapter interface {
	// Platform returns the stable platform identifier this adapter serves.
	Platform() string

	// Search navigates to the site and performs the human-mimicking
	// search interaction for keyword, returning the page that shows the
	// results (which may be a popup adopted into the session).
	Search(ctx context.Context, s *browser.Session, keyword string) (browser.ResultPage, error)
}

// Registry maps platform keys to adapters. Keys are case-insensitive.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry, rejecting duplicate platform keys at
// startup rather than letting one adapter shadow another at runtime.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		key := strings.ToLower(a.Platform())
		if key == "" {
			return nil, fmt.Errorf("adapter %T has an empty platform key", a)
		}
		if _, exists := m[key]; exists {
			return nil, fmt.Errorf("duplicate platform key %q", key)
		}
		m[key] = a
	}
	return &Registry{adapters: m}, nil
}

// Lookup resolves a platform key to its adapter.
func (r *Registry) Lookup(platform string) (Adapter, bool) {
	a, ok := r.adapters[strings.ToLower(platform)]
	return a, ok
}

// Platforms lists the registered platform keys.
func (r *Registry) Platforms() []string {
	keys := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, k)
	}
	return keys
}

// navError wraps a navigation failure with the taxonomy code. Bounded
// waits that expire and hard navigation failures surface the same way:
// fatal to the job, no automatic retry.
func navError(err error) error {
	var ce *models.CrawlError
	if errors.As(err, &ce) {
		return ce
	}
	return models.NewCrawlError(models.ErrCodeNavigationTimeout, "navigation failed", err)
}

// interactionError wraps a failed or timed-out search interaction step.
func interactionError(step string, err error) error {
	var ce *models.CrawlError
	if errors.As(err, &ce) {
		return ce
	}
	return models.NewCrawlError(
		models.ErrCodeInteractionTimeout,
		fmt.Sprintf("search interaction failed at %s", step),
		err,
	)
}
