package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/google/uuid"
	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/cleaner"
	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/models"
	"github.com/zoontopia/shopcrawl/repair"
)

// Opener acquires browser sessions. *browser.Manager satisfies it.
type Opener interface {
	Open(ctx context.Context) (*browser.Session, error)
}

// Gateway invokes the external extraction service. *llm.Client
// satisfies it.
type Gateway interface {
	Extract(ctx context.Context, content, keyword, platform string, fields []models.Field) (string, error)
}

// Job identifies one crawl invocation. Immutable; it exists only for
// the duration of the orchestration call.
type Job struct {
	ID        string
	Platform  string
	Keyword   string
	StartedAt time.Time
}

// Result is the outcome of one successfully completed crawl job.
type Result struct {
	Job      Job
	Products []models.Product
	Timing   models.CrawlTimingInfo
}

// Orchestrator runs the full crawl pipeline for one platform+keyword.
type Orchestrator struct {
	opener    Opener
	gateway   Gateway
	registry  *Registry
	crawlCfg  config.CrawlConfig
	scrollCfg config.ScrollConfig
	llmCfg    config.LLMConfig
	mdConv    *converter.Converter
}

// NewOrchestrator wires the pipeline stages together. The markdown
// converter is only used when the LLM content mode asks for it.
func NewOrchestrator(opener Opener, gateway Gateway, registry *Registry, crawlCfg config.CrawlConfig, scrollCfg config.ScrollConfig, llmCfg config.LLMConfig) *Orchestrator {
	return &Orchestrator{
		opener:    opener,
		gateway:   gateway,
		registry:  registry,
		crawlCfg:  crawlCfg,
		scrollCfg: scrollCfg,
		llmCfg:    llmCfg,
		mdConv:    cleaner.NewMarkdownConverter(),
	}
}

// Platforms lists the platform keys the orchestrator can serve.
func (o *Orchestrator) Platforms() []string {
	return o.registry.Platforms()
}

// Crawl executes one job: session → site search → progressive scroll →
// sanitize → extraction call → repair/assemble.
//
// Resource and navigation failures abort the job and surface with their
// taxonomy code. Content-level failures (truncated or malformed
// extraction output) degrade to fewer or zero records: a partial product
// list is more useful to the caller than no response at all.
//
// The session is released on every exit path, including timeout and
// cancellation; no session outlives its job.
func (o *Orchestrator) Crawl(ctx context.Context, platform, keyword string) (*Result, error) {
	job := Job{
		ID:        uuid.NewString(),
		Platform:  platform,
		Keyword:   keyword,
		StartedAt: time.Now(),
	}
	log := slog.With("job", job.ID, "platform", platform, "keyword", keyword)

	// Resolve the adapter before acquiring anything: an unknown platform
	// must not cost a browser session.
	adapter, ok := o.registry.Lookup(platform)
	if !ok {
		return nil, models.NewCrawlError(
			models.ErrCodeUnsupportedPlatform,
			"unsupported platform: "+platform,
			nil,
		)
	}

	ctx, cancel := context.WithTimeout(ctx, o.crawlCfg.JobTimeout)
	defer cancel()

	sess, err := o.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	log.Info("crawl started")

	// ── Site-specific navigation + search ───────────────────────────
	searchStart := time.Now()
	page, err := adapter.Search(ctx, sess, keyword)
	if err != nil {
		return nil, err
	}
	interactionMs := time.Since(searchStart).Milliseconds()

	// ── Progressive scroll until the page stops growing ─────────────
	scrollStart := time.Now()
	scrolled, err := page.LoadAll(ctx, o.scrollCfg)
	if err != nil {
		return nil, navError(err)
	}
	scrollMs := time.Since(scrollStart).Milliseconds()
	log.Info("scroll finished",
		"attempts", scrolled.Attempts,
		"stable", scrolled.Stable,
		"height", scrolled.FinalHeight,
	)

	// ── Snapshot + sanitize ─────────────────────────────────────────
	rawHTML, err := page.HTML(ctx)
	if err != nil {
		return nil, navError(err)
	}
	content := cleaner.Sanitize(rawHTML)
	if o.llmCfg.ContentMode == "markdown" {
		if md, mdErr := cleaner.ToMarkdown(o.mdConv, content, page.Origin(ctx)); mdErr == nil {
			content = md
		} else {
			log.Warn("markdown conversion failed, sending sanitized HTML", "error", mdErr)
		}
	}
	log.Info("snapshot sanitized",
		"rawBytes", len(rawHTML),
		"cleanBytes", len(content),
		"estTokens", cleaner.EstimateTokens(content),
	)

	// ── Extraction call ─────────────────────────────────────────────
	extractStart := time.Now()
	raw, err := o.gateway.Extract(ctx, content, keyword, adapter.Platform(), models.ProductFields)
	if err != nil {
		return nil, err
	}
	extractionMs := time.Since(extractStart).Milliseconds()

	// ── Repair + assemble ───────────────────────────────────────────
	items, err := repair.Repair(raw)
	if err != nil {
		// Unparseable output degrades to zero records; the job still
		// succeeds. The code stays visible in logs so garbage responses
		// are distinguishable from genuinely empty pages.
		log.Warn("extraction output unrecoverable, returning zero records",
			"code", models.CodeOf(err), "error", err,
		)
		items = []map[string]any{}
	}
	products := repair.AssembleProducts(adapter.Platform(), keyword, items)

	log.Info("crawl finished", "products", len(products))
	return &Result{
		Job:      job,
		Products: products,
		Timing: models.CrawlTimingInfo{
			TotalMs:       time.Since(job.StartedAt).Milliseconds(),
			InteractionMs: interactionMs,
			ScrollMs:      scrollMs,
			ExtractionMs:  extractionMs,
		},
	}, nil
}
