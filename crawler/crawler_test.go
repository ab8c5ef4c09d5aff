package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/zoontopia/shopcrawl/browser"
	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/models"
)

type stubAdapter struct {
	platform string
	page     browser.ResultPage
}

func (a *stubAdapter) Platform() string { return a.platform }

func (a *stubAdapter) Search(ctx context.Context, s *browser.Session, keyword string) (browser.ResultPage, error) {
	return a.page, nil
}

// fakeResultPage serves a fixed DOM snapshot without a browser.
type fakeResultPage struct {
	html string
}

func (p fakeResultPage) LoadAll(ctx context.Context, cfg config.ScrollConfig) (browser.ScrollResult, error) {
	return browser.ScrollResult{Attempts: 1, Stable: true, FinalHeight: 1000}, nil
}

func (p fakeResultPage) HTML(ctx context.Context) (string, error) { return p.html, nil }

func (p fakeResultPage) Origin(ctx context.Context) string { return "https://shop.example" }

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(&stubAdapter{platform: "naver"}, &stubAdapter{platform: "Naver"})
	if err == nil {
		t.Fatal("expected error for duplicate platform key differing only in case")
	}
}

func TestNewRegistry_RejectsEmptyKey(t *testing.T) {
	_, err := NewRegistry(&stubAdapter{platform: ""})
	if err == nil {
		t.Fatal("expected error for empty platform key")
	}
}

func TestRegistry_LookupIsCaseInsensitive(t *testing.T) {
	reg, err := NewRegistry(&stubAdapter{platform: "naver"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, key := range []string{"naver", "NAVER", "Naver"} {
		if _, ok := reg.Lookup(key); !ok {
			t.Errorf("Lookup(%q) did not resolve", key)
		}
	}
	if _, ok := reg.Lookup("coupang"); ok {
		t.Error("Lookup resolved an unregistered platform")
	}
}

func TestRegistry_Platforms(t *testing.T) {
	reg, err := NewRegistry(&stubAdapter{platform: "naver"}, &stubAdapter{platform: "kurly"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	got := reg.Platforms()
	if len(got) != 2 {
		t.Errorf("Platforms() = %v, want 2 entries", got)
	}
}

// failingOpener fails every Open call and records whether it was
// reached at all.
type failingOpener struct {
	calls int
}

func (o *failingOpener) Open(ctx context.Context) (*browser.Session, error) {
	o.calls++
	return nil, models.NewCrawlError(models.ErrCodeSessionAcquisition, "no sessions", nil)
}

// stubOpener hands out bare sessions; Close on them is a no-op.
type stubOpener struct {
	calls int
}

func (o *stubOpener) Open(ctx context.Context) (*browser.Session, error) {
	o.calls++
	return &browser.Session{}, nil
}

// canned gateway returns a fixed extraction response.
type cannedGateway struct {
	response string
	content  string
}

func (g *cannedGateway) Extract(ctx context.Context, content, keyword, platform string, fields []models.Field) (string, error) {
	g.content = content
	return g.response, nil
}

func testOrchestrator(t *testing.T, opener Opener, gateway Gateway, adapters ...Adapter) *Orchestrator {
	t.Helper()
	reg, err := NewRegistry(adapters...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewOrchestrator(
		opener,
		gateway,
		reg,
		config.CrawlConfig{JobTimeout: 5 * time.Second},
		config.ScrollConfig{MaxAttempts: 1},
		config.LLMConfig{},
	)
}

func TestCrawl_UnknownPlatformNeverAcquiresSession(t *testing.T) {
	opener := &failingOpener{}
	o := testOrchestrator(t, opener, &cannedGateway{response: "[]"}, &stubAdapter{platform: "naver"})

	_, err := o.Crawl(context.Background(), "coupang", "apple")
	if models.CodeOf(err) != models.ErrCodeUnsupportedPlatform {
		t.Fatalf("error code = %q, want %q", models.CodeOf(err), models.ErrCodeUnsupportedPlatform)
	}
	if opener.calls != 0 {
		t.Errorf("opener called %d times; an unknown platform must not cost a session", opener.calls)
	}
}

func TestCrawl_SessionFailureSurfacesCode(t *testing.T) {
	opener := &failingOpener{}
	o := testOrchestrator(t, opener, &cannedGateway{response: "[]"}, &stubAdapter{platform: "naver"})

	_, err := o.Crawl(context.Background(), "naver", "apple")
	if models.CodeOf(err) != models.ErrCodeSessionAcquisition {
		t.Fatalf("error code = %q, want %q", models.CodeOf(err), models.ErrCodeSessionAcquisition)
	}
	if opener.calls != 1 {
		t.Errorf("opener called %d times, want 1", opener.calls)
	}
}

func TestCrawl_EndToEnd(t *testing.T) {
	page := fakeResultPage{html: `<html><head><title>demo</title></head><body><div class="grid">Fresh Apple 3,000원</div></body></html>`}
	gateway := &cannedGateway{
		response: `[{"productName":"Fresh Apple","price":"3,000원","seller":"Shop A","productUrl":"https://x/1"}]`,
	}
	o := testOrchestrator(t, &stubOpener{}, gateway, &stubAdapter{platform: "demo", page: page})

	result, err := o.Crawl(context.Background(), "demo", "apple")
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("got %d products, want 1", len(result.Products))
	}
	p := result.Products[0]
	if p.Platform != "demo" || p.Keyword != "apple" {
		t.Errorf("job stamp wrong: %+v", p)
	}
	if p.ProductName != "Fresh Apple" || p.Price != 3000 || p.UnitPrice != 0 {
		t.Errorf("coerced fields wrong: %+v", p)
	}
	if p.Seller != "Shop A" || p.ProductURL != "https://x/1" {
		t.Errorf("text fields wrong: %+v", p)
	}
	// The gateway must receive sanitized content, not the raw DOM.
	if gateway.content == "" || gateway.content == page.html {
		t.Errorf("gateway received unsanitized content: %q", gateway.content)
	}
}

func TestCrawl_UnparseableExtractionYieldsZeroRecords(t *testing.T) {
	page := fakeResultPage{html: "<html><body><div>Shirt</div></body></html>"}

	// A JSON object (not an array) survives the truncation repair but
	// still fails the array parse, so this exercises the absorb branch
	// rather than repair's own empty-result path.
	for _, response := range []string{
		`{"error": "no products found"}`,
		"completely free-form prose with no structure at all }",
	} {
		gateway := &cannedGateway{response: response}
		o := testOrchestrator(t, &stubOpener{}, gateway, &stubAdapter{platform: "demo", page: page})

		result, err := o.Crawl(context.Background(), "demo", "apple")
		if err != nil {
			t.Fatalf("response %q: Crawl must succeed on garbage extraction output, got %v", response, err)
		}
		if len(result.Products) != 0 {
			t.Errorf("response %q: got %d products, want 0", response, len(result.Products))
		}
	}
}
