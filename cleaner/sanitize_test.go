package cleaner

import (
	"strings"
	"testing"
)

func TestSanitize_RemovesScriptContent(t *testing.T) {
	got := Sanitize(`<script>alert(1)</script><p>Shirt</p>`)

	if !strings.Contains(got, "Shirt") {
		t.Errorf("sanitized output lost real content: %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("sanitized output still contains script content: %q", got)
	}
}

func TestSanitize_RemovesNoiseTags(t *testing.T) {
	input := `<html><head><title>t</title><meta charset="utf-8"></head><body>` +
		`<style>.a{color:red}</style>` +
		`<svg><circle r="1"/></svg>` +
		`<!-- hidden note -->` +
		`<div>상품</div></body></html>`

	got := Sanitize(input)

	for _, banned := range []string{"color:red", "circle", "hidden note", "title", "charset"} {
		if strings.Contains(got, banned) {
			t.Errorf("sanitized output still contains %q: %q", banned, got)
		}
	}
	if !strings.Contains(got, "상품") {
		t.Errorf("sanitized output lost body content: %q", got)
	}
}

func TestSanitize_CollapsesWhitespace(t *testing.T) {
	got := Sanitize("<p>a\n\n\t  b</p>   <p>c</p>")

	if strings.Contains(got, "  ") || strings.Contains(got, "\n") || strings.Contains(got, "\t") {
		t.Errorf("whitespace runs not collapsed: %q", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		`<script>alert(1)</script><p>Shirt</p>`,
		`<div class="x"><span>1,000원</span>  <a href="/p?a=1&b=2">link</a></div>`,
		`plain text`,
		`<ul><li>사과</li><li>배</li></ul>`,
	}
	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q:\n once: %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want \"\"", got)
	}
	if got := Sanitize("   \n\t "); got != "" {
		t.Errorf("Sanitize(whitespace) = %q, want \"\"", got)
	}
}
