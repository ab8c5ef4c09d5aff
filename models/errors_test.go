package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestCrawlError_Unwrap(t *testing.T) {
	cause := errors.New("net timeout")
	err := NewCrawlError(ErrCodeNavigationTimeout, "navigation failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	var ce *CrawlError
	if !errors.As(error(err), &ce) || ce.Code != ErrCodeNavigationTimeout {
		t.Errorf("errors.As resolved %+v", ce)
	}
}

func TestCodeOf(t *testing.T) {
	direct := NewCrawlError(ErrCodeInteractionTimeout, "click failed", nil)
	if got := CodeOf(direct); got != ErrCodeInteractionTimeout {
		t.Errorf("CodeOf(direct) = %q", got)
	}

	wrapped := fmt.Errorf("search step: %w", direct)
	if got := CodeOf(wrapped); got != ErrCodeInteractionTimeout {
		t.Errorf("CodeOf(wrapped) = %q, the code must survive wrapping", got)
	}

	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %q, want %q", got, ErrCodeInternal)
	}
}

func TestCrawlError_ToDetail(t *testing.T) {
	err := NewCrawlError(ErrCodeUnsupportedPlatform, "unsupported platform: coupang", nil)
	d := err.ToDetail()
	if d.Code != ErrCodeUnsupportedPlatform || d.Message != "unsupported platform: coupang" {
		t.Errorf("ToDetail = %+v", d)
	}
}
