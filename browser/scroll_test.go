package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoontopia/shopcrawl/config"
)

// fakePager replays a fixed sequence of heights. The first value is the
// pre-scroll measurement; each pass consumes the next one. When the
// sequence runs out the last height repeats, like a page that stopped
// growing.
type fakePager struct {
	heights []int
	idx     int
	passes  int
	passErr error
}

func (f *fakePager) ScrollHeight() (int, error) {
	h := f.heights[f.idx]
	if f.idx < len(f.heights)-1 {
		f.idx++
	}
	return h, nil
}

func (f *fakePager) ScrollPass() error {
	f.passes++
	return f.passErr
}

func scrollCfg(maxAttempts int) config.ScrollConfig {
	return config.ScrollConfig{StepPixels: 500, MaxAttempts: maxAttempts}
}

func TestLoadAll_StabilizesWhenHeightStopsChanging(t *testing.T) {
	p := &fakePager{heights: []int{1000, 1500, 1500}}

	res, err := LoadAll(context.Background(), p, scrollCfg(10))
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if !res.Stable {
		t.Error("expected Stable after two equal measurements")
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if res.FinalHeight != 1500 {
		t.Errorf("FinalHeight = %d, want 1500", res.FinalHeight)
	}
}

func TestLoadAll_CapExhaustionIsNotAnError(t *testing.T) {
	// Every measurement differs from the last, as on a page that keeps
	// appending content forever.
	p := &fakePager{heights: []int{100, 200, 300, 400, 500, 600, 700, 800}}

	res, err := LoadAll(context.Background(), p, scrollCfg(3))
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if res.Stable {
		t.Error("expected Stable=false when the cap runs out")
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if p.passes != 3 {
		t.Errorf("scroll passes = %d, want 3", p.passes)
	}
}

func TestLoadAll_HeightDecreaseContinues(t *testing.T) {
	// Collapsing content is still movement, so a shrink must not count
	// as stable.
	p := &fakePager{heights: []int{2000, 1200, 1200}}

	res, err := LoadAll(context.Background(), p, scrollCfg(10))
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2 (shrink then stable)", res.Attempts)
	}
	if !res.Stable {
		t.Error("expected Stable once the shrunken height repeats")
	}
}

func TestLoadAll_PassErrorPropagates(t *testing.T) {
	wantErr := errors.New("page crashed")
	p := &fakePager{heights: []int{1000}, passErr: wantErr}

	_, err := LoadAll(context.Background(), p, scrollCfg(5))
	if !errors.Is(err, wantErr) {
		t.Errorf("LoadAll error = %v, want %v", err, wantErr)
	}
}

func TestLoadAll_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := scrollCfg(5)
	cfg.SettleDelay = time.Minute // settle must observe ctx, not sleep

	p := &fakePager{heights: []int{100, 200, 300}}
	_, err := LoadAll(ctx, p, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("LoadAll error = %v, want context.Canceled", err)
	}
}
