package browser

import (
	"context"
	"sync"
	"testing"

	"github.com/go-rod/rod"
	"github.com/zoontopia/shopcrawl/config"
)

func TestDetach_SurvivesExpiredJobContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bound := (&rod.Page{}).Context(ctx)
	if bound.GetContext().Err() == nil {
		t.Fatal("test setup: page context should be expired")
	}

	// Teardown calls on a detached page must not fail with the job's
	// context error.
	if err := detach(bound).GetContext().Err(); err != nil {
		t.Errorf("detached page context error = %v, want nil", err)
	}
}

func TestManager_ReserveBoundHoldsUnderConcurrency(t *testing.T) {
	m := &Manager{cfg: config.BrowserConfig{MaxSessions: 4}}

	const attempts = 64
	var wg sync.WaitGroup
	granted := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.reserve() {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	n := 0
	for range granted {
		n++
	}
	if n != 4 {
		t.Errorf("granted %d slots, want exactly 4", n)
	}
	if m.ActiveSessions() != 4 {
		t.Errorf("ActiveSessions = %d, want 4", m.ActiveSessions())
	}

	if m.reserve() {
		t.Error("reserve succeeded with every slot taken")
	}
	m.release()
	if !m.reserve() {
		t.Error("reserve failed after a slot was released")
	}
}

func TestSession_CloseIsIdempotentAndReleasesSlot(t *testing.T) {
	m := &Manager{cfg: config.BrowserConfig{MaxSessions: 2}}
	if !m.reserve() {
		t.Fatal("reserve failed on an empty manager")
	}

	s := &Session{mgr: m}
	s.Close()
	if m.ActiveSessions() != 0 {
		t.Errorf("ActiveSessions = %d after Close, want 0", m.ActiveSessions())
	}

	// A second Close must not release the slot twice.
	s.Close()
	if m.ActiveSessions() != 0 {
		t.Errorf("ActiveSessions = %d after double Close, want 0", m.ActiveSessions())
	}
}
