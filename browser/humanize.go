package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Human-mimicking interaction helpers shared by all site adapters.
// The delays are deliberately serialized: reordering or parallelizing
// them would destroy the organic-usage rhythm they exist to fake.

// TypeHumanly types text into the focused element one character at a
// time with randomized inter-keystroke delays, occasionally pausing as
// if thinking, and finishes with a short review pause before whatever
// comes next (Enter, click).
//
// Each character goes in via InputInsertText, which emits no
// keydown/keyup events. Keyboard.Type cannot compose Hangul syllables
// (they need IME composition, not keystrokes), and the search keywords
// here are Korean, so insertion is the only way to get the text in at
// all; the randomized delays still carry the human rhythm. Detectors
// that require real key events per character would flag this.
func TypeHumanly(ctx context.Context, page *rod.Page, text string) error {
	for _, r := range text {
		if err := (proto.InputInsertText{Text: string(r)}).Call(page); err != nil {
			return err
		}
		if err := pause(ctx, 50*time.Millisecond, 250*time.Millisecond); err != nil {
			return err
		}
		// Every now and then, stop as if reconsidering the query.
		if rand.Float64() < 0.1 {
			if err := pause(ctx, 500*time.Millisecond, time.Second); err != nil {
				return err
			}
		}
	}
	return pause(ctx, 700*time.Millisecond, 1500*time.Millisecond)
}

// HoverClick moves the mouse onto the element, waits a human reaction
// beat, then clicks.
func HoverClick(ctx context.Context, el *rod.Element) error {
	if err := el.Hover(); err != nil {
		return err
	}
	if err := pause(ctx, 200*time.Millisecond, 600*time.Millisecond); err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// PressEnter submits the focused input.
func PressEnter(page *rod.Page) error {
	return page.Keyboard.Type(input.Enter)
}

// Pause sleeps for a random duration in [min, max), honoring ctx.
func Pause(ctx context.Context, min, max time.Duration) error {
	return pause(ctx, min, max)
}

func pause(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
