//go:build !headless

// platform.go - host clock and keyboard/mouse input, satisfying Clock and
// InputSource against real ebiten/OS primitives.
//
// Grounded on video_backend_ebiten.go's own input handling
// (ebiten.IsKeyPressed for held state, inpututil.IsKeyJustPressed for
// edge-triggered state) and its general pattern of polling ebiten's input
// package directly rather than routing through an event queue.

package pixelcore

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenInput maps game-defined button indices onto ebiten keyboard keys.
// Unbound or out-of-range indices are a soft failure (spec.md §7): they
// report false rather than panicking.
type EbitenInput struct {
	bindings []ebiten.Key
}

// NewEbitenInput builds an input source from an ordered button->key table;
// bindings[i] is the ebiten key polled for button index i.
func NewEbitenInput(bindings []ebiten.Key) *EbitenInput {
	return &EbitenInput{bindings: bindings}
}

func (in *EbitenInput) key(button int) (ebiten.Key, bool) {
	if button < 0 || button >= len(in.bindings) {
		return 0, false
	}
	return in.bindings[button], true
}

// ButtonDown reports whether button is currently held.
func (in *EbitenInput) ButtonDown(button int) bool {
	key, ok := in.key(button)
	if !ok {
		return false
	}
	return ebiten.IsKeyPressed(key)
}

// ButtonPressed reports whether button transitioned to held this tick.
func (in *EbitenInput) ButtonPressed(button int) bool {
	key, ok := in.key(button)
	if !ok {
		return false
	}
	return inpututil.IsKeyJustPressed(key)
}

// MouseAxis returns the cursor position in window pixels.
func (in *EbitenInput) MouseAxis() Vec2 {
	x, y := ebiten.CursorPosition()
	return Vec2{X: float32(x), Y: float32(y)}
}

// WallClock satisfies Clock against the host's monotonic time source.
type WallClock struct {
	start time.Time
}

// NewWallClock starts a clock whose NowSeconds is relative to construction
// time, matching the real-delta accounting RunFrame expects (an
// ever-increasing seconds counter, not wall time-of-day).
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// NowSeconds returns elapsed seconds since the clock was constructed.
func (c *WallClock) NowSeconds() float64 {
	return time.Since(c.start).Seconds()
}
