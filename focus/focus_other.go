//go:build !windows

package focus

import (
	"github.com/go-vgo/robotgo"
)

// Off Windows there is no tool-window style and no portable foreground
// handle. The coordinator still anchors the panel near the cursor and the
// no-steal invariant holds by never activating the panel after show.

func foregroundWindow() Handle { return 0 }

func activateWindow(h Handle) {}

func windowProcessName(h Handle) string { return "" }

func foregroundProcessName() string { return "" }

func makeToolWindow(h Handle) error { return nil }

func caretRect() (Rect, bool) { return Rect{}, false }

func cursorPos() (int, int) {
	x, y := robotgo.Location()
	return x, y
}

func workArea(x, y int) Rect {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return Rect{X: 0, Y: 0, W: 1920, H: 1080}
	}
	return Rect{X: 0, Y: 0, W: w, H: h}
}
