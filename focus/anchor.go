// Package focus tracks the foreground window the user was working in and
// owns the policy that keeps the panel from ever taking keyboard focus.
package focus

// Rect is a screen rectangle in virtual-desktop coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) fits(x, y, w, h int) bool {
	return x >= r.X && y >= r.Y && x+w <= r.X+r.W && y+h <= r.Y+r.H
}

// anchorGap separates the panel from the caret rectangle.
const anchorGap = 4

// PickAnchor places a panelW×panelH window next to the caret rectangle.
// Four candidate corners are tried in order (left-below, right-below,
// left-above, right-above); the first that fits inside the monitor work
// area wins, and the fallback clamps the left-below candidate into it.
func PickAnchor(caret Rect, panelW, panelH int, work Rect) (int, int) {
	candidates := [4][2]int{
		{caret.X, caret.Y + caret.H + anchorGap},
		{caret.X + caret.W - panelW, caret.Y + caret.H + anchorGap},
		{caret.X, caret.Y - anchorGap - panelH},
		{caret.X + caret.W - panelW, caret.Y - anchorGap - panelH},
	}
	for _, c := range candidates {
		if work.fits(c[0], c[1], panelW, panelH) {
			return c[0], c[1]
		}
	}

	x, y := candidates[0][0], candidates[0][1]
	return clamp(x, work.X, work.X+work.W-panelW), clamp(y, work.Y, work.Y+work.H-panelH)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
