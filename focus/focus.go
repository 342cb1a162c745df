package focus

import (
	"strings"
	"sync"
)

// Handle is an opaque OS window handle (HWND on Windows).
type Handle uintptr

// browserClasses lists process-name substrings whose caret rectangle lies
// about its position; the cursor is the better anchor for these.
var browserClasses = []string{
	"chrome", "msedge", "firefox", "opera", "brave", "vivaldi", "iexplore",
}

func isBrowserProcess(name string) bool {
	lower := strings.ToLower(name)
	for _, b := range browserClasses {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}

// Coordinator remembers the window that was in the foreground before the
// panel showed, and answers focus questions for the monitor and hook
// layers. The last-foreground slot is genuinely process-global OS state;
// this is its single owner.
type Coordinator struct {
	mu           sync.Mutex
	last         Handle
	panel        Handle
	panelVisible bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// CaptureForeground records the current OS foreground window. Call before
// showing the panel. Capturing our own panel is a no-op so a re-trigger
// while visible keeps the original target.
func (c *Coordinator) CaptureForeground() Handle {
	h := foregroundWindow()

	c.mu.Lock()
	defer c.mu.Unlock()
	if h != 0 && h != c.panel {
		c.last = h
	}
	return c.last
}

// RestoreForeground re-activates the recorded window.
func (c *Coordinator) RestoreForeground() {
	c.mu.Lock()
	h := c.last
	c.mu.Unlock()
	if h != 0 {
		activateWindow(h)
	}
}

// Reset forgets the recorded window.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.last = 0
	c.mu.Unlock()
}

// Last returns the recorded foreground handle without touching it.
func (c *Coordinator) Last() Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// SetPanel registers the panel window so the coordinator can recognise it.
func (c *Coordinator) SetPanel(h Handle) {
	c.mu.Lock()
	c.panel = h
	c.mu.Unlock()
}

// SetPanelVisible records the shell's visibility state.
func (c *Coordinator) SetPanelVisible(visible bool) {
	c.mu.Lock()
	c.panelVisible = visible
	c.mu.Unlock()
}

// PanelVisible reports the recorded visibility state.
func (c *Coordinator) PanelVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panelVisible
}

// ShouldReceiveNavKeys gates the hook layer's navigation interception: only
// a visible panel receives navigation.
func (c *Coordinator) ShouldReceiveNavKeys() bool {
	return c.PanelVisible()
}

// IsOwnForeground reports whether the current foreground window is our
// panel. The monitor uses it when judging whose clipboard write it saw.
func (c *Coordinator) IsOwnForeground() bool {
	c.mu.Lock()
	panel := c.panel
	c.mu.Unlock()
	return panel != 0 && foregroundWindow() == panel
}

// ForegroundProcessName returns the executable name of the current
// foreground window's process, lower-cased, e.g. "explorer.exe".
func (c *Coordinator) ForegroundProcessName() string {
	return strings.ToLower(foregroundProcessName())
}

// RememberedProcessName is ForegroundProcessName for the recorded handle;
// used when the paste target decision happens after the panel took over the
// screen position.
func (c *Coordinator) RememberedProcessName() string {
	c.mu.Lock()
	h := c.last
	c.mu.Unlock()
	if h == 0 {
		return ""
	}
	return strings.ToLower(windowProcessName(h))
}

// MakeToolWindow applies the no-taskbar, no-activate, topmost style to the
// panel window. A no-op off Windows; the invariant holds there by never
// calling activation APIs after show.
func (c *Coordinator) MakeToolWindow(h Handle) error {
	return makeToolWindow(h)
}

// PanelAnchor computes where to show a panelW×panelH panel: next to the
// caret of the foreground window when one is exposed, else next to the
// cursor. Browser-class foregrounds always use the cursor.
func (c *Coordinator) PanelAnchor(panelW, panelH int) (int, int) {
	caret, ok := caretRect()
	if !ok || isBrowserProcess(foregroundProcessName()) {
		x, y := cursorPos()
		caret = Rect{X: x, Y: y, W: 1, H: 20}
	}
	return PickAnchor(caret, panelW, panelH, workArea(caret.X, caret.Y))
}
