package hook

import (
	"sync"
	"time"
)

// debounceInterval keeps a held or bouncing chord from firing repeatedly.
const debounceInterval = 50 * time.Millisecond

// Bindings is the full shortcut configuration the engine matches against.
// An unparseable option leaves its zero Shortcut, which never matches.
type Bindings struct {
	Toggle          Shortcut
	Preview         Shortcut
	CancelTranslate Shortcut

	NumbersEnabled bool
	NumberMod      Mods

	NavUp       Shortcut
	NavDown     Shortcut
	TabLeft     Shortcut
	TabRight    Shortcut
	Confirm     Shortcut
	Close       Shortcut
	GroupPrev   Shortcut
	GroupNext   Shortcut
	TogglePin   Shortcut
	FocusSearch Shortcut

	MiddleClickToggle bool
	MiddleClickMod    Mods
}

// State answers the questions the engine asks about the rest of the app.
// All callbacks must be non-blocking; they run on the hook thread.
type State struct {
	PanelVisible   func() bool
	PanelPinned    func() bool
	PreviewVisible func() bool
	Translating    func() bool
	InPanel        func(x, y int32) bool
}

// Engine turns raw key and mouse events into Events. It decides swallowing
// synchronously and posts everything else to a buffered channel, keeping the
// caller (the OS hook callback) fast.
type Engine struct {
	mu       sync.Mutex
	bindings Bindings
	state    State

	previewHeld      bool
	previewCancelled bool
	lastFire         map[fireKey]time.Time

	now    func() time.Time
	events chan Event
}

// NewEngine builds an engine with a buffered event channel. Missing State
// callbacks default to false.
func NewEngine(b Bindings, s State) *Engine {
	if s.PanelVisible == nil {
		s.PanelVisible = func() bool { return false }
	}
	if s.PanelPinned == nil {
		s.PanelPinned = func() bool { return false }
	}
	if s.PreviewVisible == nil {
		s.PreviewVisible = func() bool { return false }
	}
	if s.Translating == nil {
		s.Translating = func() bool { return false }
	}
	if s.InPanel == nil {
		s.InPanel = func(x, y int32) bool { return false }
	}
	return &Engine{
		bindings: b,
		state:    s,
		lastFire: make(map[fireKey]time.Time),
		now:      time.Now,
		events:   make(chan Event, 64),
	}
}

// Events is the stream drained by the worker.
func (e *Engine) Events() <-chan Event { return e.events }

// SetBindings swaps the shortcut configuration, e.g. after a settings change.
func (e *Engine) SetBindings(b Bindings) {
	e.mu.Lock()
	e.bindings = b
	e.mu.Unlock()
}

// post delivers fire-and-forget; a full channel drops the event rather than
// stalling the hook thread.
func (e *Engine) post(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// fireKey identifies one debounced chord. Index distinguishes the number
// shortcuts, so Ctrl+1 then Ctrl+2 in quick succession both fire.
type fireKey struct {
	action Action
	index  int
}

// debounced reports whether a chord fired within the debounce window, and
// records this firing otherwise. Caller holds the mutex.
func (e *Engine) debounced(a Action, index int) bool {
	now := e.now()
	k := fireKey{action: a, index: index}
	if t, ok := e.lastFire[k]; ok && now.Sub(t) < debounceInterval {
		return true
	}
	e.lastFire[k] = now
	return false
}

// KeyDown decides one key press. The return value tells the hook to swallow
// the event so the OS never sees it.
func (e *Engine) KeyDown(vk uint16, m Mods) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.bindings

	if b.Toggle.Matches(vk, m) {
		if !e.debounced(ActionTogglePanel, 0) {
			e.post(Event{Action: ActionTogglePanel})
		}
		return true
	}

	if b.Preview.Matches(vk, m) {
		if !e.previewHeld {
			e.previewHeld = true
			e.previewCancelled = false
			e.post(Event{Action: ActionShowPreview})
		}
		return true
	}

	// Escape while the preview chord is held cancels the pending paste.
	if e.previewHeld && vk == vkEscape {
		e.previewCancelled = true
		return true
	}

	if b.NumbersEnabled && m == b.NumberMod && vk >= '1' && vk <= '9' {
		index := int(vk - '1')
		if !e.debounced(ActionPasteIndex, index) {
			e.post(Event{Action: ActionPasteIndex, Index: index})
		}
		return true
	}

	if b.CancelTranslate.Matches(vk, m) && e.state.Translating() {
		e.post(Event{Action: ActionCancelTranslation})
		return true
	}

	// Navigation only while the panel is showing and nothing is being
	// typed into the target by the translation pipeline.
	if e.state.PanelVisible() && !e.state.Translating() {
		if nav, ok := e.matchNav(vk, m); ok {
			e.post(Event{Action: ActionNavigate, Nav: nav})
			return true
		}
	}

	return false
}

func (e *Engine) matchNav(vk uint16, m Mods) (Nav, bool) {
	b := e.bindings
	switch {
	case b.NavUp.Matches(vk, m):
		return NavUp, true
	case b.NavDown.Matches(vk, m):
		return NavDown, true
	case b.TabLeft.Matches(vk, m):
		return NavTabLeft, true
	case b.TabRight.Matches(vk, m):
		return NavTabRight, true
	case b.Confirm.Matches(vk, m):
		return NavConfirm, true
	case b.Close.Matches(vk, m):
		return NavClose, true
	case b.GroupPrev.Matches(vk, m):
		return NavGroupPrev, true
	case b.GroupNext.Matches(vk, m):
		return NavGroupNext, true
	case b.TogglePin.Matches(vk, m):
		return NavTogglePin, true
	case b.FocusSearch.Matches(vk, m):
		return NavFocusSearch, true
	}
	return "", false
}

// KeyUp decides one key release. Releasing the preview key pastes the
// current preview selection unless Escape cancelled it first.
func (e *Engine) KeyUp(vk uint16, m Mods) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.previewHeld && vk == e.bindings.Preview.VK {
		e.previewHeld = false
		if !e.previewCancelled {
			e.post(Event{Action: ActionPastePreview})
		}
		e.previewCancelled = false
		return true
	}
	return false
}

// MiddleClick decides a middle mouse press.
func (e *Engine) MiddleClick(m Mods) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.bindings.MiddleClickToggle || m != e.bindings.MiddleClickMod {
		return false
	}
	if !e.debounced(ActionTogglePanel, 0) {
		e.post(Event{Action: ActionTogglePanel})
	}
	return true
}

// Wheel routes scroll to the preview window while it is visible; the
// underlying app must not scroll at the same time.
func (e *Engine) Wheel(delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.PreviewVisible() {
		return false
	}
	e.post(Event{Action: ActionWheel, Delta: delta})
	return true
}

// Click handles left/right button presses: clicking outside the unpinned
// panel hides it. The click itself always goes through.
func (e *Engine) Click(x, y int32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.PanelVisible() && !e.state.PanelPinned() && !e.state.InPanel(x, y) {
		e.post(Event{Action: ActionHidePanel})
	}
}
