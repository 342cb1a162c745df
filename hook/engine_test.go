package hook

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) Shortcut {
	t.Helper()
	sc, err := ParseShortcut(s)
	if err != nil {
		t.Fatalf("ParseShortcut(%q) failed: %v", s, err)
	}
	return sc
}

func defaultBindings(t *testing.T) Bindings {
	t.Helper()
	return Bindings{
		Toggle:          mustParse(t, "Win+V"),
		Preview:         mustParse(t, "Ctrl+`"),
		CancelTranslate: mustParse(t, "Ctrl+Shift+Escape"),
		NumbersEnabled:  true,
		NumberMod:       Mods{Ctrl: true},
		NavUp:           mustParse(t, "Up"),
		NavDown:         mustParse(t, "Down"),
		Confirm:         mustParse(t, "Enter"),
		Close:           mustParse(t, "Escape"),
	}
}

func drain(e *Engine) []Event {
	var out []Event
	for {
		select {
		case ev := <-e.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestToggleShortcutIsSwallowedAndPosted(t *testing.T) {
	e := NewEngine(defaultBindings(t), State{})

	if !e.KeyDown('V', Mods{Win: true}) {
		t.Fatalf("toggle chord must be swallowed")
	}
	evs := drain(e)
	if len(evs) != 1 || evs[0].Action != ActionTogglePanel {
		t.Fatalf("expected one toggle event, got %#v", evs)
	}

	// Plain V passes through.
	if e.KeyDown('V', Mods{}) {
		t.Fatalf("bare V must not be swallowed")
	}
}

func TestToggleDebounce(t *testing.T) {
	e := NewEngine(defaultBindings(t), State{})
	base := time.Now()
	e.now = func() time.Time { return base }

	e.KeyDown('V', Mods{Win: true})
	base = base.Add(20 * time.Millisecond)
	e.KeyDown('V', Mods{Win: true})
	if evs := drain(e); len(evs) != 1 {
		t.Fatalf("bounce within 50ms must fire once, got %d events", len(evs))
	}

	base = base.Add(debounceInterval)
	e.KeyDown('V', Mods{Win: true})
	if evs := drain(e); len(evs) != 1 {
		t.Fatalf("press after the window must fire again, got %d events", len(evs))
	}
}

func TestPreviewPressAndRelease(t *testing.T) {
	e := NewEngine(defaultBindings(t), State{})
	preview := mustParse(t, "Ctrl+`")

	if !e.KeyDown(preview.VK, Mods{Ctrl: true}) {
		t.Fatalf("preview chord must be swallowed")
	}
	if !e.KeyUp(preview.VK, Mods{Ctrl: true}) {
		t.Fatalf("preview release must be swallowed")
	}

	evs := drain(e)
	if len(evs) != 2 || evs[0].Action != ActionShowPreview || evs[1].Action != ActionPastePreview {
		t.Fatalf("expected show then paste, got %#v", evs)
	}
}

func TestPreviewEscapeCancelsPaste(t *testing.T) {
	e := NewEngine(defaultBindings(t), State{})
	preview := mustParse(t, "Ctrl+`")

	e.KeyDown(preview.VK, Mods{Ctrl: true})
	if !e.KeyDown(vkEscape, Mods{Ctrl: true}) {
		t.Fatalf("escape during preview must be swallowed")
	}
	e.KeyUp(preview.VK, Mods{Ctrl: true})

	for _, ev := range drain(e) {
		if ev.Action == ActionPastePreview {
			t.Fatalf("cancelled preview still pasted")
		}
	}

	// The cancel flag resets for the next press.
	e.KeyDown(preview.VK, Mods{Ctrl: true})
	e.KeyUp(preview.VK, Mods{Ctrl: true})
	var pasted bool
	for _, ev := range drain(e) {
		if ev.Action == ActionPastePreview {
			pasted = true
		}
	}
	if !pasted {
		t.Fatalf("next preview press must paste again")
	}
}

func TestNumberPasteIndex(t *testing.T) {
	e := NewEngine(defaultBindings(t), State{})

	if !e.KeyDown('3', Mods{Ctrl: true}) {
		t.Fatalf("Ctrl+3 must be swallowed")
	}
	evs := drain(e)
	if len(evs) != 1 || evs[0].Action != ActionPasteIndex || evs[0].Index != 2 {
		t.Fatalf("expected paste at index 2, got %#v", evs)
	}

	// Wrong modifier passes through.
	if e.KeyDown('3', Mods{Alt: true}) {
		t.Fatalf("Alt+3 must not match a Ctrl number binding")
	}
}

func TestNumberPasteDistinctIndicesAreNotDebounced(t *testing.T) {
	e := NewEngine(defaultBindings(t), State{})
	base := time.Now()
	e.now = func() time.Time { return base }

	e.KeyDown('1', Mods{Ctrl: true})
	base = base.Add(10 * time.Millisecond)
	e.KeyDown('2', Mods{Ctrl: true})

	evs := drain(e)
	if len(evs) != 2 || evs[0].Index != 0 || evs[1].Index != 1 {
		t.Fatalf("expected pastes at 0 then 1, got %#v", evs)
	}

	// A repeat of the same chord inside the window is a bounce.
	base = base.Add(10 * time.Millisecond)
	e.KeyDown('2', Mods{Ctrl: true})
	if evs := drain(e); len(evs) != 0 {
		t.Fatalf("repeated Ctrl+2 within 50ms must be dropped, got %#v", evs)
	}
}

func TestNavigationGatedOnPanelAndTranslation(t *testing.T) {
	visible, translating := false, false
	e := NewEngine(defaultBindings(t), State{
		PanelVisible: func() bool { return visible },
		Translating:  func() bool { return translating },
	})

	if e.KeyDown(vkDown, Mods{}) {
		t.Fatalf("nav key with panel hidden must pass through")
	}

	visible = true
	if !e.KeyDown(vkDown, Mods{}) {
		t.Fatalf("nav key with panel visible must be swallowed")
	}
	evs := drain(e)
	if len(evs) != 1 || evs[0].Nav != NavDown {
		t.Fatalf("expected nav-down, got %#v", evs)
	}

	translating = true
	if e.KeyDown(vkDown, Mods{}) {
		t.Fatalf("nav keys must pass through while translation types")
	}
}

func TestCancelTranslationOnlyWhileActive(t *testing.T) {
	translating := false
	e := NewEngine(defaultBindings(t), State{
		Translating: func() bool { return translating },
	})

	if e.KeyDown(vkEscape, Mods{Ctrl: true, Shift: true}) {
		t.Fatalf("cancel chord must pass through when idle")
	}

	translating = true
	if !e.KeyDown(vkEscape, Mods{Ctrl: true, Shift: true}) {
		t.Fatalf("cancel chord must be swallowed while translating")
	}
	evs := drain(e)
	if len(evs) != 1 || evs[0].Action != ActionCancelTranslation {
		t.Fatalf("expected cancel event, got %#v", evs)
	}
}

func TestMiddleClickToggle(t *testing.T) {
	b := defaultBindings(t)
	b.MiddleClickToggle = true
	b.MiddleClickMod = Mods{Ctrl: true}
	e := NewEngine(b, State{})

	if e.MiddleClick(Mods{}) {
		t.Fatalf("middle click without the modifier must pass through")
	}
	if !e.MiddleClick(Mods{Ctrl: true}) {
		t.Fatalf("modified middle click must be swallowed")
	}
	evs := drain(e)
	if len(evs) != 1 || evs[0].Action != ActionTogglePanel {
		t.Fatalf("expected toggle event, got %#v", evs)
	}
}

func TestWheelRoutedToPreview(t *testing.T) {
	previewVisible := false
	e := NewEngine(defaultBindings(t), State{
		PreviewVisible: func() bool { return previewVisible },
	})

	if e.Wheel(-120) {
		t.Fatalf("wheel without preview must pass through")
	}

	previewVisible = true
	if !e.Wheel(-120) {
		t.Fatalf("wheel over visible preview must be swallowed")
	}
	evs := drain(e)
	if len(evs) != 1 || evs[0].Action != ActionWheel || evs[0].Delta != -120 {
		t.Fatalf("expected wheel event, got %#v", evs)
	}
}

func TestClickOutsideUnpinnedPanelHidesIt(t *testing.T) {
	visible, pinned := true, false
	e := NewEngine(defaultBindings(t), State{
		PanelVisible: func() bool { return visible },
		PanelPinned:  func() bool { return pinned },
		InPanel:      func(x, y int32) bool { return x >= 0 && x < 100 && y >= 0 && y < 100 },
	})

	e.Click(50, 50) // inside
	if evs := drain(e); len(evs) != 0 {
		t.Fatalf("click inside the panel must not hide it: %#v", evs)
	}

	e.Click(500, 500)
	evs := drain(e)
	if len(evs) != 1 || evs[0].Action != ActionHidePanel {
		t.Fatalf("expected hide event, got %#v", evs)
	}

	pinned = true
	e.Click(500, 500)
	if evs := drain(e); len(evs) != 0 {
		t.Fatalf("pinned panel must survive outside clicks: %#v", evs)
	}
}
