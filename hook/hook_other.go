//go:build !windows

package hook

import (
	"fmt"
	"log/slog"

	"golang.design/x/hotkey"
)

// Hook is the non-Windows fallback. Low-level hooks do not exist here, so
// only the panel toggle is registered, as a plain global hotkey. Navigation
// and preview shortcuts need the Windows hook layer.
type Hook struct {
	engine *Engine
	hk     *hotkey.Hotkey
	stop   chan struct{}
	done   chan struct{}
}

// Install registers the engine's toggle shortcut as a global hotkey.
func Install(engine *Engine) (*Hook, error) {
	engine.mu.Lock()
	toggle := engine.bindings.Toggle
	engine.mu.Unlock()

	mods, key, err := toHotkey(toggle)
	if err != nil {
		return nil, err
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("failed to register toggle hotkey %s: %w", toggle, err)
	}

	h := &Hook{
		engine: engine,
		hk:     hk,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go h.run()
	slog.Debug("global toggle hotkey registered", "shortcut", toggle.String())
	return h, nil
}

func (h *Hook) run() {
	defer close(h.done)
	for {
		select {
		case <-h.hk.Keydown():
			h.engine.post(Event{Action: ActionTogglePanel})
		case <-h.stop:
			return
		}
	}
}

// Uninstall releases the hotkey and stops the listener.
func (h *Hook) Uninstall() {
	close(h.stop)
	h.hk.Unregister()
	<-h.done
}

// toHotkey maps a parsed shortcut onto the hotkey library's identifiers.
// Only Ctrl and Shift are portable across the non-Windows backends.
func toHotkey(s Shortcut) ([]hotkey.Modifier, hotkey.Key, error) {
	if s.Alt || s.Win {
		return nil, 0, fmt.Errorf("%w: %s uses modifiers unavailable on this platform", ErrBadShortcut, s)
	}

	var mods []hotkey.Modifier
	if s.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if s.Shift {
		mods = append(mods, hotkey.ModShift)
	}

	key, ok := hotkeyKeys[s.VK]
	if !ok {
		return nil, 0, fmt.Errorf("%w: key %q has no hotkey mapping", ErrBadShortcut, s.Key)
	}
	return mods, key, nil
}

// Key codes differ per backend, so the table is spelled out instead of
// computed from the virtual-key value.
var hotkeyKeys = map[uint16]hotkey.Key{
	'A': hotkey.KeyA, 'B': hotkey.KeyB, 'C': hotkey.KeyC, 'D': hotkey.KeyD,
	'E': hotkey.KeyE, 'F': hotkey.KeyF, 'G': hotkey.KeyG, 'H': hotkey.KeyH,
	'I': hotkey.KeyI, 'J': hotkey.KeyJ, 'K': hotkey.KeyK, 'L': hotkey.KeyL,
	'M': hotkey.KeyM, 'N': hotkey.KeyN, 'O': hotkey.KeyO, 'P': hotkey.KeyP,
	'Q': hotkey.KeyQ, 'R': hotkey.KeyR, 'S': hotkey.KeyS, 'T': hotkey.KeyT,
	'U': hotkey.KeyU, 'V': hotkey.KeyV, 'W': hotkey.KeyW, 'X': hotkey.KeyX,
	'Y': hotkey.KeyY, 'Z': hotkey.KeyZ,
	'0': hotkey.Key0, '1': hotkey.Key1, '2': hotkey.Key2, '3': hotkey.Key3,
	'4': hotkey.Key4, '5': hotkey.Key5, '6': hotkey.Key6, '7': hotkey.Key7,
	'8': hotkey.Key8, '9': hotkey.Key9,
	vkReturn: hotkey.KeyReturn,
	vkEscape: hotkey.KeyEscape,
	vkSpace:  hotkey.KeySpace,
	vkTab:    hotkey.KeyTab,
	vkUp:     hotkey.KeyUp,
	vkDown:   hotkey.KeyDown,
	vkLeft:   hotkey.KeyLeft,
	vkRight:  hotkey.KeyRight,
	vkF1:     hotkey.KeyF1,
	vkF1 + 1: hotkey.KeyF2, vkF1 + 2: hotkey.KeyF3, vkF1 + 3: hotkey.KeyF4,
	vkF1 + 4: hotkey.KeyF5, vkF1 + 5: hotkey.KeyF6, vkF1 + 6: hotkey.KeyF7,
	vkF1 + 7: hotkey.KeyF8, vkF1 + 8: hotkey.KeyF9, vkF1 + 9: hotkey.KeyF10,
	vkF1 + 10: hotkey.KeyF11, vkF1 + 11: hotkey.KeyF12,
}
