package main

import (
	"log/slog"

	"quickclipboard/hook"
	"quickclipboard/settings"
)

// bindingsFromSettings parses every configured shortcut string into the hook
// layer's bindings. An unparseable string logs a warning and leaves its zero
// Shortcut, which never matches; the rest of the bindings stay live.
func bindingsFromSettings(s settings.Settings) hook.Bindings {
	parse := func(option, raw string) hook.Shortcut {
		if raw == "" {
			return hook.Shortcut{}
		}
		sc, err := hook.ParseShortcut(raw)
		if err != nil {
			slog.Warn("ignoring unparseable shortcut", "option", option, "value", raw, "err", err)
			return hook.Shortcut{}
		}
		return sc
	}

	return hook.Bindings{
		Toggle:          parse("toggle_shortcut", s.ToggleShortcut),
		Preview:         parse("preview_shortcut", s.PreviewShortcut),
		CancelTranslate: parse("translate_cancel_shortcut", s.TranslateCancelHotkey),

		NumbersEnabled: s.NumberShortcuts,
		NumberMod:      hook.ParseModifier(s.NumberShortcutsModifier),

		NavUp:       parse("nav_up_shortcut", s.NavUpShortcut),
		NavDown:     parse("nav_down_shortcut", s.NavDownShortcut),
		TabLeft:     parse("tab_left_shortcut", s.TabLeftShortcut),
		TabRight:    parse("tab_right_shortcut", s.TabRightShortcut),
		Confirm:     parse("confirm_shortcut", s.ConfirmShortcut),
		Close:       parse("close_shortcut", s.CloseShortcut),
		GroupPrev:   parse("group_prev_shortcut", s.GroupPrevShortcut),
		GroupNext:   parse("group_next_shortcut", s.GroupNextShortcut),
		TogglePin:   parse("toggle_pin_shortcut", s.TogglePinShortcut),
		FocusSearch: parse("focus_search_shortcut", s.FocusSearchShortcut),

		MiddleClickToggle: s.MiddleClickToggle,
		MiddleClickMod:    middleClickMod(s.MiddleClickModifier),
	}
}

// An empty middle-click modifier means a plain middle click toggles.
func middleClickMod(name string) hook.Mods {
	if name == "" {
		return hook.Mods{}
	}
	return hook.ParseModifier(name)
}
