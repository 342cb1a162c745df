package main

import (
	"testing"

	"quickclipboard/hook"
	"quickclipboard/settings"
)

func TestBindingsFromSettingsParsesDefaults(t *testing.T) {
	b := bindingsFromSettings(*settings.Default())

	if !b.Toggle.Mods.Win || b.Toggle.Key != "V" {
		t.Fatalf("toggle binding = %#v", b.Toggle)
	}
	if !b.Preview.Mods.Ctrl || b.Preview.VK == 0 {
		t.Fatalf("preview binding = %#v", b.Preview)
	}
	if !b.NumbersEnabled || !b.NumberMod.Ctrl {
		t.Fatalf("number bindings = enabled %v mod %#v", b.NumbersEnabled, b.NumberMod)
	}
	if b.NavUp.VK == 0 || b.NavDown.VK == 0 || b.Confirm.VK == 0 || b.Close.VK == 0 {
		t.Fatalf("navigation bindings incomplete: %#v", b)
	}
	if !b.CancelTranslate.Mods.Ctrl || !b.CancelTranslate.Mods.Shift {
		t.Fatalf("cancel binding = %#v", b.CancelTranslate)
	}
}

func TestBindingsFromSettingsBadShortcutDegrades(t *testing.T) {
	s := *settings.Default()
	s.ToggleShortcut = "Ctrl+Bogus"

	b := bindingsFromSettings(s)

	if b.Toggle.Matches(0x42, hook.Mods{}) {
		t.Fatalf("broken toggle shortcut still matches: %#v", b.Toggle)
	}
	// The rest of the bindings survive.
	if b.Preview.VK == 0 {
		t.Fatalf("preview binding lost: %#v", b.Preview)
	}
}

func TestBindingsFromSettingsEmptyShortcutIsInert(t *testing.T) {
	s := *settings.Default()
	s.PreviewShortcut = ""

	b := bindingsFromSettings(s)
	if b.Preview.VK != 0 {
		t.Fatalf("empty shortcut parsed to %#v", b.Preview)
	}
}

func TestMiddleClickMod(t *testing.T) {
	if got := middleClickMod(""); got != (hook.Mods{}) {
		t.Fatalf("empty modifier = %#v, want none", got)
	}
	if got := middleClickMod("Alt"); !got.Alt || got.Ctrl {
		t.Fatalf("alt modifier = %#v", got)
	}
	// Unknown names fall back to Ctrl, matching the number shortcuts.
	if got := middleClickMod("bogus"); !got.Ctrl {
		t.Fatalf("fallback modifier = %#v", got)
	}
}
