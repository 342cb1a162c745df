package hook

import "testing"

func TestParseShortcutCanonicalForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ctrl+Shift+A", "Ctrl+Shift+A"},
		{"control+shift+a", "Ctrl+Shift+A"},
		{"Win+V", "Win+V"},
		{"meta+v", "Win+V"},
		{"SUPER+v", "Win+V"},
		{"Ctrl+`", "Ctrl+`"},
		{"ctrl+backquote", "Ctrl+`"},
		{"Alt+F4", "Alt+F4"},
		{"Escape", "Escape"},
		{"esc", "Escape"},
		{"ctrl+shift+escape", "Ctrl+Shift+Escape"},
		{"Enter", "Enter"},
		{"return", "Enter"},
		{"Up", "Up"},
		{"Ctrl+1", "Ctrl+1"},
	}
	for _, c := range cases {
		sc, err := ParseShortcut(c.in)
		if err != nil {
			t.Fatalf("ParseShortcut(%q) failed: %v", c.in, err)
		}
		if got := sc.String(); got != c.want {
			t.Fatalf("ParseShortcut(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseShortcutAliasesShareVK(t *testing.T) {
	pairs := [][2]string{
		{"Ctrl+A", "Control+a"},
		{"Win+V", "Meta+V"},
		{"Win+V", "Super+v"},
		{"Ctrl+Esc", "Ctrl+Escape"},
		{"Shift+Enter", "Shift+Return"},
	}
	for _, p := range pairs {
		a, err := ParseShortcut(p[0])
		if err != nil {
			t.Fatalf("ParseShortcut(%q) failed: %v", p[0], err)
		}
		b, err := ParseShortcut(p[1])
		if err != nil {
			t.Fatalf("ParseShortcut(%q) failed: %v", p[1], err)
		}
		if a != b {
			t.Fatalf("%q and %q parse differently: %#v vs %#v", p[0], p[1], a, b)
		}
	}
}

func TestParseShortcutRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"Ctrl+",
		"Ctrl++",
		"+A",
		"Ctrl+Bogus",
		"Ctrl+Shift",
		"A+Ctrl",
		"Ctrl + +",
		"F99",
	}
	for _, s := range bad {
		if _, err := ParseShortcut(s); err == nil {
			t.Fatalf("ParseShortcut(%q) should fail", s)
		}
	}
}

func TestShortcutMatchesExactModifiers(t *testing.T) {
	sc, err := ParseShortcut("Ctrl+Shift+A")
	if err != nil {
		t.Fatalf("ParseShortcut failed: %v", err)
	}

	if !sc.Matches('A', Mods{Ctrl: true, Shift: true}) {
		t.Fatalf("exact chord should match")
	}
	if sc.Matches('A', Mods{Ctrl: true}) {
		t.Fatalf("missing Shift must not match")
	}
	if sc.Matches('A', Mods{Ctrl: true, Shift: true, Alt: true}) {
		t.Fatalf("extra Alt must not match")
	}
	if sc.Matches('B', Mods{Ctrl: true, Shift: true}) {
		t.Fatalf("wrong key must not match")
	}
}

func TestZeroShortcutNeverMatches(t *testing.T) {
	var sc Shortcut
	if sc.Matches(0, Mods{}) {
		t.Fatalf("zero shortcut must never match")
	}
}

func TestParseModifier(t *testing.T) {
	if got := ParseModifier("Alt"); got != (Mods{Alt: true}) {
		t.Fatalf("Alt: got %#v", got)
	}
	if got := ParseModifier("shift"); got != (Mods{Shift: true}) {
		t.Fatalf("shift: got %#v", got)
	}
	if got := ParseModifier("anything-else"); got != (Mods{Ctrl: true}) {
		t.Fatalf("fallback: got %#v", got)
	}
}
