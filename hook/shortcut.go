// Package hook matches global keyboard and mouse input against the
// configured shortcuts and turns it into application actions. On Windows the
// input arrives through low-level hooks; the matching itself is portable.
package hook

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadShortcut is returned for shortcut strings outside the grammar.
// Callers fall back to the previous or default binding.
var ErrBadShortcut = errors.New("unrecognised shortcut")

// Mods is the live or required modifier state.
type Mods struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
}

// Shortcut is one parsed binding: a modifier set plus a virtual-key code.
type Shortcut struct {
	Mods
	Key string // canonical key name, for display
	VK  uint16
}

// Matches reports whether a key event equals this shortcut exactly. Extra
// held modifiers do not match.
func (s Shortcut) Matches(vk uint16, m Mods) bool {
	return s.VK != 0 && s.VK == vk && s.Mods == m
}

// String renders the canonical form, e.g. "Ctrl+Shift+A".
func (s Shortcut) String() string {
	var parts []string
	if s.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if s.Shift {
		parts = append(parts, "Shift")
	}
	if s.Alt {
		parts = append(parts, "Alt")
	}
	if s.Win {
		parts = append(parts, "Win")
	}
	parts = append(parts, s.Key)
	return strings.Join(parts, "+")
}

// Windows virtual-key codes for the keys the grammar names. Letters and
// digits use their ASCII codes.
const (
	vkBack      = 0x08
	vkTab       = 0x09
	vkReturn    = 0x0D
	vkEscape    = 0x1B
	vkSpace     = 0x20
	vkPageUp    = 0x21
	vkPageDown  = 0x22
	vkEnd       = 0x23
	vkHome      = 0x24
	vkLeft      = 0x25
	vkUp        = 0x26
	vkRight     = 0x27
	vkDown      = 0x28
	vkInsert    = 0x2D
	vkDelete    = 0x2E
	vkF1        = 0x70
	vkOemTilde  = 0xC0 // the ` / ~ key
	vkOemMinus  = 0xBD
	vkOemPlus   = 0xBB
	vkOemComma  = 0xBC
	vkOemPeriod = 0xBE
)

var namedKeys = map[string]struct {
	canonical string
	vk        uint16
}{
	"enter":     {"Enter", vkReturn},
	"return":    {"Enter", vkReturn},
	"escape":    {"Escape", vkEscape},
	"esc":       {"Escape", vkEscape},
	"space":     {"Space", vkSpace},
	"tab":       {"Tab", vkTab},
	"backspace": {"Backspace", vkBack},
	"delete":    {"Delete", vkDelete},
	"del":       {"Delete", vkDelete},
	"insert":    {"Insert", vkInsert},
	"home":      {"Home", vkHome},
	"end":       {"End", vkEnd},
	"pageup":    {"PageUp", vkPageUp},
	"pagedown":  {"PageDown", vkPageDown},
	"up":        {"Up", vkUp},
	"down":      {"Down", vkDown},
	"left":      {"Left", vkLeft},
	"right":     {"Right", vkRight},
	"`":         {"`", vkOemTilde},
	"backquote": {"`", vkOemTilde},
	"-":         {"-", vkOemMinus},
	"=":         {"=", vkOemPlus},
	",":         {",", vkOemComma},
	".":         {".", vkOemPeriod},
}

// ParseShortcut parses strings like "Ctrl+Shift+A", "Win+V" or "Ctrl+`".
// Modifier names are case-insensitive; Control is an alias of Ctrl, and
// Meta/Super are aliases of Win. The final token must be a key.
func ParseShortcut(raw string) (Shortcut, error) {
	var sc Shortcut

	tokens := strings.Split(raw, "+")
	// "Ctrl++" style: a literal plus as the key produces empty tokens.
	if strings.HasSuffix(raw, "+") && len(tokens) > 1 && tokens[len(tokens)-1] == "" {
		return sc, fmt.Errorf("%w: %q", ErrBadShortcut, raw)
	}

	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Shortcut{}, fmt.Errorf("%w: %q", ErrBadShortcut, raw)
		}
		last := i == len(tokens)-1

		switch strings.ToLower(tok) {
		case "ctrl", "control":
			if last {
				return Shortcut{}, fmt.Errorf("%w: %q ends in a modifier", ErrBadShortcut, raw)
			}
			sc.Ctrl = true
			continue
		case "shift":
			if last {
				return Shortcut{}, fmt.Errorf("%w: %q ends in a modifier", ErrBadShortcut, raw)
			}
			sc.Shift = true
			continue
		case "alt":
			if last {
				return Shortcut{}, fmt.Errorf("%w: %q ends in a modifier", ErrBadShortcut, raw)
			}
			sc.Alt = true
			continue
		case "win", "meta", "super":
			if last {
				return Shortcut{}, fmt.Errorf("%w: %q ends in a modifier", ErrBadShortcut, raw)
			}
			sc.Win = true
			continue
		}

		if !last {
			return Shortcut{}, fmt.Errorf("%w: %q has key %q before the end", ErrBadShortcut, raw, tok)
		}

		key, vk, err := parseKey(tok)
		if err != nil {
			return Shortcut{}, err
		}
		sc.Key = key
		sc.VK = vk
	}

	if sc.VK == 0 {
		return Shortcut{}, fmt.Errorf("%w: %q has no key", ErrBadShortcut, raw)
	}
	return sc, nil
}

func parseKey(tok string) (string, uint16, error) {
	lower := strings.ToLower(tok)

	if named, ok := namedKeys[lower]; ok {
		return named.canonical, named.vk, nil
	}

	// Single letter or digit.
	if len(tok) == 1 {
		c := lower[0]
		switch {
		case c >= 'a' && c <= 'z':
			return strings.ToUpper(tok), uint16(c - 'a' + 'A'), nil
		case c >= '0' && c <= '9':
			return tok, uint16(c), nil
		}
	}

	// Function keys F1..F24.
	if len(lower) >= 2 && lower[0] == 'f' {
		n := 0
		for _, r := range lower[1:] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return "F" + lower[1:], uint16(vkF1 + n - 1), nil
		}
	}

	return "", 0, fmt.Errorf("%w: unknown key %q", ErrBadShortcut, tok)
}

// ParseModifier maps a modifier option value ("Ctrl", "Alt", "Shift") to a
// Mods mask. Unknown values fall back to Ctrl.
func ParseModifier(name string) Mods {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alt":
		return Mods{Alt: true}
	case "shift":
		return Mods{Shift: true}
	case "win", "meta", "super":
		return Mods{Win: true}
	default:
		return Mods{Ctrl: true}
	}
}
