package main

import (
	"strings"
	"unicode"
)

const maxPreviewLen = 120

// sanitizePlainText normalizes CRLF to LF and strips control, format,
// surrogate, private-use and non-character runes so hostile clipboard
// payloads cannot smuggle invisible content into the panel. Inner
// whitespace and length are preserved; trimming is the caller's call.
func sanitizePlainText(input string) string {
	s := strings.ReplaceAll(input, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		if unicode.Is(unicode.Cs, r) || unicode.Is(unicode.Co, r) {
			return -1
		}
		if r >= 0xFDD0 && r <= 0xFDEF {
			return -1
		}
		if r&0xFFFE == 0xFFFE {
			return -1
		}
		return r
	}, s)
}

// previewText flattens an entry's text into a short single-line preview for
// list events: newlines collapse to spaces and long text is cut on a rune
// boundary with an ellipsis.
func previewText(s string) string {
	s = strings.Join(strings.Fields(sanitizePlainText(s)), " ")
	runes := []rune(s)
	if len(runes) <= maxPreviewLen {
		return s
	}
	return string(runes[:maxPreviewLen]) + "…"
}
