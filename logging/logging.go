// Package logging wires the process-wide slog logger: tinted, human-readable
// output when stderr is a terminal, JSON otherwise.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Setup installs the default logger. level is a slog level name ("debug",
// "info", "warn", "error"); format is "auto", "text" or "json". Unknown
// values fall back to info/auto. Call once, before any component starts.
func Setup(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	w := os.Stderr
	text := false
	switch strings.ToLower(format) {
	case "text":
		text = true
	case "json":
	default:
		text = isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	}

	var h slog.Handler
	if text {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      lvl,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(h))
}
