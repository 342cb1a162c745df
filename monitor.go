package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gen2brain/beeep"

	"quickclipboard/clip_helper"
	"quickclipboard/storage"
)

// monitorInterval is the polling tick for platforms without clipboard
// change notifications.
const monitorInterval = 250 * time.Millisecond

// lastSeen is the monitor's memory of the previous observation, used to
// skip unchanged clipboard contents without touching the stores.
type lastSeen struct {
	text    string
	imageID string
	files   string
}

// runMonitor is the single-threaded capture loop: poll the gateway, filter,
// store, publish. It exits when ctx is cancelled.
func (a *App) runMonitor(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	var last lastSeen
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.monitorTick(ctx, &last)
		}
	}
}

func (a *App) monitorTick(ctx context.Context, last *lastSeen) {
	s := a.settings.Snapshot()
	if !s.ClipboardMonitor {
		return
	}
	// Our own replay writes never loop back into history, and neither do
	// clipboard writes made while our own panel holds the foreground.
	if a.isPasting() || a.focus.IsOwnForeground() {
		return
	}

	payload, err := clip_helper.Read()
	if err != nil {
		if !errors.Is(err, clip_helper.ErrBusy) {
			slog.Debug("clipboard read failed", "err", err)
		}
		return
	}
	if payload == nil {
		return
	}

	if a.suppressedByAppFilter(s.AppFilterEnabled, s.AppFilterMode, s.AppFilterList) {
		return
	}

	entry, changed := a.buildEntry(payload, last, s.SaveImages)
	if !changed {
		return
	}

	if !s.IgnoreDuplicates {
		if head, err := a.history.List(ctx, 1); err == nil && len(head) == 1 && entrySamePayload(entry, head[0]) {
			return
		}
	}

	res, item, err := a.history.Insert(ctx, entry)
	if err != nil {
		slog.Error("failed to record clipboard entry", "kind", entry.Kind, "err", err)
		return
	}

	a.publishClipboardChanged(res, item)
	if s.ShowNotifications {
		// Best effort; a missing notification daemon is not an error.
		_ = beeep.Notify("QuickClipboard", "Copied "+string(entry.Kind), "")
	}
}

// buildEntry converts a gateway payload into a history entry, updating the
// monitor's memory. changed is false when the payload matches the previous
// observation or should be dropped.
func (a *App) buildEntry(p *clip_helper.Payload, last *lastSeen, saveImages bool) (storage.Entry, bool) {
	switch p.Kind {
	case clip_helper.KindText:
		if p.Text == last.text {
			return storage.Entry{}, false
		}
		last.text = p.Text
		last.imageID, last.files = "", ""
		return storage.Entry{
			Kind: clip_helper.KindText,
			Text: sanitizePlainText(p.Text),
			HTML: p.HTML,
		}, true

	case clip_helper.KindImage:
		sum := sha256.Sum256(p.PNG)
		id := hex.EncodeToString(sum[:8])
		if id == last.imageID {
			return storage.Entry{}, false
		}
		last.imageID = id
		last.text, last.files = "", ""
		if !saveImages {
			return storage.Entry{}, false
		}
		stored, err := a.images.SavePNG(p.PNG)
		if err != nil {
			slog.Error("failed to store clipboard image", "err", err)
			return storage.Entry{}, false
		}
		return storage.Entry{Kind: clip_helper.KindImage, ImageID: stored}, true

	case clip_helper.KindFiles:
		joined := strings.Join(p.Files, "\x00")
		if joined == last.files {
			return storage.Entry{}, false
		}
		last.files = joined
		last.text, last.imageID = "", ""
		return storage.Entry{Kind: clip_helper.KindFiles, Files: p.Files}, true
	}
	return storage.Entry{}, false
}

// suppressedByAppFilter consults the foreground process against the
// configured allow or deny list.
func (a *App) suppressedByAppFilter(enabled bool, mode string, list []string) bool {
	if !enabled || len(list) == 0 {
		return false
	}
	proc := a.focus.ForegroundProcessName()
	if proc == "" {
		return false
	}
	matched := false
	for _, name := range list {
		if name != "" && strings.Contains(proc, strings.ToLower(name)) {
			matched = true
			break
		}
	}
	if mode == "allow" {
		return !matched
	}
	return matched
}

// entrySamePayload compares an incoming entry against a stored row using
// the history's equality rules.
func entrySamePayload(e storage.Entry, it *storage.ClipboardItem) bool {
	if string(e.Kind) != it.Kind {
		return false
	}
	switch e.Kind {
	case clip_helper.KindText:
		return strings.TrimSpace(e.Text) == strings.TrimSpace(it.Text)
	case clip_helper.KindImage:
		return e.ImageID == it.ImageID
	case clip_helper.KindFiles:
		got := it.Files()
		if len(got) != len(e.Files) {
			return false
		}
		for i := range got {
			if got[i] != e.Files[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (a *App) publishClipboardChanged(res storage.InsertResult, item *storage.ClipboardItem) {
	change := "inserted"
	if res == storage.Moved {
		change = "moved"
	}
	data := map[string]any{
		"change":    change,
		"id":        item.ID,
		"kind":      item.Kind,
		"timestamp": item.Timestamp,
	}
	switch clip_helper.Kind(item.Kind) {
	case clip_helper.KindText:
		data["preview"] = previewText(item.Text)
	case clip_helper.KindImage:
		data["image_id"] = item.ImageID
	case clip_helper.KindFiles:
		data["files"] = item.Files()
	}
	a.bus.Publish(EventClipboardChanged, data)
}
