package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickclipboard/clip_helper"
	"quickclipboard/storage"
)

const (
	// pasteSettleDelay sits between the clipboard write and the Ctrl+V so
	// the target sees the new contents.
	pasteSettleDelay = 50 * time.Millisecond

	// pasteGrace keeps the monitor suppressed after Ctrl+V; file managers
	// re-read the clipboard late and get a longer window.
	pasteGrace       = 500 * time.Millisecond
	fileManagerGrace = time.Second
)

// fileManagerProcs are foreground processes that deserve the longer grace
// window and a CF_HDROP alongside pasted images.
var fileManagerProcs = []string{"explorer.exe", "totalcmd", "doublecmd", "files.exe"}

func isFileManager(proc string) bool {
	for _, fm := range fileManagerProcs {
		if strings.Contains(proc, fm) {
			return true
		}
	}
	return false
}

// acquirePasteLatch suppresses the clipboard monitor. The latch is a
// counter: overlapping pastes keep the monitor quiet until the last one
// releases.
func (a *App) acquirePasteLatch() {
	a.pasting.Add(1)
}

func (a *App) releasePasteLatch() {
	if a.pasting.Add(-1) < 0 {
		a.pasting.Store(0)
	}
}

// releasePasteLatchAfter holds the latch through the grace window.
func (a *App) releasePasteLatchAfter(d time.Duration) {
	time.AfterFunc(d, a.releasePasteLatch)
}

func (a *App) isPasting() bool {
	return a.pasting.Load() > 0
}

// performPaste is the replay critical section: prepare the clipboard,
// restore the remembered foreground window and synthesize Ctrl+V. Runs on a
// worker goroutine, never on the hook thread.
func (a *App) performPaste(e storage.Entry, translate bool) error {
	s := a.settings.Snapshot()
	a.acquirePasteLatch()

	if translate && s.AITranslationEnabled && e.Kind == clip_helper.KindText {
		// The pipeline types the translation itself; when the stream ends
		// it releases the latch and dismisses the panel like any paste.
		a.translator.Start(e.Text, s, func() {
			a.releasePasteLatchAfter(pasteGrace)
			a.hidePanelUnlessPinned()
		})
		return nil
	}

	target := a.focus.RememberedProcessName()
	if err := a.prepareClipboard(e, s.PasteWithFormat, s.ImageDataPriorityApps, target); err != nil {
		a.releasePasteLatch()
		a.bus.Publish(EventPasteError, map[string]any{"error": err.Error()})
		return err
	}

	time.Sleep(pasteSettleDelay)
	a.focus.RestoreForeground()
	synthesizeCtrlV()

	grace := pasteGrace
	if isFileManager(target) {
		grace = fileManagerGrace
	}
	a.releasePasteLatchAfter(grace)

	a.hidePanelUnlessPinned()
	return nil
}

// prepareClipboard resolves an entry onto the OS clipboard.
func (a *App) prepareClipboard(e storage.Entry, withFormat bool, rawImageApps []string, target string) error {
	switch e.Kind {
	case clip_helper.KindText:
		html := ""
		if withFormat {
			html = e.HTML
		}
		return writeClipboardRetry(func() error {
			return clip_helper.WriteText(e.Text, html)
		})

	case clip_helper.KindImage:
		png, err := a.images.ReadPNG(e.ImageID)
		if err != nil {
			return err
		}
		img, err := clip_helper.DecodeImage(png)
		if err != nil {
			return err
		}
		// Apps on the raw-image list want pixels only; everyone else
		// also gets a file drop pointing at the stored PNG.
		pngPath := a.images.Path(e.ImageID)
		for _, app := range rawImageApps {
			if app != "" && strings.Contains(target, strings.ToLower(app)) {
				pngPath = ""
				break
			}
		}
		return writeClipboardRetry(func() error {
			return clip_helper.WriteImage(img, pngPath)
		})

	case clip_helper.KindFiles:
		return writeClipboardRetry(func() error {
			return clip_helper.WriteFiles(e.Files)
		})
	}
	return fmt.Errorf("cannot paste entry of kind %q", e.Kind)
}

// writeClipboardRetry retries busy-clipboard failures with a short backoff.
// Other errors surface immediately.
func writeClipboardRetry(write func() error) error {
	var err error
	for attempt := 0; attempt < clip_helper.OpenRetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(clip_helper.OpenRetryDelay)
		}
		if err = write(); err == nil || !errors.Is(err, clip_helper.ErrBusy) {
			return err
		}
	}
	return err
}

// pasteHistoryAt replays the history entry at index (0 = head). The paste
// leaves history order untouched; only a fresh copy moves entries.
func (a *App) pasteHistoryAt(ctx context.Context, index int) error {
	items, err := a.history.List(ctx, index+1)
	if err != nil {
		return err
	}
	if index >= len(items) {
		return fmt.Errorf("history has no entry at index %d", index)
	}
	it := items[index]
	e := storage.Entry{
		Kind:    clip_helper.Kind(it.Kind),
		Text:    it.Text,
		HTML:    it.HTML,
		ImageID: it.ImageID,
		Files:   it.Files(),
	}
	return a.performPaste(e, a.settings.Snapshot().AITranslateOnPaste)
}

func (a *App) hidePanelUnlessPinned() {
	if a.pinned.Load() {
		return
	}
	a.focus.SetPanelVisible(false)
	a.bus.Publish(EventNavigationAction, map[string]any{"action": "hide-panel"})
}
