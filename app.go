package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"quickclipboard/clip_helper"
	"quickclipboard/focus"
	"quickclipboard/hook"
	"quickclipboard/imagestore"
	"quickclipboard/settings"
	"quickclipboard/storage"
)

// App is the explicit state root: it owns every component and is the only
// thing the GUI shell binds. No component holds another directly; they meet
// here and through the event bus.
type App struct {
	ctx     context.Context
	dataDir string

	settings   *settings.Store
	db         *storage.DB
	history    *storage.History
	quickTexts *storage.QuickTexts
	groups     *storage.Groups
	images     *imagestore.Manager
	focus      *focus.Coordinator
	bus        *EventBus
	engine     *hook.Engine
	inputHook  *hook.Hook
	translator *Translator

	pasting        atomic.Int32
	pinned         atomic.Bool
	previewVisible atomic.Bool

	panelMu   sync.Mutex
	panelRect focus.Rect
	panelSet  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp wires every component over dataDir.
func NewApp(dataDir string) (*App, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &App{dataDir: dataDir}
	a.bus = NewEventBus()
	a.focus = focus.NewCoordinator()

	var err error
	if a.settings, err = settings.NewStore(dataDir); err != nil {
		return nil, err
	}
	if a.images, err = imagestore.New(dataDir); err != nil {
		return nil, err
	}
	if a.db, err = storage.Open(filepath.Join(dataDir, storage.DBFileName)); err != nil {
		return nil, err
	}

	snap := a.settings.Snapshot()
	if a.history, err = storage.NewHistory(a.db, snap.HistoryLimit, a.images); err != nil {
		return nil, err
	}
	a.quickTexts = storage.NewQuickTexts(a.db, a.images)
	a.groups = storage.NewGroups(a.db)
	a.translator = NewTranslator(a)

	a.engine = hook.NewEngine(bindingsFromSettings(snap), hook.State{
		PanelVisible:   a.focus.PanelVisible,
		PanelPinned:    a.pinned.Load,
		PreviewVisible: a.previewVisible.Load,
		Translating:    a.translator.Active,
		InPanel:        a.pointInPanel,
	})

	a.settings.OnChange(func(s settings.Settings) {
		a.history.SetLimit(s.HistoryLimit)
		a.engine.SetBindings(bindingsFromSettings(s))
		a.bus.Publish(EventSettingsChanged, s)
	})

	return a, nil
}

// Start installs the input hooks and launches the monitor and the action
// worker. The app runs until ctx is cancelled or Shutdown is called.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	h, err := hook.Install(a.engine)
	if err != nil {
		// Shortcuts degrade but capture and the shell API still work.
		slog.Warn("input hooks unavailable", "err", err)
	} else {
		a.inputHook = h
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.runMonitor(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.runActionWorker(ctx)
	}()

	slog.Info("clipboard core started", "data_dir", a.dataDir)
	return nil
}

// Shutdown stops the workers and closes the database.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.inputHook != nil {
		a.inputHook.Uninstall()
	}
	a.translator.Cancel()
	a.wg.Wait()
	a.focus.Reset()
	if err := a.db.Close(); err != nil {
		slog.Error("failed to close database", "err", err)
	}
}

// OnStartup receives the Wails context once the shell is up.
func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx
	a.bus.Attach(ctx)
}

// OnShutdown mirrors OnStartup for the Wails lifecycle.
func (a *App) OnShutdown(ctx context.Context) {
	a.Shutdown()
}

// runActionWorker drains the decisions the hook thread posted and performs
// the slow work (clipboard writes, DB reads, window juggling) off the hook
// thread.
func (a *App) runActionWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.engine.Events():
			a.handleAction(ctx, ev)
		}
	}
}

func (a *App) handleAction(ctx context.Context, ev hook.Event) {
	switch ev.Action {
	case hook.ActionTogglePanel:
		a.TogglePanel()

	case hook.ActionShowPreview:
		a.previewVisible.Store(true)
		a.focus.CaptureForeground()
		a.bus.Publish(EventNavigationAction, map[string]any{"action": string(hook.ActionShowPreview)})

	case hook.ActionPastePreview:
		a.previewVisible.Store(false)
		// The shell owns the preview selection; it answers by calling
		// PasteHistoryIndex with the index current at release.
		a.bus.Publish(EventNavigationAction, map[string]any{"action": string(hook.ActionPastePreview)})

	case hook.ActionPasteIndex:
		if err := a.pasteHistoryAt(ctx, ev.Index); err != nil {
			slog.Error("number paste failed", "index", ev.Index, "err", err)
		}

	case hook.ActionCancelTranslation:
		a.translator.Cancel()

	case hook.ActionNavigate:
		a.bus.Publish(EventNavigationAction, map[string]any{"action": "navigate", "move": string(ev.Nav)})

	case hook.ActionHidePanel:
		a.hidePanelUnlessPinned()

	case hook.ActionWheel:
		a.bus.Publish(EventNavigationAction, map[string]any{"action": string(hook.ActionWheel), "delta": ev.Delta})
	}
}

// TogglePanel flips panel visibility. Showing captures the foreground
// window first so focus can be restored; hiding restores it.
func (a *App) TogglePanel() {
	if a.focus.PanelVisible() {
		a.focus.SetPanelVisible(false)
		a.focus.RestoreForeground()
		a.bus.Publish(EventNavigationAction, map[string]any{"action": "hide-panel"})
		return
	}
	a.focus.CaptureForeground()
	a.focus.SetPanelVisible(true)
	a.bus.Publish(EventNavigationAction, map[string]any{"action": "show-panel"})
}

// pointInPanel is the hook layer's hit test for click-outside detection.
func (a *App) pointInPanel(x, y int32) bool {
	a.panelMu.Lock()
	defer a.panelMu.Unlock()
	if !a.panelSet {
		return false
	}
	r := a.panelRect
	return int(x) >= r.X && int(x) < r.X+r.W && int(y) >= r.Y && int(y) < r.Y+r.H
}

// --- Shell-facing API. Every method below is bound through Wails. ---

// SetPanelWindow registers the panel's native handle and applies the
// no-activate tool-window style.
func (a *App) SetPanelWindow(handle uintptr) error {
	h := focus.Handle(handle)
	a.focus.SetPanel(h)
	return a.focus.MakeToolWindow(h)
}

// SetPanelBounds tells the core where the panel is on screen.
func (a *App) SetPanelBounds(x, y, w, h int) {
	a.panelMu.Lock()
	a.panelRect = focus.Rect{X: x, Y: y, W: w, H: h}
	a.panelSet = true
	a.panelMu.Unlock()
}

// PanelAnchor returns where the shell should place a w×h panel.
func (a *App) PanelAnchor(w, h int) (x, y int) {
	return a.focus.PanelAnchor(w, h)
}

// SetPinned marks the panel as pinned; a pinned panel survives pastes and
// outside clicks.
func (a *App) SetPinned(pinned bool) {
	a.pinned.Store(pinned)
}

// SetPreviewVisible mirrors the shell's preview window state.
func (a *App) SetPreviewVisible(visible bool) {
	a.previewVisible.Store(visible)
}

// GetHistory returns history entries, newest first.
func (a *App) GetHistory(limit int) ([]*storage.ClipboardItem, error) {
	return a.history.List(a.appCtx(), limit)
}

// SearchHistory returns text entries containing query, newest first.
func (a *App) SearchHistory(query string, limit int) ([]*storage.ClipboardItem, error) {
	return a.history.Search(a.appCtx(), query, limit)
}

// DeleteHistoryItem removes one entry.
func (a *App) DeleteHistoryItem(id int64) error {
	err := a.history.Delete(a.appCtx(), id)
	if err == nil {
		a.bus.Publish(EventClipboardChanged, map[string]any{"change": "deleted", "id": id})
	}
	return err
}

// UpdateHistoryItemText rewrites a text entry.
func (a *App) UpdateHistoryItemText(id int64, text string) error {
	err := a.history.UpdateText(a.appCtx(), id, sanitizePlainText(text))
	if err == nil {
		a.bus.Publish(EventClipboardChanged, map[string]any{"change": "updated", "id": id})
	}
	return err
}

// ReorderHistory rearranges entries to the given id order, head first.
func (a *App) ReorderHistory(ids []int64) error {
	err := a.history.Reorder(a.appCtx(), ids)
	if err == nil {
		a.bus.Publish(EventClipboardChanged, map[string]any{"change": "reordered"})
	}
	return err
}

// ClearHistory drops all entries and their images.
func (a *App) ClearHistory() error {
	err := a.history.Clear(a.appCtx())
	if err == nil {
		a.bus.Publish(EventClipboardChanged, map[string]any{"change": "cleared"})
	}
	return err
}

// PasteHistoryItem replays one entry by id.
func (a *App) PasteHistoryItem(id int64) error {
	it, err := a.history.Get(a.appCtx(), id)
	if err != nil {
		return err
	}
	e := storage.Entry{
		Kind:    clip_helper.Kind(it.Kind),
		Text:    it.Text,
		HTML:    it.HTML,
		ImageID: it.ImageID,
		Files:   it.Files(),
	}
	return a.performPaste(e, a.settings.Snapshot().AITranslateOnPaste)
}

// PasteHistoryIndex replays the entry at a history index (0 = head). The
// preview release path uses this.
func (a *App) PasteHistoryIndex(index int) error {
	return a.pasteHistoryAt(a.appCtx(), index)
}

// PasteText replays free text, optionally through translation.
func (a *App) PasteText(text string, translate bool) error {
	return a.performPaste(storage.Entry{Kind: clip_helper.KindText, Text: text}, translate)
}

// GetImageDataURL resolves a stored image for display.
func (a *App) GetImageDataURL(id string) (string, error) {
	return a.images.DataURL(id)
}

// ListQuickTexts returns the quick texts of one group ("" or "all" for
// everything).
func (a *App) ListQuickTexts(groupID string) ([]*storage.QuickText, error) {
	return a.quickTexts.List(a.appCtx(), groupID)
}

// CreateQuickText stores a new text quick text.
func (a *App) CreateQuickText(title, content, groupID string) (*storage.QuickText, error) {
	qt, err := a.quickTexts.Create(a.appCtx(), title, string(clip_helper.KindText), content, "", groupID)
	if err == nil {
		a.bus.Publish(EventQuickTextsUpdated, nil)
	}
	return qt, err
}

// PromoteHistoryItem turns a history entry into a quick text. Image entries
// get their own image copy so they survive history eviction.
func (a *App) PromoteHistoryItem(id int64, title, groupID string) (*storage.QuickText, error) {
	it, err := a.history.Get(a.appCtx(), id)
	if err != nil {
		return nil, err
	}

	imageID := ""
	content := it.Text
	if clip_helper.Kind(it.Kind) == clip_helper.KindImage {
		if imageID, err = a.images.Copy(it.ImageID); err != nil {
			return nil, err
		}
		content = ""
	}

	qt, err := a.quickTexts.Create(a.appCtx(), title, it.Kind, content, imageID, groupID)
	if err != nil {
		if imageID != "" {
			_ = a.images.Delete(imageID)
		}
		return nil, err
	}
	a.bus.Publish(EventQuickTextsUpdated, nil)
	return qt, nil
}

// UpdateQuickText rewrites title and content.
func (a *App) UpdateQuickText(id, title, content string) error {
	err := a.quickTexts.Update(a.appCtx(), id, title, content)
	if err == nil {
		a.bus.Publish(EventQuickTextsUpdated, nil)
	}
	return err
}

// DeleteQuickText removes a quick text (and its private image).
func (a *App) DeleteQuickText(id string) error {
	err := a.quickTexts.Delete(a.appCtx(), id)
	if err == nil {
		a.bus.Publish(EventQuickTextsUpdated, nil)
	}
	return err
}

// MoveQuickTextToGroup reassigns a quick text.
func (a *App) MoveQuickTextToGroup(id, groupID string) error {
	err := a.quickTexts.MoveToGroup(a.appCtx(), id, groupID)
	if err == nil {
		a.bus.Publish(EventQuickTextsUpdated, nil)
	}
	return err
}

// ReorderQuickTexts rewrites the order of one group's quick texts.
func (a *App) ReorderQuickTexts(groupID string, ids []string) error {
	err := a.quickTexts.ReorderWithinGroup(a.appCtx(), groupID, ids)
	if err == nil {
		a.bus.Publish(EventQuickTextsUpdated, nil)
	}
	return err
}

// PasteQuickText replays a quick text.
func (a *App) PasteQuickText(id string, translate bool) error {
	qt, err := a.quickTexts.Get(a.appCtx(), id)
	if err != nil {
		return err
	}
	e := storage.Entry{
		Kind:    clip_helper.Kind(qt.Kind),
		Text:    qt.Content,
		ImageID: qt.ImageID,
	}
	return a.performPaste(e, translate)
}

// ListGroups returns groups in the global order.
func (a *App) ListGroups() ([]*storage.Group, error) {
	return a.groups.List(a.appCtx())
}

// CreateGroup adds a group.
func (a *App) CreateGroup(name, icon string) (*storage.Group, error) {
	g, err := a.groups.Create(a.appCtx(), name, icon)
	if err == nil {
		a.bus.Publish(EventGroupsUpdated, nil)
	}
	return g, err
}

// UpdateGroup renames a group.
func (a *App) UpdateGroup(id, name, icon string) error {
	err := a.groups.Update(a.appCtx(), id, name, icon)
	if err == nil {
		a.bus.Publish(EventGroupsUpdated, nil)
	}
	return err
}

// DeleteGroup removes a group; its quick texts land in the all group.
func (a *App) DeleteGroup(id string) error {
	err := a.groups.Delete(a.appCtx(), id)
	if err == nil {
		a.bus.Publish(EventGroupsUpdated, nil)
		a.bus.Publish(EventQuickTextsUpdated, nil)
	}
	return err
}

// SetGroupOrder rewrites the global group ordering.
func (a *App) SetGroupOrder(ids []string) error {
	err := a.groups.SetOrder(a.appCtx(), ids)
	if err == nil {
		a.bus.Publish(EventGroupsUpdated, nil)
	}
	return err
}

// GetSettings returns the current settings snapshot.
func (a *App) GetSettings() settings.Settings {
	return a.settings.Snapshot()
}

// ApplySettings overwrites the settings with the shell's edited copy.
func (a *App) ApplySettings(next settings.Settings) error {
	return a.settings.Update(func(s *settings.Settings) { *s = next })
}

// CancelTranslation aborts an in-flight translation.
func (a *App) CancelTranslation() {
	a.translator.Cancel()
}

// CollectImages deletes stored images no history entry or quick text
// references anymore, returning how many were removed.
func (a *App) CollectImages() (int, error) {
	ctx := a.appCtx()
	used, err := a.history.ImageIDs(ctx)
	if err != nil {
		return 0, err
	}
	fromQuick, err := a.quickTexts.ImageIDs(ctx)
	if err != nil {
		return 0, err
	}
	for id := range fromQuick {
		used[id] = struct{}{}
	}
	return a.images.GC(used)
}

// appCtx is the context for shell-initiated operations.
func (a *App) appCtx() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}
