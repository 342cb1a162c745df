package main

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event names published to the GUI shell.
const (
	EventClipboardChanged  = "clipboard-changed"
	EventQuickTextsUpdated = "quick-texts-updated"
	EventGroupsUpdated     = "groups-updated"
	EventSettingsChanged   = "settings-changed"
	EventTranslationStart  = "translation-start"
	EventTranslationStatus = "translation-status"
	EventTranslationOK     = "translation-success"
	EventTranslationError  = "translation-error"
	EventNavigationAction  = "navigation-action"
	EventPasteError        = "paste-error"
)

// EventBus fans application events out to the Wails shell and to local
// subscribers. Delivery is fire-and-forget; a slow subscriber never blocks
// the publisher and there is no back-pressure.
type EventBus struct {
	mu   sync.RWMutex
	ctx  context.Context
	subs map[string][]func(data any)
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]func(data any))}
}

// Attach hands the bus the Wails context. Before this, events only reach
// local subscribers (tests and the headless binary run that way).
func (b *EventBus) Attach(ctx context.Context) {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
}

// Subscribe registers a local handler for one event name. Handlers run on
// the publisher's goroutine and must be quick.
func (b *EventBus) Subscribe(name string, fn func(data any)) {
	b.mu.Lock()
	b.subs[name] = append(b.subs[name], fn)
	b.mu.Unlock()
}

// Publish emits one event.
func (b *EventBus) Publish(name string, data any) {
	b.mu.RLock()
	ctx := b.ctx
	subs := b.subs[name]
	b.mu.RUnlock()

	if ctx != nil {
		runtime.EventsEmit(ctx, name, data)
	}
	for _, fn := range subs {
		fn(data)
	}
}
