package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"quickclipboard/clip_helper"
	"quickclipboard/settings"
)

var errTranslationCancelled = errors.New("translation cancelled")

const translateRequestTimeout = 2 * time.Minute

// chatRequest is the streaming chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatChunk is one decoded "data:" line of the response stream.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Translator streams chat completions and types them into the foreground
// window. One translation runs at a time; starting a new one cancels the
// previous.
type Translator struct {
	app    *App
	client *http.Client

	mu     sync.Mutex
	cur    *translation
	active atomic.Bool
}

// translation identifies one pipeline run, so a finished run only tears down
// its own state and never a successor's.
type translation struct {
	cancel context.CancelFunc
}

func NewTranslator(app *App) *Translator {
	return &Translator{
		app: app,
		// Per-request contexts own the deadline; streams outlive any
		// single fixed client timeout.
		client: &http.Client{Timeout: 0},
	}
}

// Active reports whether a translation is in flight. The hook layer
// disables panel navigation while this is true, because the target app is
// the one receiving keystrokes.
func (t *Translator) Active() bool {
	return t.active.Load()
}

// Cancel aborts the in-flight translation, if any.
func (t *Translator) Cancel() {
	t.mu.Lock()
	cur := t.cur
	t.mu.Unlock()
	if cur != nil {
		cur.cancel()
	}
}

// Start launches a translation on a worker goroutine, cancelling any
// previous run. done runs exactly once when the pipeline finishes, fails or
// is cancelled.
func (t *Translator) Start(text string, s settings.Settings, done func()) {
	ctx, cancel := context.WithTimeout(context.Background(), translateRequestTimeout)
	mine := &translation{cancel: cancel}

	t.mu.Lock()
	if t.cur != nil {
		t.cur.cancel()
	}
	t.cur = mine
	t.mu.Unlock()

	t.active.Store(true)
	t.app.bus.Publish(EventTranslationStart, map[string]any{"target": s.AITargetLanguage})

	go func() {
		defer func() {
			cancel()
			t.mu.Lock()
			if t.cur == mine {
				t.cur = nil
				t.active.Store(false)
			}
			t.mu.Unlock()
			done()
		}()
		t.run(ctx, text, s)
	}()
}

func (t *Translator) run(ctx context.Context, text string, s settings.Settings) {
	err := t.translate(ctx, text, s)
	switch {
	case err == nil:
		t.app.bus.Publish(EventTranslationOK, nil)
	case errors.Is(err, errTranslationCancelled) || errors.Is(err, context.Canceled):
		// Normal termination, nothing to surface.
		slog.Debug("translation cancelled")
	default:
		slog.Warn("translation failed, pasting original text", "err", err)
		t.app.bus.Publish(EventTranslationError, map[string]any{"error": err.Error()})
		// Replay downgrades to the literal text so the paste still
		// lands.
		t.pasteLiteral(text, s)
	}
}

func (t *Translator) translate(ctx context.Context, text string, s settings.Settings) error {
	prompt := strings.ReplaceAll(s.AITranslationPrompt, "{target_language}", s.AITargetLanguage)

	body, err := json.Marshal(chatRequest{
		Model:       s.AIModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt + "\n" + text}},
		Stream:      true,
		Temperature: s.AITemperature,
	})
	if err != nil {
		return fmt.Errorf("failed to encode translation request: %w", err)
	}

	url := strings.TrimRight(s.AIBaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.AIAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.AIAPIKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errTranslationCancelled
		}
		return fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("translation server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	streaming := s.AIOutputMode == "stream"
	typer := newTyper(s.AIInputSpeed, s.AINewlineMode)
	var accumulated strings.Builder

	err = consumeSSE(resp.Body, func(chunk string) error {
		if ctx.Err() != nil {
			return errTranslationCancelled
		}
		t.app.bus.Publish(EventTranslationStatus, map[string]any{"chunk": chunk})
		if streaming {
			return typer.typeChunk(ctx, chunk)
		}
		accumulated.WriteString(chunk)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return errTranslationCancelled
		}
		return err
	}

	if !streaming {
		t.pasteLiteral(accumulated.String(), s)
	}
	return nil
}

// pasteLiteral sets text on the clipboard and replays Ctrl+V to the
// remembered window. Used by paste output mode and by the error downgrade.
func (t *Translator) pasteLiteral(text string, s settings.Settings) {
	if text == "" {
		return
	}
	err := writeClipboardRetry(func() error {
		return clip_helper.WriteText(text, "")
	})
	if err != nil {
		slog.Error("failed to set translated text on clipboard", "err", err)
		return
	}
	time.Sleep(pasteSettleDelay)
	t.app.focus.RestoreForeground()
	synthesizeCtrlV()
}

// consumeSSE reads "data:" lines off a chat-completions stream, invoking
// onChunk for each non-empty content delta until "data: [DONE]".
func consumeSSE(r io.Reader, onChunk func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Tolerate comment or malformed keep-alive lines.
			continue
		}
		for _, c := range chunk.Choices {
			if c.Delta.Content == "" {
				continue
			}
			if err := onChunk(c.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("translation stream broke: %w", err)
	}
	return nil
}

// typer paces synthetic Unicode keystrokes so streamed output looks typed.
type typer struct {
	delay       time.Duration
	newlineMode string
}

func newTyper(charsPerSecond int, newlineMode string) *typer {
	if charsPerSecond <= 0 {
		charsPerSecond = 20
	}
	return &typer{
		delay:       time.Second / time.Duration(charsPerSecond),
		newlineMode: newlineMode,
	}
}

func (t *typer) typeChunk(ctx context.Context, chunk string) error {
	for _, r := range chunk {
		if ctx.Err() != nil {
			return errTranslationCancelled
		}
		if r == '\n' {
			t.typeNewline()
		} else {
			typeRune(r)
		}
		t.pause()
	}
	return nil
}

func (t *typer) typeNewline() {
	switch t.newlineMode {
	case "enter":
		typeEnter(false)
	case "unicode":
		typeRune('\n')
	default:
		// shift_enter and auto: Shift+Enter has the broadest
		// compatibility across chat-style inputs.
		typeEnter(true)
	}
}

// pause sleeps the configured per-character delay with a little jitter so
// the output does not look machine-stamped.
func (t *typer) pause() {
	jitter := time.Duration(rand.Intn(11)-5) * time.Millisecond
	d := t.delay + jitter
	if d < 0 {
		d = 0
	}
	time.Sleep(d)
}
