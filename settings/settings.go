// Package settings holds the user configuration: a single JSON file in the
// app data directory, loaded at startup, written back on every change. The
// file is the only source of truth for settings.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the settings file created under the app data dir.
const FileName = "settings.json"

// Settings is the full option set. Zero values are never used directly;
// Load starts from Default and overlays the file.
type Settings struct {
	HistoryLimit     int  `json:"history_limit"`
	ClipboardMonitor bool `json:"clipboard_monitor"`
	IgnoreDuplicates bool `json:"ignore_duplicates"`
	SaveImages       bool `json:"save_images"`

	ToggleShortcut          string `json:"toggle_shortcut"`
	PreviewShortcut         string `json:"preview_shortcut"`
	NumberShortcuts         bool   `json:"number_shortcuts"`
	NumberShortcutsModifier string `json:"number_shortcuts_modifier"`

	PasteWithFormat       bool     `json:"paste_with_format"`
	ImageDataPriorityApps []string `json:"image_data_priority_apps"`

	AITranslateOnPaste   bool    `json:"ai_translate_on_paste"`
	AITranslationEnabled bool    `json:"ai_translation_enabled"`
	AIAPIKey             string  `json:"ai_api_key"`
	AIModel              string  `json:"ai_model"`
	AIBaseURL            string  `json:"ai_base_url"`
	AITargetLanguage     string  `json:"ai_target_language"`
	AITranslationPrompt  string  `json:"ai_translation_prompt"`
	AIInputSpeed         int     `json:"ai_input_speed"`
	AINewlineMode        string  `json:"ai_newline_mode"`
	AIOutputMode         string  `json:"ai_output_mode"`
	AITemperature        float64 `json:"ai_temperature"`

	AppFilterEnabled bool     `json:"app_filter_enabled"`
	AppFilterMode    string   `json:"app_filter_mode"`
	AppFilterList    []string `json:"app_filter_list"`

	NavUpShortcut          string `json:"nav_up_shortcut"`
	NavDownShortcut        string `json:"nav_down_shortcut"`
	TabLeftShortcut        string `json:"tab_left_shortcut"`
	TabRightShortcut       string `json:"tab_right_shortcut"`
	ConfirmShortcut        string `json:"confirm_shortcut"`
	CloseShortcut          string `json:"close_shortcut"`
	GroupPrevShortcut      string `json:"group_prev_shortcut"`
	GroupNextShortcut      string `json:"group_next_shortcut"`
	TogglePinShortcut      string `json:"toggle_pin_shortcut"`
	FocusSearchShortcut    string `json:"focus_search_shortcut"`
	MiddleClickToggle      bool   `json:"middle_click_toggle"`
	MiddleClickModifier    string `json:"middle_click_modifier"`
	ShowNotifications      bool   `json:"show_notifications"`
	TranslateCancelHotkey  string `json:"translate_cancel_shortcut"`
}

// Default returns the shipped configuration.
func Default() *Settings {
	return &Settings{
		HistoryLimit:     100,
		ClipboardMonitor: true,
		IgnoreDuplicates: true,
		SaveImages:       true,

		ToggleShortcut:          "Win+V",
		PreviewShortcut:         "Ctrl+`",
		NumberShortcuts:         true,
		NumberShortcutsModifier: "Ctrl",

		PasteWithFormat: true,

		AITranslationEnabled: false,
		AIModel:              "gpt-4o-mini",
		AIBaseURL:            "https://api.openai.com/v1",
		AITargetLanguage:     "English",
		AITranslationPrompt:  "Translate the following text to {target_language}. Output only the translation.",
		AIInputSpeed:         20,
		AINewlineMode:        "auto",
		AIOutputMode:         "stream",
		AITemperature:        0.3,

		AppFilterMode: "deny",

		NavUpShortcut:         "Up",
		NavDownShortcut:       "Down",
		TabLeftShortcut:       "Left",
		TabRightShortcut:      "Right",
		ConfirmShortcut:       "Enter",
		CloseShortcut:         "Escape",
		GroupPrevShortcut:     "Ctrl+Up",
		GroupNextShortcut:     "Ctrl+Down",
		TogglePinShortcut:     "Ctrl+P",
		FocusSearchShortcut:   "Ctrl+F",
		MiddleClickToggle:     false,
		MiddleClickModifier:   "",
		ShowNotifications:     false,
		TranslateCancelHotkey: "Ctrl+Shift+Escape",
	}
}

// validate clamps out-of-range values back to defaults. Bad configuration
// recovers locally rather than failing startup.
func (s *Settings) validate() {
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = 100
	}
	if s.AIInputSpeed <= 0 {
		s.AIInputSpeed = 20
	}
	if s.AITemperature < 0 || s.AITemperature > 2 {
		s.AITemperature = 0.3
	}
	switch s.AINewlineMode {
	case "enter", "shift_enter", "unicode", "auto":
	default:
		s.AINewlineMode = "auto"
	}
	switch s.AIOutputMode {
	case "stream", "paste":
	default:
		s.AIOutputMode = "stream"
	}
	switch s.AppFilterMode {
	case "allow", "deny":
	default:
		s.AppFilterMode = "deny"
	}
}

// Store guards the settings file. Snapshot hands out copies; Update persists
// and notifies subscribers.
type Store struct {
	path string

	mu      sync.RWMutex
	current Settings

	onChange []func(Settings)
}

// NewStore loads (or creates) the settings file under dataDir. An
// unreadable or unparseable file falls back to defaults.
func NewStore(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, FileName)
	st := &Store{path: path}

	s := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run; persist the defaults.
		if err := st.write(*s); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := json.Unmarshal(data, s); err != nil {
			// Corrupt file: keep defaults, overwrite on next save.
			s = Default()
		}
	}
	s.validate()
	st.current = *s
	return st, nil
}

// Snapshot returns a copy of the current settings. Slices are cloned so the
// caller can hold the snapshot across writes.
func (st *Store) Snapshot() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return cloneSettings(st.current)
}

// Update applies fn to the settings under the write lock, persists the
// result, and notifies subscribers with the new snapshot.
func (st *Store) Update(fn func(*Settings)) error {
	st.mu.Lock()
	next := cloneSettings(st.current)
	fn(&next)
	next.validate()
	if err := st.write(next); err != nil {
		st.mu.Unlock()
		return err
	}
	st.current = next
	subs := st.onChange
	snapshot := cloneSettings(next)
	st.mu.Unlock()

	for _, sub := range subs {
		sub(cloneSettings(snapshot))
	}
	return nil
}

// OnChange registers a subscriber called after every successful Update.
// Registration is not safe concurrently with Update; wire subscribers during
// startup.
func (st *Store) OnChange(fn func(Settings)) {
	st.onChange = append(st.onChange, fn)
}

func (st *Store) write(s Settings) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func cloneSettings(s Settings) Settings {
	out := s
	out.ImageDataPriorityApps = append([]string(nil), s.ImageDataPriorityApps...)
	out.AppFilterList = append([]string(nil), s.AppFilterList...)
	return out
}
