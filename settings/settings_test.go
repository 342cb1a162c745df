package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewStoreCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	s := st.Snapshot()
	if s.HistoryLimit != 100 || !s.ClipboardMonitor || s.ToggleShortcut != "Win+V" {
		t.Fatalf("unexpected defaults: %#v", s)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("settings file not written on first run: %v", err)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := `{"history_limit": 42, "toggle_shortcut": "Ctrl+Shift+V"}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s := st.Snapshot()
	if s.HistoryLimit != 42 {
		t.Fatalf("file value lost: limit=%d", s.HistoryLimit)
	}
	if s.ToggleShortcut != "Ctrl+Shift+V" {
		t.Fatalf("file value lost: toggle=%q", s.ToggleShortcut)
	}
	// Untouched options keep their defaults.
	if s.AIOutputMode != "stream" || s.PreviewShortcut != "Ctrl+`" {
		t.Fatalf("defaults clobbered: %#v", s)
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore must recover from a corrupt file: %v", err)
	}
	if got := st.Snapshot().HistoryLimit; got != 100 {
		t.Fatalf("expected default limit, got %d", got)
	}
}

func TestValidateClampsBadValues(t *testing.T) {
	dir := t.TempDir()
	raw := `{"history_limit": -5, "ai_input_speed": 0, "ai_newline_mode": "bogus", "ai_output_mode": "x", "ai_temperature": 9.9}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s := st.Snapshot()
	if s.HistoryLimit != 100 || s.AIInputSpeed != 20 {
		t.Fatalf("bad values not clamped: %#v", s)
	}
	if s.AINewlineMode != "auto" || s.AIOutputMode != "stream" {
		t.Fatalf("bad modes not clamped: %#v", s)
	}
	if s.AITemperature != 0.3 {
		t.Fatalf("temperature not clamped: %v", s.AITemperature)
	}
}

func TestUpdatePersistsAndNotifies(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	var notified []int
	st.OnChange(func(s Settings) { notified = append(notified, s.HistoryLimit) })

	if err := st.Update(func(s *Settings) { s.HistoryLimit = 7 }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := st.Snapshot().HistoryLimit; got != 7 {
		t.Fatalf("snapshot not updated: %d", got)
	}
	if len(notified) != 1 || notified[0] != 7 {
		t.Fatalf("subscriber saw %v", notified)
	}

	// The change reaches disk with the documented JSON names.
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("settings file unparseable: %v", err)
	}
	if got, ok := onDisk["history_limit"].(float64); !ok || got != 7 {
		t.Fatalf("history_limit on disk = %v", onDisk["history_limit"])
	}
}

func TestSnapshotIsolatesSlices(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := st.Update(func(s *Settings) { s.AppFilterList = []string{"explorer.exe"} }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	snap := st.Snapshot()
	snap.AppFilterList[0] = "mutated"
	if got := st.Snapshot().AppFilterList[0]; got != "explorer.exe" {
		t.Fatalf("snapshot mutation leaked into store: %q", got)
	}
}
