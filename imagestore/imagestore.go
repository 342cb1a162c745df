// Package imagestore keeps clipboard images as content-addressed PNG files
// under a single directory. The id of an image is the first 16 hex digits of
// the SHA-256 of its canonical PNG bytes, so identical pixels always land in
// the same file regardless of the source format.
package imagestore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quickclipboard/clip_helper"
)

// DirName is the image directory created under the app data dir.
const DirName = "clipboard_images"

// Manager is the single owner of the image directory. All methods are safe
// for concurrent use.
type Manager struct {
	dir string
	mu  sync.Mutex
}

// New creates the image directory if needed and returns a Manager for it.
func New(dataDir string) (*Manager, error) {
	dir := filepath.Join(dataDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the managed directory.
func (m *Manager) Dir() string { return m.dir }

// idFor derives the content-addressed id for canonical PNG bytes.
func idFor(pngBytes []byte) string {
	sum := sha256.Sum256(pngBytes)
	return hex.EncodeToString(sum[:8])
}

// Save decodes a data URL and stores its canonical PNG, returning the image
// id. Saving pixel-identical content twice returns the same id without
// touching the existing file.
func (m *Manager) Save(dataURL string) (string, error) {
	img, err := clip_helper.ParseImageDataURL(dataURL)
	if err != nil {
		return "", err
	}
	return m.SavePNG(img.PNG)
}

// SavePNG stores already-canonical PNG bytes. Used by the monitor, which gets
// PNG directly from the clipboard gateway.
func (m *Manager) SavePNG(pngBytes []byte) (string, error) {
	id := idFor(pngBytes)

	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil // dedup
	}
	if err := m.writeAtomic(path, pngBytes); err != nil {
		return "", err
	}
	return id, nil
}

// ReadPNG returns the stored PNG bytes for id.
func (m *Manager) ReadPNG(id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := os.ReadFile(m.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", id, err)
	}
	return data, nil
}

// DataURL returns the stored image as a data:image/png;base64 URL.
func (m *Manager) DataURL(id string) (string, error) {
	data, err := m.ReadPNG(id)
	if err != nil {
		return "", err
	}
	return clip_helper.PNGDataURL(data), nil
}

// Path returns the on-disk path for id. The file may or may not exist.
func (m *Manager) Path(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path(id)
}

// Delete removes the image file. A missing file is not an error.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.Remove(m.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", id, err)
	}
	return nil
}

// Copy duplicates an image under a fresh, unique id. Quick-texts promote
// history images through Copy so the promoted image survives history
// eviction and garbage collection.
func (m *Manager) Copy(id string) (string, error) {
	data, err := m.ReadPNG(id)
	if err != nil {
		return "", err
	}

	// Salt the hash with a UUID so the copy gets its own identity even
	// though the bytes are identical.
	h := sha256.New()
	h.Write(data)
	h.Write([]byte(uuid.NewString()))
	newID := hex.EncodeToString(h.Sum(nil)[:8])

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeAtomic(m.path(newID), data); err != nil {
		return "", err
	}
	return newID, nil
}

// GC deletes every stored PNG whose id is not in used.
func (m *Manager) GC(used map[string]struct{}) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list image directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".png") {
			continue
		}
		id := strings.TrimSuffix(name, ".png")
		if _, ok := used[id]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Unreferenced lists the ids of stored PNGs that are not in used, without
// deleting anything.
func (m *Manager) Unreferenced(used map[string]struct{}) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list image directory: %w", err)
	}

	var unused []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".png") {
			continue
		}
		id := strings.TrimSuffix(name, ".png")
		if _, ok := used[id]; !ok {
			unused = append(unused, id)
		}
	}
	return unused, nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+".png")
}

// writeAtomic writes via a temp file in the same directory plus rename, so a
// crash never leaves a half-written PNG behind a valid id.
func (m *Manager) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(m.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp image file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp image file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move image into place: %w", err)
	}
	return nil
}
