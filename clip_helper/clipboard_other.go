//go:build !windows

package clip_helper

import (
	"fmt"
	"strings"
	"sync"

	"golang.design/x/clipboard"
)

var initOnce sync.Once
var initErr error

func ensureInit() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	if initErr != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", initErr)
	}
	return nil
}

// Read returns the current clipboard payload. File lists are a Windows-only
// concept; off Windows only image and text are observable.
func Read() (*Payload, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}

	if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
		decoded, err := DecodeImage(img)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: KindImage, PNG: decoded.PNG}, nil
	}

	if text := clipboard.Read(clipboard.FmtText); len(text) > 0 {
		s := string(text)
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return &Payload{Kind: KindText, Text: s}, nil
	}

	return nil, nil
}

// WriteText sets clipboard text. The html representation has no portable
// equivalent and is dropped.
func WriteText(text, html string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteImage sets clipboard image content from the PNG encoding. The pngPath
// file-drop variant is Windows-only and ignored here.
func WriteImage(img *DIBImage, pngPath string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, img.PNG)
	return nil
}

// WriteFiles is unsupported off Windows.
func WriteFiles(paths []string) error {
	return ErrUnsupported
}
