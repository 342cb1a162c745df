//go:build windows

package clip_helper

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOpenClipboard              = user32.NewProc("OpenClipboard")
	procCloseClipboard             = user32.NewProc("CloseClipboard")
	procEmptyClipboard             = user32.NewProc("EmptyClipboard")
	procGetClipboardData           = user32.NewProc("GetClipboardData")
	procSetClipboardData           = user32.NewProc("SetClipboardData")
	procIsClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	procRegisterClipboardFormatW   = user32.NewProc("RegisterClipboardFormatW")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalSize   = kernel32.NewProc("GlobalSize")
)

const (
	cfUnicodeText = 13
	cfDIB         = 8
	cfHDrop       = 15

	gmemMoveable = 0x0002
)

// Registered formats are process-wide and stable for the process lifetime.
var (
	registerOnce sync.Once
	cfPNG        uintptr
	cfHTML       uintptr
)

func registerFormats() {
	registerOnce.Do(func() {
		png, _ := windows.UTF16PtrFromString("PNG")
		html, _ := windows.UTF16PtrFromString("HTML Format")
		cfPNG, _, _ = procRegisterClipboardFormatW.Call(uintptr(unsafe.Pointer(png)))
		cfHTML, _, _ = procRegisterClipboardFormatW.Call(uintptr(unsafe.Pointer(html)))
	})
}

// clipMu serialises every clipboard transaction; Windows exposes one global
// clipboard and interleaved Open/Close pairs corrupt each other.
var clipMu sync.Mutex

// withClipboard runs fn between OpenClipboard and CloseClipboard on a locked
// OS thread. A busy clipboard is retried briefly before giving up with
// ErrBusy; longer backoff is the caller's job.
func withClipboard(fn func() error) error {
	clipMu.Lock()
	defer clipMu.Unlock()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	registerFormats()

	opened := false
	for i := 0; i < OpenRetryCount; i++ {
		if r, _, _ := procOpenClipboard.Call(0); r != 0 {
			opened = true
			break
		}
		time.Sleep(OpenRetryDelay)
	}
	if !opened {
		return ErrBusy
	}
	defer procCloseClipboard.Call()

	return fn()
}

func formatAvailable(format uintptr) bool {
	r, _, _ := procIsClipboardFormatAvailable.Call(format)
	return r != 0
}

// globalBytes copies the contents of the HGLOBAL behind a clipboard handle.
func globalBytes(h uintptr) []byte {
	size, _, _ := procGlobalSize.Call(h)
	if size == 0 {
		return nil
	}
	ptr, _, _ := procGlobalLock.Call(h)
	if ptr == 0 {
		return nil
	}
	defer procGlobalUnlock.Call(h)

	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	return out
}

// setGlobalData allocates a moveable HGLOBAL, fills it with data and hands it
// to the clipboard. Ownership passes to the OS on success.
func setGlobalData(format uintptr, data []byte) error {
	h, _, _ := procGlobalAlloc.Call(gmemMoveable, uintptr(len(data)))
	if h == 0 {
		return fmt.Errorf("GlobalAlloc of %d bytes failed", len(data))
	}
	ptr, _, _ := procGlobalLock.Call(h)
	if ptr == 0 {
		procGlobalFree.Call(h)
		return fmt.Errorf("GlobalLock failed")
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), len(data)), data)
	procGlobalUnlock.Call(h)

	if r, _, err := procSetClipboardData.Call(format, h); r == 0 {
		procGlobalFree.Call(h)
		return fmt.Errorf("SetClipboardData(format=%d): %v", format, err)
	}
	return nil
}

// Read returns the current OS clipboard payload, preferring file drops, then
// images (registered PNG over CF_DIB), then text. Whitespace-only text reads
// as absent: (nil, nil).
func Read() (*Payload, error) {
	var p *Payload
	err := withClipboard(func() error {
		switch {
		case formatAvailable(cfHDrop):
			h, _, _ := procGetClipboardData.Call(cfHDrop)
			if h == 0 {
				return nil
			}
			paths, err := DecodeDropFiles(globalBytes(h))
			if err != nil || len(paths) == 0 {
				return err
			}
			p = &Payload{Kind: KindFiles, Files: paths}

		case formatAvailable(cfPNG):
			h, _, _ := procGetClipboardData.Call(cfPNG)
			if h == 0 {
				return nil
			}
			img, err := DecodeImage(globalBytes(h))
			if err != nil {
				return err
			}
			p = &Payload{Kind: KindImage, PNG: img.PNG}

		case formatAvailable(cfDIB):
			h, _, _ := procGetClipboardData.Call(cfDIB)
			if h == 0 {
				return nil
			}
			img, err := DecodeDIB(globalBytes(h))
			if err != nil {
				return err
			}
			p = &Payload{Kind: KindImage, PNG: img.PNG}

		case formatAvailable(cfUnicodeText):
			h, _, _ := procGetClipboardData.Call(cfUnicodeText)
			if h == 0 {
				return nil
			}
			text := decodeUTF16Z(globalBytes(h))
			if strings.TrimSpace(text) == "" {
				return nil
			}
			p = &Payload{Kind: KindText, Text: text}
			if formatAvailable(cfHTML) {
				if hh, _, _ := procGetClipboardData.Call(cfHTML); hh != 0 {
					if frag, ok := ParseCFHTML(globalBytes(hh)); ok {
						p.HTML = frag
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// WriteText places UTF-16 text on the clipboard; when html is non-empty the
// CF_HTML representation is registered alongside it.
func WriteText(text, html string) error {
	return withClipboard(func() error {
		procEmptyClipboard.Call()
		if err := setGlobalData(cfUnicodeText, encodeUTF16Z(text)); err != nil {
			return err
		}
		if html != "" {
			if err := setGlobalData(cfHTML, BuildCFHTML(html)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteImage writes CF_DIB (premultiplied BGRA, top-down) and the registered
// PNG format. When pngPath is non-empty a CF_HDROP pointing at the on-disk
// PNG is added so file managers paste a file instead of pixels.
func WriteImage(img *DIBImage, pngPath string) error {
	return withClipboard(func() error {
		procEmptyClipboard.Call()
		if err := setGlobalData(cfDIB, img.EncodeDIB()); err != nil {
			return err
		}
		if err := setGlobalData(cfPNG, img.PNG); err != nil {
			return err
		}
		if pngPath != "" {
			if err := setGlobalData(cfHDrop, EncodeDropFiles([]string{pngPath})); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteFiles writes a CF_HDROP file list.
func WriteFiles(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("empty file list")
	}
	return withClipboard(func() error {
		procEmptyClipboard.Call()
		return setGlobalData(cfHDrop, EncodeDropFiles(paths))
	})
}

func decodeUTF16Z(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := uint16(b[i]) | uint16(b[i+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

func encodeUTF16Z(s string) []byte {
	units, _ := syscall.UTF16FromString(s)
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}
	return out
}
