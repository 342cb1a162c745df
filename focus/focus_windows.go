//go:build windows

package focus

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procGetWindowThreadPID  = user32.NewProc("GetWindowThreadProcessId")
	procGetGUIThreadInfo    = user32.NewProc("GetGUIThreadInfo")
	procClientToScreen      = user32.NewProc("ClientToScreen")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procMonitorFromPoint    = user32.NewProc("MonitorFromPoint")
	procGetMonitorInfo      = user32.NewProc("GetMonitorInfoW")
	procGetWindowLongPtr    = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtr    = user32.NewProc("SetWindowLongPtrW")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
)

const (
	gwlExStyle       = ^uintptr(19) // -20
	wsExTopmost      = 0x00000008
	wsExToolWindow   = 0x00000080
	wsExNoActivate   = 0x08000000
	hwndTopmost      = ^uintptr(0) // -1
	swpNoSize        = 0x0001
	swpNoMove        = 0x0002
	swpNoActivate    = 0x0010
	monitorToNearest = 0x0002
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type point struct {
	X, Y int32
}

type guiThreadInfo struct {
	Size        uint32
	Flags       uint32
	Active      windows.Handle
	Focus       windows.Handle
	Capture     windows.Handle
	MenuOwner   windows.Handle
	MoveSize    windows.Handle
	Caret       windows.Handle
	CaretRect   rect
}

type monitorInfo struct {
	Size    uint32
	Monitor rect
	Work    rect
	Flags   uint32
}

func foregroundWindow() Handle {
	h, _, _ := procGetForegroundWindow.Call()
	return Handle(h)
}

func activateWindow(h Handle) {
	procSetForegroundWindow.Call(uintptr(h))
}

func windowPID(h Handle) uint32 {
	var pid uint32
	procGetWindowThreadPID.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	return pid
}

func windowThreadID(h Handle) uint32 {
	var pid uint32
	tid, _, _ := procGetWindowThreadPID.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	return uint32(tid)
}

func windowProcessName(h Handle) string {
	pid := windowPID(h)
	if pid == 0 {
		return ""
	}
	proc, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(proc)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(proc, 0, &buf[0], &size); err != nil {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}

func foregroundProcessName() string {
	return windowProcessName(foregroundWindow())
}

// makeToolWindow keeps the panel out of the taskbar, prevents it from
// activating on click, and pins it topmost.
func makeToolWindow(h Handle) error {
	style, _, _ := procGetWindowLongPtr.Call(uintptr(h), gwlExStyle)
	style |= wsExToolWindow | wsExNoActivate | wsExTopmost
	if ret, _, err := procSetWindowLongPtr.Call(uintptr(h), gwlExStyle, style); ret == 0 {
		if err != nil && err != windows.ERROR_SUCCESS {
			return fmt.Errorf("failed to set tool-window style: %w", err)
		}
	}
	ret, _, err := procSetWindowPos.Call(uintptr(h), hwndTopmost, 0, 0, 0, 0,
		swpNoMove|swpNoSize|swpNoActivate)
	if ret == 0 {
		return fmt.Errorf("failed to raise panel topmost: %w", err)
	}
	return nil
}

// caretRect reads the caret rectangle of the foreground window's GUI
// thread, in screen coordinates. ok is false when no caret is exposed.
func caretRect() (Rect, bool) {
	fg := foregroundWindow()
	if fg == 0 {
		return Rect{}, false
	}

	var info guiThreadInfo
	info.Size = uint32(unsafe.Sizeof(info))
	ret, _, _ := procGetGUIThreadInfo.Call(uintptr(windowThreadID(fg)), uintptr(unsafe.Pointer(&info)))
	if ret == 0 || info.Caret == 0 {
		return Rect{}, false
	}
	r := info.CaretRect
	if r.Right <= r.Left || r.Bottom <= r.Top {
		return Rect{}, false
	}

	// The caret rect is in client coordinates of the caret window.
	topLeft := point{X: r.Left, Y: r.Top}
	procClientToScreen.Call(uintptr(info.Caret), uintptr(unsafe.Pointer(&topLeft)))
	return Rect{
		X: int(topLeft.X),
		Y: int(topLeft.Y),
		W: int(r.Right - r.Left),
		H: int(r.Bottom - r.Top),
	}, true
}

func cursorPos() (int, int) {
	var pt point
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	return int(pt.X), int(pt.Y)
}

// workArea returns the working area of the monitor containing (x, y).
func workArea(x, y int) Rect {
	pt := point{X: int32(x), Y: int32(y)}
	mon, _, _ := procMonitorFromPoint.Call(uintptr(*(*int64)(unsafe.Pointer(&pt))), monitorToNearest)

	var info monitorInfo
	info.Size = uint32(unsafe.Sizeof(info))
	ret, _, _ := procGetMonitorInfo.Call(mon, uintptr(unsafe.Pointer(&info)))
	if mon == 0 || ret == 0 {
		// Headless fallback: a conventional primary monitor.
		return Rect{X: 0, Y: 0, W: 1920, H: 1080}
	}
	w := info.Work
	return Rect{
		X: int(w.Left),
		Y: int(w.Top),
		W: int(w.Right - w.Left),
		H: int(w.Bottom - w.Top),
	}
}
