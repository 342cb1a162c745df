//go:build windows

package hook

import (
	"fmt"
	"log/slog"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx  = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHook = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx    = user32.NewProc("CallNextHookEx")
	procGetMessage        = user32.NewProc("GetMessageW")
	procGetAsyncKeyState  = user32.NewProc("GetAsyncKeyState")
	procPostThreadMsg     = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmRButtonDown = 0x0204
	wmMButtonDown = 0x0207
	wmMouseWheel  = 0x020A
	wmQuit        = 0x0012

	llkhfInjected = 0x10
	llmhfInjected = 0x01

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C
)

type kbdllHookStruct struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type point struct {
	X, Y int32
}

type msllHookStruct struct {
	Pt        point
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

func keyDown(vk int) bool {
	st, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return st&0x8000 != 0
}

func liveMods() Mods {
	return Mods{
		Ctrl:  keyDown(vkControl),
		Shift: keyDown(vkShift),
		Alt:   keyDown(vkMenu),
		Win:   keyDown(vkLWin) || keyDown(vkRWin),
	}
}

// Hook owns the low-level keyboard and mouse hooks. Both callbacks run on
// one dedicated OS thread; they only consult the engine and return, staying
// well under the OS hook deadline.
type Hook struct {
	engine   *Engine
	threadID uint32
	started  chan error
	done     chan struct{}
}

// Install starts the hook thread and blocks until the hooks are in place.
func Install(engine *Engine) (*Hook, error) {
	h := &Hook{
		engine:  engine,
		started: make(chan error, 1),
		done:    make(chan struct{}),
	}
	go h.run()
	if err := <-h.started; err != nil {
		return nil, err
	}
	return h, nil
}

// Uninstall asks the hook thread to exit and waits for it.
func (h *Hook) Uninstall() {
	procPostThreadMsg.Call(uintptr(h.threadID), wmQuit, 0, 0)
	<-h.done
}

func (h *Hook) run() {
	// Hooks and their message loop must live on one locked thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)

	h.threadID = windows.GetCurrentThreadId()

	// Keys we swallowed on the way down get their key-up swallowed too,
	// so the target app never sees half a press.
	swallowedUp := make(map[uint32]bool)

	kbCallback := syscall.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if nCode != 0 {
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		}
		k := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		if k.Flags&llkhfInjected != 0 {
			// Our own synthesized events pass through untouched.
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		}

		vk := uint16(k.VkCode)
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			if h.engine.KeyDown(vk, liveMods()) {
				swallowedUp[k.VkCode] = true
				return 1
			}
		case wmKeyUp, wmSysKeyUp:
			up := h.engine.KeyUp(vk, liveMods())
			if swallowedUp[k.VkCode] {
				delete(swallowedUp, k.VkCode)
				return 1
			}
			if up {
				return 1
			}
		}

		ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return ret
	})

	mouseCallback := syscall.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if nCode != 0 {
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		}
		m := (*msllHookStruct)(unsafe.Pointer(lParam))
		if m.Flags&llmhfInjected == 0 {
			switch wParam {
			case wmMButtonDown:
				if h.engine.MiddleClick(liveMods()) {
					return 1
				}
			case wmMouseWheel:
				delta := int(int16(m.MouseData >> 16))
				if h.engine.Wheel(delta) {
					return 1
				}
			case wmLButtonDown, wmRButtonDown:
				h.engine.Click(m.Pt.X, m.Pt.Y)
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return ret
	})

	kbHook, _, err := procSetWindowsHookEx.Call(whKeyboardLL, kbCallback, 0, 0)
	if kbHook == 0 {
		h.started <- fmt.Errorf("failed to install keyboard hook: %w", err)
		return
	}
	mouseHook, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseCallback, 0, 0)
	if mouseHook == 0 {
		procUnhookWindowsHook.Call(kbHook)
		h.started <- fmt.Errorf("failed to install mouse hook: %w", err)
		return
	}
	h.started <- nil
	slog.Debug("low-level input hooks installed")

	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			break
		}
	}

	procUnhookWindowsHook.Call(kbHook)
	procUnhookWindowsHook.Call(mouseHook)
	slog.Debug("low-level input hooks removed")
}
