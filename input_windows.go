//go:build windows

package main

import (
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	inputUser32          = windows.NewLazySystemDLL("user32.dll")
	procSendInput        = inputUser32.NewProc("SendInput")
	procGetAsyncKeyState = inputUser32.NewProc("GetAsyncKeyState")
)

const (
	inputKeyboard = 1

	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004

	vkControl = 0x11
	vkShift   = 0x10
	vkReturn  = 0x0D
	vkV       = 0x56
)

type keyboardInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
	_         [8]byte // pad the union to MOUSEINPUT size
}

type keyInput struct {
	Type uint32
	_    uint32
	Ki   keyboardInput
}

func sendInputs(inputs []keyInput) {
	if len(inputs) == 0 {
		return
	}
	procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
}

func keyEvent(vk uint16, up bool) keyInput {
	var flags uint32
	if up {
		flags = keyeventfKeyUp
	}
	return keyInput{Type: inputKeyboard, Ki: keyboardInput{Vk: vk, Flags: flags}}
}

func unicodeEvent(unit uint16, up bool) keyInput {
	flags := uint32(keyeventfUnicode)
	if up {
		flags |= keyeventfKeyUp
	}
	return keyInput{Type: inputKeyboard, Ki: keyboardInput{Scan: unit, Flags: flags}}
}

func ctrlPhysicallyHeld() bool {
	st, _, _ := procGetAsyncKeyState.Call(uintptr(vkControl))
	return st&0x8000 != 0
}

// synthesizeCtrlV sends the paste chord to the foreground window. When the
// user is physically holding Ctrl (number shortcuts, preview chord), only V
// goes down and up so the modifier state stays consistent.
func synthesizeCtrlV() {
	if ctrlPhysicallyHeld() {
		sendInputs([]keyInput{keyEvent(vkV, false), keyEvent(vkV, true)})
		return
	}
	sendInputs([]keyInput{
		keyEvent(vkControl, false),
		keyEvent(vkV, false),
		keyEvent(vkV, true),
		keyEvent(vkControl, true),
	})
}

// typeRune emits one scalar through the Unicode keystroke path. Characters
// outside the BMP go out as a surrogate pair with a short gap between the
// two units.
func typeRune(r rune) {
	units := utf16.Encode([]rune{r})
	for i, u := range units {
		if i > 0 {
			time.Sleep(time.Millisecond)
		}
		sendInputs([]keyInput{unicodeEvent(u, false), unicodeEvent(u, true)})
	}
}

// typeEnter emits a newline keystroke, optionally as Shift+Enter.
func typeEnter(shift bool) {
	var seq []keyInput
	if shift {
		seq = append(seq, keyEvent(vkShift, false))
	}
	seq = append(seq, keyEvent(vkReturn, false), keyEvent(vkReturn, true))
	if shift {
		seq = append(seq, keyEvent(vkShift, true))
	}
	sendInputs(seq)
}
