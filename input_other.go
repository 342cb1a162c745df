//go:build !windows

package main

import (
	"github.com/go-vgo/robotgo"
)

func ctrlPhysicallyHeld() bool { return false }

func synthesizeCtrlV() {
	robotgo.KeyTap("v", "ctrl")
}

func typeRune(r rune) {
	robotgo.TypeStr(string(r))
}

func typeEnter(shift bool) {
	if shift {
		robotgo.KeyTap("enter", "shift")
		return
	}
	robotgo.KeyTap("enter")
}
