//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	// golang.design/x/hotkey needs the main OS thread on macOS and Windows.
	runtime.LockOSThread()
}

func main() {
	mainthread.Init(run)
}
