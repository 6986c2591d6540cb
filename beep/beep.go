// Package beep plays short audible cues so recording can be driven by the
// global shortcut without looking at the terminal.
package beep

import "dictum/bus"

const sampleRate = 44100

var disabled bool

func Disable() { disabled = true }

// Bind plays a cue on every lifecycle edge a user needs to hear: recording
// started, stopped or cancelled, and failures.
func Bind(b *bus.Bus) {
	Init()
	b.Subscribe(bus.RecordingStarted, func(any) { PlayStart() })
	b.Subscribe(bus.RecordingResumed, func(any) { PlayStart() })
	b.Subscribe(bus.RecordingStopped, func(any) { PlayEnd() })
	b.Subscribe(bus.RecordingCancelled, func(any) { PlayEnd() })
	b.Subscribe(bus.RecordingFailed, func(any) { PlayError() })
}
