// Package audio abstracts microphone capture behind a small device interface
// with one backend per platform and a fake for tests. Capture delivers raw
// PCM16 little-endian frames to a callback; everything above this package
// treats audio as opaque bytes.
package audio

import "errors"

// ErrPermissionDenied reports that the capture device could not be acquired.
// Callers treat this as a user decision, not a fault.
var ErrPermissionDenied = errors.New("microphone access denied")

// DataCallback receives one buffered period of PCM16 audio.
type DataCallback func(pcm []byte, frames uint32)

// CaptureConfig describes how the microphone should be captured.
type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
	// PeriodMillis is the buffering interval between callback deliveries.
	PeriodMillis uint32
}

// DeviceInfo identifies one capture device.
type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Context enumerates devices and opens capture sessions.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

// CaptureDevice is one open microphone handle.
type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	// Flush requests immediate delivery of any buffered frames. Backends
	// that deliver continuously treat it as a no-op.
	Flush()
	DeviceName() string
}
