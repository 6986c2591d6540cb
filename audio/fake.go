package audio

import "sync"

// FakeDevice is a scriptable capture device for tests. Chunks are pushed by
// the test via Emit rather than pulled from hardware, and every lifecycle
// call is recorded so tests can assert ordering.
type FakeDevice struct {
	mu      sync.Mutex
	cb      DataCallback
	started bool
	Calls   []string

	StartErr error
}

func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

func (f *FakeDevice) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "start")
	if f.StartErr != nil {
		return f.StartErr
	}
	f.started = true
	return nil
}

func (f *FakeDevice) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "stop")
	f.started = false
}

func (f *FakeDevice) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "close")
}

func (f *FakeDevice) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "flush")
}

func (f *FakeDevice) SetCallback(cb DataCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cb = cb
}

func (f *FakeDevice) ClearCallback() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cb = nil
}

func (f *FakeDevice) DeviceName() string { return "fake" }

// Emit delivers one PCM chunk to the registered callback, as the hardware
// period timer would.
func (f *FakeDevice) Emit(pcm []byte) {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb != nil {
		cb(pcm, uint32(len(pcm)/2))
	}
}

// CallsSnapshot returns a copy of the recorded lifecycle calls.
func (f *FakeDevice) CallsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}
