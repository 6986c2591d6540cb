package hotkey

type FakeHotkey struct {
	presses    chan struct{}
	Registered bool
	RegErr     error
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{presses: make(chan struct{}, 1)}
}

func (f *FakeHotkey) Register() error {
	if f.RegErr != nil {
		return f.RegErr
	}
	f.Registered = true
	return nil
}

func (f *FakeHotkey) Unregister()              { f.Registered = false }
func (f *FakeHotkey) Presses() <-chan struct{} { return f.presses }

func (f *FakeHotkey) SimPress() { f.presses <- struct{}{} }
