// Package hotkey listens for the global record shortcut (Ctrl+Shift+Space)
// and turns each press into a toggle intent on the bus.
package hotkey

import "dictum/bus"

type Hotkey interface {
	Register() error
	Unregister()
	// Presses delivers one value per completed shortcut press.
	Presses() <-chan struct{}
}

// Bind registers the shortcut and forwards every press as a toggle request.
// The returned stop function unregisters the shortcut and ends forwarding.
func Bind(b *bus.Bus, hk Hotkey) (func(), error) {
	if err := hk.Register(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-hk.Presses():
				b.Emit(bus.ToggleRequested, nil)
			}
		}
	}()
	return func() {
		close(done)
		hk.Unregister()
	}, nil
}
