package hotkey

import (
	"errors"
	"testing"
	"time"

	"dictum/bus"
)

func TestBindForwardsPresses(t *testing.T) {
	b := bus.New()
	toggles := make(chan struct{}, 4)
	b.Subscribe(bus.ToggleRequested, func(any) { toggles <- struct{}{} })

	fk := NewFake()
	stop, err := Bind(b, fk)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if !fk.Registered {
		t.Error("hotkey not registered")
	}

	for i := 0; i < 2; i++ {
		fk.SimPress()
		select {
		case <-toggles:
		case <-time.After(time.Second):
			t.Fatalf("press %d not forwarded as toggle request", i)
		}
	}

	stop()
	if fk.Registered {
		t.Error("hotkey still registered after stop")
	}
}

func TestBindRegisterFailure(t *testing.T) {
	b := bus.New()
	fk := NewFake()
	fk.RegErr = errors.New("no permission")

	if _, err := Bind(b, fk); err == nil {
		t.Fatal("Bind() error = nil, want registration failure")
	}
}
