package machine

import (
	"testing"
	"time"

	"dictum/bus"
)

var allStates = []State{
	StateIdle, StateInitializing, StateRecording, StatePaused,
	StateStopping, StateProcessing, StateCancelling, StateError,
}

// coreEvents are every event name the machine may emit.
var coreEvents = []string{
	bus.RecordingStateChanged, bus.RecordingStarted, bus.RecordingStopped,
	bus.RecordingPaused, bus.RecordingResumed, bus.RecordingCancelled,
	bus.RecordingFailed, bus.VisualizationStart, bus.VisualizationStop,
	bus.StatusUpdated, bus.ControlsReset,
}

func newTestMachine() (*Machine, *bus.Bus) {
	b := bus.New()
	m := New(b)
	m.errorGrace = 10 * time.Millisecond
	return m, b
}

func forceState(m *Machine, s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func TestIllegalTransitionsRejectedSilently(t *testing.T) {
	for _, from := range allStates {
		for _, to := range allStates {
			if allowed(from, to) {
				continue
			}
			m, b := newTestMachine()
			forceState(m, from)
			emitted := 0
			for _, name := range coreEvents {
				b.Subscribe(name, func(any) { emitted++ })
			}

			if m.TransitionTo(to, nil) {
				t.Errorf("%s -> %s: expected rejection", from, to)
			}
			if got := m.State(); got != from {
				t.Errorf("%s -> %s: state mutated to %s", from, to, got)
			}
			if emitted != 0 {
				t.Errorf("%s -> %s: %d events emitted on rejection", from, to, emitted)
			}
		}
	}
}

func TestLegalTransitionsEmitStateChangedOnce(t *testing.T) {
	for from, targets := range transitions {
		for _, to := range targets {
			m, b := newTestMachine()
			forceState(m, from)
			var changes []bus.StateChange
			b.Subscribe(bus.RecordingStateChanged, func(p any) {
				changes = append(changes, p.(bus.StateChange))
			})

			if !m.TransitionTo(to, nil) {
				t.Fatalf("%s -> %s: expected acceptance", from, to)
			}
			// Error entry schedules an automatic follow-up transition;
			// only the first change belongs to this call.
			if len(changes) == 0 {
				t.Fatalf("%s -> %s: no state change event", from, to)
			}
			c := changes[0]
			if c.Old != string(from) || c.New != string(to) {
				t.Errorf("%s -> %s: event carried %s -> %s", from, to, c.Old, c.New)
			}
			if got := m.State(); to != StateError && got != to {
				t.Errorf("%s -> %s: State() = %s", from, to, got)
			}
		}
	}
}

func TestStateChangedPrecedesEntryEmissions(t *testing.T) {
	m, b := newTestMachine()
	forceState(m, StateInitializing)

	var order []string
	b.Subscribe(bus.RecordingStateChanged, func(any) { order = append(order, "changed") })
	b.Subscribe(bus.RecordingStarted, func(any) { order = append(order, "started") })
	b.Subscribe(bus.StatusUpdated, func(any) { order = append(order, "status") })

	m.TransitionTo(StateRecording, nil)

	if len(order) < 2 || order[0] != "changed" {
		t.Errorf("order = %v, want state change first", order)
	}
}

func TestStateObservableFromHandler(t *testing.T) {
	m, b := newTestMachine()
	var seen State
	b.Subscribe(bus.RecordingStateChanged, func(any) { seen = m.State() })

	m.TransitionTo(StateInitializing, nil)

	if seen != StateInitializing {
		t.Errorf("handler observed %s, want %s", seen, StateInitializing)
	}
}

func TestRecordingEntryForwardsLevels(t *testing.T) {
	m, b := newTestMachine()
	forceState(m, StateInitializing)

	levels := make(chan float64, 1)
	var got bus.Visualization
	b.Subscribe(bus.VisualizationStart, func(p any) { got = p.(bus.Visualization) })

	m.TransitionTo(StateRecording, map[string]any{"levels": (<-chan float64)(levels)})

	if got.Levels == nil {
		t.Fatal("visualization start did not carry the level stream")
	}
	levels <- 0.5
	if v := <-got.Levels; v != 0.5 {
		t.Errorf("level = %v, want 0.5", v)
	}
}

func TestResumeEmitsResumedNotStarted(t *testing.T) {
	m, b := newTestMachine()
	forceState(m, StatePaused)

	started, resumed := 0, 0
	b.Subscribe(bus.RecordingStarted, func(any) { started++ })
	b.Subscribe(bus.RecordingResumed, func(any) { resumed++ })

	m.TransitionTo(StateRecording, map[string]any{"resumed": true})

	if started != 0 || resumed != 1 {
		t.Errorf("started=%d resumed=%d, want 0/1", started, resumed)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		state                               State
		record, stop, pause, resume, cancel bool
	}{
		{StateIdle, true, false, false, false, false},
		{StateInitializing, false, false, false, false, false},
		{StateRecording, false, true, true, false, true},
		{StatePaused, false, true, false, true, true},
		{StateStopping, false, true, false, false, false},
		{StateProcessing, false, false, false, false, false},
		{StateCancelling, false, true, false, false, false},
		{StateError, false, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			m, _ := newTestMachine()
			forceState(m, tt.state)
			if got := m.CanRecord(); got != tt.record {
				t.Errorf("CanRecord() = %v, want %v", got, tt.record)
			}
			if got := m.CanInvokeStop(); got != tt.stop {
				t.Errorf("CanInvokeStop() = %v, want %v", got, tt.stop)
			}
			if got := m.CanPause(); got != tt.pause {
				t.Errorf("CanPause() = %v, want %v", got, tt.pause)
			}
			if got := m.CanResume(); got != tt.resume {
				t.Errorf("CanResume() = %v, want %v", got, tt.resume)
			}
			if got := m.CanCancel(); got != tt.cancel {
				t.Errorf("CanCancel() = %v, want %v", got, tt.cancel)
			}
		})
	}
}

func TestErrorAutoRecoversToIdle(t *testing.T) {
	m, b := newTestMachine()
	forceState(m, StateRecording)

	var failMsg string
	b.Subscribe(bus.RecordingFailed, func(p any) { failMsg = p.(bus.ErrorInfo).Message })

	m.TransitionTo(StateError, map[string]any{"error": "device exploded"})

	if failMsg != "device exploded" {
		t.Errorf("error message = %q", failMsg)
	}
	deadline := time.Now().Add(time.Second)
	for m.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, never recovered to idle", m.State())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPendingRecoveryCancelledByNewTransition(t *testing.T) {
	m, _ := newTestMachine()
	m.errorGrace = 20 * time.Millisecond
	forceState(m, StateRecording)

	m.TransitionTo(StateError, nil)
	// User retries before the grace period elapses.
	if !m.TransitionTo(StateIdle, nil) {
		t.Fatal("error -> idle rejected")
	}
	if !m.TransitionTo(StateInitializing, nil) {
		t.Fatal("idle -> initializing rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if got := m.State(); got != StateInitializing {
		t.Errorf("stale recovery timer fired: state = %s", got)
	}
}

func TestPanickingSubscriberDoesNotBreakTransition(t *testing.T) {
	m, b := newTestMachine()
	b.Subscribe(bus.RecordingStateChanged, func(any) { panic("subscriber bug") })

	if !m.TransitionTo(StateInitializing, nil) {
		t.Fatal("transition rejected")
	}
	if got := m.State(); got != StateInitializing {
		t.Errorf("state = %s, want initializing", got)
	}
}
