// Package machine owns the recording lifecycle state and enforces which
// transitions are legal. It is the only place the state value is mutated;
// every side effect of entering a state is expressed as bus emissions, never
// as a call into UI or audio code.
package machine

import (
	"sync"
	"time"

	"dictum/bus"
	"dictum/log"
)

// State is one phase of the recording lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateRecording    State = "recording"
	StatePaused       State = "paused"
	StateStopping     State = "stopping"
	StateProcessing   State = "processing"
	StateCancelling   State = "cancelling"
	StateError        State = "error"
)

// transitions maps each state to the set of states it may legally enter.
var transitions = map[State][]State{
	StateIdle:         {StateInitializing},
	StateInitializing: {StateRecording, StateIdle, StateError},
	StateRecording:    {StatePaused, StateStopping, StateCancelling, StateError},
	StatePaused:       {StateRecording, StateStopping, StateCancelling, StateError},
	StateStopping:     {StateProcessing, StateIdle, StateError},
	StateProcessing:   {StateIdle, StateError},
	StateCancelling:   {StateIdle, StateError},
	StateError:        {StateIdle},
}

// ErrorGrace is how long the machine stays in the error state before
// automatically returning to idle, so the user can read the message.
const ErrorGrace = 3 * time.Second

// Machine is the sole owner of the recording state.
type Machine struct {
	bus *bus.Bus

	mu         sync.Mutex
	state      State
	errorGrace time.Duration
	recovery   *time.Timer
}

func New(b *bus.Bus) *Machine {
	return NewWithGrace(b, ErrorGrace)
}

// NewWithGrace builds a machine with a custom error recovery delay.
func NewWithGrace(b *bus.Bus, grace time.Duration) *Machine {
	return &Machine{bus: b, state: StateIdle, errorGrace: grace}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CanTransitionTo reports whether target is legal from the current state.
func (m *Machine) CanTransitionTo(target State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return allowed(m.state, target)
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo moves to target if the transition table allows it. An illegal
// request returns false with no mutation and no emissions. On success the
// generic RecordingStateChanged event fires first, then the target state's
// entry emissions. A panic in an entry handler is logged; the state change
// itself has already completed by then.
func (m *Machine) TransitionTo(target State, data map[string]any) bool {
	m.mu.Lock()
	if !allowed(m.state, target) {
		m.mu.Unlock()
		return false
	}
	old := m.state
	m.state = target

	// Any accepted transition supersedes a pending error recovery, so a
	// recording started during the grace period cannot be yanked back to
	// idle by the stale timer.
	if m.recovery != nil {
		m.recovery.Stop()
		m.recovery = nil
	}
	if target == StateError {
		m.recovery = time.AfterFunc(m.errorGrace, func() {
			m.TransitionTo(StateIdle, nil)
		})
	}
	m.mu.Unlock()

	log.Event("state_transition", string(old)+" -> "+string(target))
	m.bus.Emit(bus.RecordingStateChanged, bus.StateChange{
		Old:  string(old),
		New:  string(target),
		Data: data,
	})
	m.runEntry(target, data)
	return true
}

// CanRecord reports whether a new recording may start.
func (m *Machine) CanRecord() bool { return m.State() == StateIdle }

// CanInvokeStop reports whether a stop request is acceptable. It stays true
// through stopping and cancelling so that repeated stop requests are safe.
func (m *Machine) CanInvokeStop() bool {
	switch m.State() {
	case StateRecording, StatePaused, StateStopping, StateCancelling:
		return true
	}
	return false
}

func (m *Machine) CanPause() bool { return m.State() == StateRecording }

func (m *Machine) CanResume() bool { return m.State() == StatePaused }

func (m *Machine) CanCancel() bool {
	s := m.State()
	return s == StateRecording || s == StatePaused
}

func (m *Machine) runEntry(target State, data map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("state entry handler panic: state=%s err=%v", target, r)
		}
	}()
	m.enter(target, data)
}

// enter performs the entry emissions for target. Nothing here touches audio
// or UI directly.
func (m *Machine) enter(target State, data map[string]any) {
	switch target {
	case StateInitializing:
		m.status("Initializing…", bus.SeverityInfo)

	case StateRecording:
		if resumed, _ := data["resumed"].(bool); resumed {
			m.bus.Emit(bus.RecordingResumed, nil)
		} else {
			m.bus.Emit(bus.RecordingStarted, nil)
		}
		if levels, ok := data["levels"].(<-chan float64); ok {
			m.bus.Emit(bus.VisualizationStart, bus.Visualization{Levels: levels})
		}
		m.status("Recording", bus.SeverityInfo)

	case StatePaused:
		m.bus.Emit(bus.RecordingPaused, nil)
		m.status("Paused", bus.SeverityInfo)

	case StateStopping:
		m.bus.Emit(bus.RecordingStopped, nil)
		m.bus.Emit(bus.VisualizationStop, nil)
		m.status("Stopping…", bus.SeverityInfo)

	case StateProcessing:
		m.status("Transcribing…", bus.SeverityInfo)

	case StateCancelling:
		m.bus.Emit(bus.RecordingCancelled, nil)
		m.bus.Emit(bus.VisualizationStop, nil)
		m.status("Cancelling…", bus.SeverityInfo)

	case StateError:
		msg, _ := data["error"].(string)
		if msg == "" {
			msg = "recording failed"
		}
		m.bus.Emit(bus.RecordingFailed, bus.ErrorInfo{Message: msg})
		m.bus.Emit(bus.VisualizationStop, nil)
		m.status(msg, bus.SeverityError)

	case StateIdle:
		m.bus.Emit(bus.ControlsReset, nil)
		m.status("Ready", bus.SeverityInfo)
	}
}

func (m *Machine) status(msg, severity string) {
	m.bus.Emit(bus.StatusUpdated, bus.Status{Message: msg, Severity: severity})
}
