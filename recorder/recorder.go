package recorder

import (
	"errors"
	"strings"
	"sync"
	"time"

	"dictum/audio"
	"dictum/bus"
	"dictum/log"
	"dictum/machine"
	"dictum/transcriber"
)

// DefaultTail is how long capture keeps running after a graceful stop is
// requested, so the last word is not clipped mid-syllable.
const DefaultTail = 250 * time.Millisecond

// Transcriber is the part of the transcription client the recorder uses.
type Transcriber interface {
	ValidateConfig() (transcriber.Config, error)
	Transcribe(clip []byte) (string, error)
	Warm()
}

// AcquireFunc opens a capture device for a single recording attempt.
type AcquireFunc func() (audio.CaptureDevice, error)

// Recorder drives the whole recording lifecycle: it listens for UI intents
// on the bus, moves the state machine through its phases, buffers captured
// audio and hands the finished clip to the transcriber.
type Recorder struct {
	bus     *bus.Bus
	machine *machine.Machine
	client  Transcriber
	acquire AcquireFunc

	sampleRate uint32
	channels   uint32

	now       func() time.Time
	tickEvery time.Duration
	tailDelay time.Duration
	sensorFor func(sampleRate uint32) (voiceSensor, error)

	mu        sync.Mutex
	device    audio.CaptureDevice
	sess      *session
	paused    bool
	tailTimer *time.Timer
	timerStop chan struct{}
}

func New(b *bus.Bus, m *machine.Machine, client Transcriber, acquire AcquireFunc, cfg audio.CaptureConfig) *Recorder {
	r := &Recorder{
		bus:        b,
		machine:    m,
		client:     client,
		acquire:    acquire,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		now:        time.Now,
		tickEvery:  time.Second,
		tailDelay:  DefaultTail,
		sensorFor:  newVoiceMonitor,
	}
	b.Subscribe(bus.ToggleRequested, func(any) { r.Toggle() })
	b.Subscribe(bus.PauseRequested, func(any) { r.Pause() })
	b.Subscribe(bus.ResumeRequested, func(any) { r.Resume() })
	b.Subscribe(bus.CancelRequested, func(any) { r.Cancel() })
	return r
}

// Toggle starts a recording when idle and stops the current one otherwise.
// While a stop is already in flight it does nothing, so mashing the hotkey
// is harmless.
func (r *Recorder) Toggle() {
	switch {
	case r.machine.CanRecord():
		r.start()
	case r.machine.CanInvokeStop():
		r.stop()
	}
}

func (r *Recorder) start() {
	if !r.machine.TransitionTo(machine.StateInitializing, nil) {
		return
	}

	cfg, err := r.client.ValidateConfig()
	if err != nil {
		// The client already announced which field is missing.
		r.bus.Emit(bus.SettingsPrompt, nil)
		r.machine.TransitionTo(machine.StateIdle, nil)
		return
	}
	go r.client.Warm()

	dev, err := r.acquire()
	if err != nil {
		if errors.Is(err, audio.ErrPermissionDenied) {
			// The user can grant access and try again; no error state.
			r.bus.Emit(bus.StatusUpdated, bus.Status{
				Message:  "microphone access denied",
				Severity: bus.SeverityWarn,
			})
			r.machine.TransitionTo(machine.StateIdle, nil)
			return
		}
		r.fail(err)
		return
	}

	sess := newSession(r.now(), transcriber.ProfileFor(cfg.Model).GracefulStop)
	if sensor, err := r.sensorFor(r.sampleRate); err != nil {
		log.Warnf("voice detection unavailable: %v", err)
	} else {
		sess.sensor = sensor
	}

	r.mu.Lock()
	r.device = dev
	r.sess = sess
	r.paused = false
	r.mu.Unlock()

	dev.SetCallback(r.onChunk)
	if err := dev.Start(); err != nil {
		r.fail(err)
		return
	}

	r.machine.TransitionTo(machine.StateRecording, map[string]any{
		"levels": (<-chan float64)(sess.levels),
	})
	r.startTimer()
}

func (r *Recorder) stop() {
	if !r.machine.TransitionTo(machine.StateStopping, nil) {
		return
	}
	r.stopTimer()
	// The timer disappears from the UI the moment stop is requested, not
	// when the device or the transcription round-trip finishes.
	r.bus.Emit(bus.TimerReset, nil)

	r.mu.Lock()
	sess := r.sess
	dev := r.device
	r.mu.Unlock()
	if dev == nil {
		r.cleanup()
		r.machine.TransitionTo(machine.StateIdle, nil)
		return
	}

	if sess != nil && sess.graceful {
		// Push out buffered frames now, keep capturing for the tail, then
		// shut the device down.
		dev.Flush()
		r.mu.Lock()
		r.tailTimer = time.AfterFunc(r.tailDelay, r.stopDevice)
		r.mu.Unlock()
		return
	}
	r.stopDevice()
}

func (r *Recorder) stopDevice() {
	r.mu.Lock()
	dev := r.device
	r.mu.Unlock()
	if dev != nil {
		dev.Stop()
	}
	// Finalization transcribes over the network; keep it off the caller's
	// goroutine so a stop issued from the UI event loop returns at once.
	go r.onDeviceStopped()
}

// onDeviceStopped runs once capture has ended, for both the stop and the
// cancel path.
func (r *Recorder) onDeviceStopped() {
	r.mu.Lock()
	sess := r.sess
	r.mu.Unlock()
	if sess == nil {
		return
	}

	if sess.cancelRequested || r.machine.State() == machine.StateCancelling {
		r.cleanup()
		r.machine.TransitionTo(machine.StateIdle, nil)
		return
	}

	if !r.machine.TransitionTo(machine.StateProcessing, nil) {
		r.cleanup()
		return
	}

	clip := audio.WAVClip(sess.pcm(), r.sampleRate, r.channels)
	text, err := r.client.Transcribe(clip)
	if err != nil {
		// The client already emitted the request-error event.
		log.Errorf("transcription failed: %v", err)
	} else {
		r.bus.Emit(bus.TranscriptReady, bus.Transcript{Text: text})
	}

	r.cleanup()
	r.machine.TransitionTo(machine.StateIdle, nil)
	if err != nil {
		// Entering idle announced "Ready"; put the failure back on top so
		// the user actually sees it.
		r.bus.Emit(bus.StatusUpdated, bus.Status{
			Message:  err.Error(),
			Severity: bus.SeverityError,
		})
	}
}

// Pause freezes the timer and stops buffering, but keeps the device open.
func (r *Recorder) Pause() {
	if !r.machine.CanPause() {
		return
	}
	r.stopTimer()

	r.mu.Lock()
	sess := r.sess
	if sess != nil {
		sess.display = formatElapsed(r.now().Sub(sess.start))
	}
	r.paused = true
	r.mu.Unlock()

	if !r.machine.TransitionTo(machine.StatePaused, nil) {
		return
	}
	if sess != nil {
		r.bus.Emit(bus.TimerUpdated, bus.TimerDisplay{Display: sess.display})
	}
}

// Resume continues a paused recording. The elapsed time is reconstructed
// from the frozen display so the timer picks up exactly where it stopped.
func (r *Recorder) Resume() {
	if !r.machine.CanResume() {
		return
	}

	r.mu.Lock()
	sess := r.sess
	if sess == nil {
		r.mu.Unlock()
		return
	}
	if elapsed, ok := parseDisplay(sess.display); ok {
		sess.start = r.now().Add(-elapsed)
	}
	r.paused = false
	r.mu.Unlock()

	// The level channel from the original start is still live, so the
	// resumed transition carries no visualization payload: re-announcing
	// it would stack a second consumer on the same channel.
	if !r.machine.TransitionTo(machine.StateRecording, map[string]any{
		"resumed": true,
	}) {
		return
	}
	r.startTimer()
}

// Cancel discards the current recording without transcribing it.
func (r *Recorder) Cancel() {
	if !r.machine.CanCancel() {
		return
	}
	r.stopTimer()

	r.mu.Lock()
	if r.sess != nil {
		r.sess.cancelRequested = true
	}
	r.mu.Unlock()

	if !r.machine.TransitionTo(machine.StateCancelling, nil) {
		return
	}
	r.stopDevice()
}

func (r *Recorder) onChunk(pcm []byte, frames uint32) {
	level := rmsLevel(pcm)

	r.mu.Lock()
	defer r.mu.Unlock()
	sess := r.sess
	if sess == nil || r.paused {
		return
	}
	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	sess.chunks = append(sess.chunks, buf)
	if sess.sensor != nil {
		sess.sensor.Feed(buf)
	}
	if !sess.levelsClosed {
		select {
		case sess.levels <- level:
		default: // renderer is behind, drop the sample
		}
	}
}

func (r *Recorder) startTimer() {
	stop := make(chan struct{})
	r.mu.Lock()
	r.timerStop = stop
	r.mu.Unlock()
	go func() {
		ticker := time.NewTicker(r.tickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.tick()
			}
		}
	}()
}

// tick recomputes the display from the absolute start time, so a delayed
// tick never drifts the timer.
func (r *Recorder) tick() {
	r.mu.Lock()
	sess := r.sess
	if sess == nil {
		r.mu.Unlock()
		return
	}
	sess.display = formatElapsed(r.now().Sub(sess.start))
	display := sess.display
	var warn, clear bool
	if sess.sensor != nil {
		voiced := sess.sensor.Voiced()
		switch {
		case !voiced && !sess.silenceWarned && r.now().Sub(sess.start) >= silenceWarnAfter:
			sess.silenceWarned = true
			warn = true
		case voiced && sess.silenceWarned:
			sess.silenceWarned = false
			clear = true
		}
	}
	r.mu.Unlock()

	r.bus.Emit(bus.TimerUpdated, bus.TimerDisplay{Display: display})
	if warn {
		r.bus.Emit(bus.StatusUpdated, bus.Status{
			Message:  "no speech detected",
			Severity: bus.SeverityWarn,
		})
	}
	if clear {
		r.bus.Emit(bus.StatusUpdated, bus.Status{
			Message:  "Recording",
			Severity: bus.SeverityInfo,
		})
	}
}

func (r *Recorder) stopTimer() {
	r.mu.Lock()
	if r.timerStop != nil {
		close(r.timerStop)
		r.timerStop = nil
	}
	r.mu.Unlock()
}

func (r *Recorder) fail(err error) {
	msg := err.Error()
	r.machine.TransitionTo(machine.StateError, map[string]any{"error": msg})
	if looksConfigRelated(msg) {
		r.bus.Emit(bus.SettingsPrompt, nil)
	}
	r.cleanup()
}

// cleanup releases everything a recording attempt holds. It runs on every
// terminal path so the next attempt always starts from a blank slate.
func (r *Recorder) cleanup() {
	r.stopTimer()

	r.mu.Lock()
	if r.tailTimer != nil {
		r.tailTimer.Stop()
		r.tailTimer = nil
	}
	sess := r.sess
	r.sess = nil
	dev := r.device
	r.device = nil
	r.paused = false
	r.mu.Unlock()

	if dev != nil {
		dev.ClearCallback()
		dev.Close()
	}

	if sess != nil {
		sess.chunks = nil
		r.mu.Lock()
		if !sess.levelsClosed {
			sess.levelsClosed = true
			close(sess.levels)
		}
		r.mu.Unlock()
	}

	r.bus.Emit(bus.TimerReset, nil)
}

func looksConfigRelated(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "key") || strings.Contains(lower, "endpoint") || strings.Contains(lower, "unauthorized")
}
