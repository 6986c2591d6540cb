package bus

// Event names used across the recorder core. Listeners subscribe by name;
// each name carries the payload type documented next to it.
const (
	// RecordingStateChanged fires once per accepted state transition, before
	// the target state's own entry emissions. Payload: StateChange.
	RecordingStateChanged = "recording.state_changed"

	RecordingStarted   = "recording.started"   // payload: nil
	RecordingStopped   = "recording.stopped"   // payload: nil
	RecordingPaused    = "recording.paused"    // payload: nil
	RecordingResumed   = "recording.resumed"   // payload: nil
	RecordingCancelled = "recording.cancelled" // payload: nil
	RecordingFailed    = "recording.error"     // payload: ErrorInfo

	// VisualizationStart hands the live level stream to whatever renders it.
	VisualizationStart = "visualization.start" // payload: Visualization
	VisualizationStop  = "visualization.stop"  // payload: nil

	TimerUpdated = "timer.update" // payload: TimerDisplay
	TimerReset   = "timer.reset"  // payload: nil

	// ControlsReset asks the UI to return its action controls to the idle
	// appearance after any terminal path.
	ControlsReset = "controls.reset" // payload: nil

	ConfigMissing  = "config.missing" // payload: Missing
	SettingsPrompt = "config.prompt"  // payload: nil

	RequestStarted   = "transcription.request_start"   // payload: RequestStart
	RequestSucceeded = "transcription.request_success" // payload: RequestSuccess
	RequestErrored   = "transcription.request_error"   // payload: RequestError

	TranscriptReady = "transcription.ready" // payload: Transcript

	StatusUpdated = "status.update" // payload: Status

	// User-intent events produced by the UI and the global hotkey.
	ToggleRequested = "ui.toggle" // payload: nil
	PauseRequested  = "ui.pause"  // payload: nil
	ResumeRequested = "ui.resume" // payload: nil
	CancelRequested = "ui.cancel" // payload: nil
)

// Status severities.
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// StateChange describes one accepted transition. Old and New are the string
// forms of the machine states; Data carries whatever the caller attached to
// the transition request.
type StateChange struct {
	Old  string
	New  string
	Data map[string]any
}

// Status is a human-readable phrase plus severity for the status line.
type Status struct {
	Message  string
	Severity string
}

// TimerDisplay carries the formatted mm:ss elapsed time.
type TimerDisplay struct {
	Display string
}

// Missing identifies which configuration field blocked a transcription
// attempt: "api_key", "endpoint" or "endpoint_invalid".
type Missing struct {
	Field string
}

// ErrorInfo carries a user-visible error message.
type ErrorInfo struct {
	Message string
}

// Visualization carries the live RMS level stream for the duration of one
// recording. The channel closes when the session ends.
type Visualization struct {
	Levels <-chan float64
}

// RequestStart announces an in-flight transcription request with a phrase
// appropriate to the configured model.
type RequestStart struct {
	Phrase string
}

// RequestSuccess reports completion with the resulting text length only, so
// large transcripts are not duplicated across the bus.
type RequestSuccess struct {
	TextLen int
}

// RequestError reports a failed transcription request. StatusCode and Body
// are zero/empty when the failure happened before an HTTP response arrived.
type RequestError struct {
	Message    string
	StatusCode int
	Body       string
}

// Transcript carries the final transcribed text.
type Transcript struct {
	Text string
}
