package transcriber

// Field is one extra multipart form field a model wants on its requests.
type Field struct {
	Name  string
	Value string
}

// Profile describes how requests for one model differ from the baseline.
// Extra fields are additive; callers never branch on the model themselves.
type Profile struct {
	// Phrase is the human-readable status shown while the request is in
	// flight.
	Phrase string
	// Fields are appended to the multipart body after file and model.
	Fields []Field
	// WantLanguage adds the configured language hint when one is set.
	WantLanguage bool
	// GracefulStop asks the recorder to flush and wait briefly before
	// stopping the device. Some models truncate the trailing words when the
	// last buffer is not flushed before the stop.
	GracefulStop bool
}

var defaultProfile = Profile{
	Phrase:       "Transcribing…",
	WantLanguage: true,
}

// profiles maps model IDs to their request profile. Unknown models get the
// default profile.
var profiles = map[string]Profile{
	"whisper-large-v3-turbo": {
		Phrase:       "Transcribing with Whisper…",
		Fields:       []Field{{"response_format", "verbose_json"}},
		WantLanguage: true,
	},
	"whisper-large-v3": {
		Phrase:       "Transcribing with Whisper…",
		Fields:       []Field{{"response_format", "verbose_json"}},
		WantLanguage: true,
	},
	"whisper-1": {
		Phrase:       "Transcribing with Whisper…",
		Fields:       []Field{{"response_format", "json"}, {"temperature", "0"}},
		WantLanguage: true,
	},
	"gpt-4o-transcribe": {
		Phrase:       "Transcribing with GPT-4o…",
		Fields:       []Field{{"response_format", "json"}},
		GracefulStop: true,
	},
	"gpt-4o-mini-transcribe": {
		Phrase:       "Transcribing with GPT-4o mini…",
		Fields:       []Field{{"response_format", "json"}},
		GracefulStop: true,
	},
}

// ProfileFor returns the request profile for model.
func ProfileFor(model string) Profile {
	if p, ok := profiles[model]; ok {
		return p
	}
	return defaultProfile
}
