package transcriber

// Fake is an in-memory stand-in for Client used by recorder tests.
type Fake struct {
	Text        string
	Err         error
	ValidateErr error
	Model       string

	Clips  [][]byte
	Warmed int
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err, Model: "fake"}
}

func (f *Fake) ValidateConfig() (Config, error) {
	if f.ValidateErr != nil {
		return Config{}, f.ValidateErr
	}
	return Config{APIKey: "fake", Endpoint: "https://fake.invalid/v1", Model: f.Model}, nil
}

func (f *Fake) Transcribe(clip []byte) (string, error) {
	f.Clips = append(f.Clips, clip)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *Fake) Warm() { f.Warmed++ }
