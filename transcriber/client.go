// Package transcriber sends recorded clips to a configured speech-to-text
// endpoint and normalizes the provider's response into plain text. The client
// is stateless: configuration is read fresh for every attempt so edited
// settings take effect on the next recording without a restart.
package transcriber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"dictum/bus"
	"dictum/log"
)

// Config is the per-request transcription configuration.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	Language string
}

// Source supplies a fresh Config for each transcription attempt.
type Source interface {
	Config() Config
}

// ErrUnrecognizedResponse reports a response body in none of the supported
// shapes (plain text, {"text": ...}, {"segments": [...]}).
var ErrUnrecognizedResponse = errors.New("unrecognized transcription response")

// Client uploads audio clips and returns transcribed text.
type Client struct {
	bus    *bus.Bus
	source Source
	http   *TracedClient
}

func New(b *bus.Bus, source Source) *Client {
	return &Client{bus: b, source: source, http: NewTracedClient()}
}

// ValidateConfig reads the current configuration and checks the fields a
// request cannot go out without. Each failure emits a ConfigMissing event
// naming the offending field, so the caller can prompt for settings instead
// of parsing error text.
func (c *Client) ValidateConfig() (Config, error) {
	cfg := c.source.Config()

	if strings.TrimSpace(cfg.APIKey) == "" {
		c.bus.Emit(bus.ConfigMissing, bus.Missing{Field: "api_key"})
		return Config{}, errors.New("transcription API key is not set")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		c.bus.Emit(bus.ConfigMissing, bus.Missing{Field: "endpoint"})
		return Config{}, errors.New("transcription endpoint is not set")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		c.bus.Emit(bus.ConfigMissing, bus.Missing{Field: "endpoint_invalid"})
		return Config{}, fmt.Errorf("transcription endpoint %q is not an absolute URL", cfg.Endpoint)
	}
	return cfg, nil
}

// Warm pre-establishes the TLS connection to the configured endpoint so the
// first request after a recording does not pay the handshake.
func (c *Client) Warm() {
	cfg := c.source.Config()
	if cfg.Endpoint != "" {
		c.http.Warm(cfg.Endpoint)
	}
}

// Transcribe uploads clip as multipart form data and returns the transcript.
// Model-specific extra fields come from the profile table; adding a model
// means adding a table row, not a branch here.
func (c *Client) Transcribe(clip []byte) (string, error) {
	cfg, err := c.ValidateConfig()
	if err != nil {
		return "", err
	}
	profile := ProfileFor(cfg.Model)

	c.bus.Emit(bus.RequestStarted, bus.RequestStart{Phrase: profile.Phrase})

	req, err := c.buildRequest(cfg, profile, clip)
	if err != nil {
		c.requestFailed(err.Error(), 0, "")
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.requestFailed(err.Error(), 0, "")
		return "", fmt.Errorf("transcription request: %w", err)
	}

	m := resp.Metrics
	log.RequestMetrics(cfg.Model, resp.StatusCode,
		float64(m.DNS.Milliseconds()), float64(m.TLS.Milliseconds()),
		float64(m.TTFB.Milliseconds()), float64(m.Total.Milliseconds()),
		m.ConnReused)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := string(resp.Body)
		err := fmt.Errorf("transcription failed with HTTP %d", resp.StatusCode)
		c.requestFailed(err.Error(), resp.StatusCode, detail)
		return "", err
	}

	text, err := parseTranscript(resp.Body)
	if err != nil {
		c.requestFailed(err.Error(), resp.StatusCode, string(resp.Body))
		return "", err
	}

	c.bus.Emit(bus.RequestSucceeded, bus.RequestSuccess{TextLen: len(text)})
	return text, nil
}

func (c *Client) buildRequest(cfg Config, profile Profile, clip []byte) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "clip.wav")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(clip); err != nil {
		return nil, err
	}

	writer.WriteField("model", cfg.Model)
	if profile.WantLanguage && cfg.Language != "" {
		writer.WriteField("language", cfg.Language)
	}
	for _, f := range profile.Fields {
		writer.WriteField(f.Name, f.Value)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, cfg.Endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func (c *Client) requestFailed(msg string, status int, body string) {
	log.Errorf("transcription error: %s", msg)
	c.bus.Emit(bus.RequestErrored, bus.RequestError{
		Message:    msg,
		StatusCode: status,
		Body:       body,
	})
}

// parseTranscript normalizes the supported response shapes into one string:
// a plain-text body is trimmed; a JSON object yields its "text" field, or
// its "segments" texts joined with single spaces.
func parseTranscript(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return string(trimmed), nil
	}

	var parsed struct {
		Text     *string `json:"text"`
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}

	switch {
	case parsed.Text != nil:
		return strings.TrimSpace(*parsed.Text), nil
	case len(parsed.Segments) > 0:
		parts := make([]string, 0, len(parsed.Segments))
		for _, seg := range parsed.Segments {
			if s := strings.TrimSpace(seg.Text); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " "), nil
	default:
		return "", ErrUnrecognizedResponse
	}
}
