// Package settings persists the small key-value configuration the recorder
// needs: API key, endpoint, model, language. Values live in a YAML file with
// DICTUM_* environment overrides; reads go back to disk every time so edited
// credentials are picked up on the next recording without a restart.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"dictum/transcriber"
)

// Keys recognized by the store.
const (
	KeyAPIKey   = "api_key"
	KeyEndpoint = "endpoint"
	KeyModel    = "model"
	KeyLanguage = "language"
)

const (
	defaultEndpoint = "https://api.groq.com/openai/v1/audio/transcriptions"
	defaultModel    = "whisper-large-v3-turbo"
	defaultLanguage = "en"
)

// Store is a viper-backed settings file.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "dictum", "config.yaml"), nil
}

// Open loads the settings file at path, or the default location when path is
// empty. A missing file is not an error; defaults and environment overrides
// still apply.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DICTUM")
	v.AutomaticEnv()
	v.SetDefault(KeyEndpoint, defaultEndpoint)
	v.SetDefault(KeyModel, defaultModel)
	v.SetDefault(KeyLanguage, defaultLanguage)

	s := &Store{v: v, path: path}
	if err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) read() error {
	err := s.v.ReadInConfig()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("reading settings %s: %w", s.path, err)
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Config re-reads the file and returns the current transcription
// configuration. Never cached: stale credentials must not outlive an edit.
func (s *Store) Config() transcriber.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.read()
	return transcriber.Config{
		APIKey:   strings.TrimSpace(s.v.GetString(KeyAPIKey)),
		Endpoint: strings.TrimSpace(s.v.GetString(KeyEndpoint)),
		Model:    strings.TrimSpace(s.v.GetString(KeyModel)),
		Language: strings.TrimSpace(s.v.GetString(KeyLanguage)),
	}
}

// Get returns the current value for key.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.read()
	return s.v.GetString(key)
}

// Set writes key=value and persists the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing settings %s: %w", s.path, err)
	}
	return nil
}

// Override sets a runtime-only value (a CLI flag) that wins over the file
// and environment but is not persisted.
func (s *Store) Override(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
}
