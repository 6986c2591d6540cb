package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s := tempStore(t)
	cfg := s.Config()
	if cfg.Endpoint == "" {
		t.Error("expected default endpoint")
	}
	if cfg.Model != "whisper-large-v3-turbo" {
		t.Errorf("default model = %q", cfg.Model)
	}
	if cfg.APIKey != "" {
		t.Errorf("API key should default to empty, got %q", cfg.APIKey)
	}
}

func TestSetPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyAPIKey, "sk-test"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyModel, "gpt-4o-transcribe"); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := reopened.Config()
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Model != "gpt-4o-transcribe" {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestConfigReadsFreshFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Config().APIKey; got != "" {
		t.Fatalf("initial APIKey = %q", got)
	}

	// Another process edits the file; the next read must see it.
	if err := os.WriteFile(path, []byte("api_key: edited-key\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := s.Config().APIKey; got != "edited-key" {
		t.Errorf("APIKey = %q, want edited-key", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DICTUM_API_KEY", "env-key")
	s := tempStore(t)
	if got := s.Config().APIKey; got != "env-key" {
		t.Errorf("APIKey = %q, want env-key", got)
	}
}

func TestOverrideNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Override(KeyLanguage, "sv")
	if got := s.Config().Language; got != "sv" {
		t.Errorf("Language = %q, want sv", got)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("override should not create the settings file")
	}
}
