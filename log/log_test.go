package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/dictum-log")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/dictum-log" {
		t.Errorf("got %q, want /tmp/dictum-log", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "logs"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("DICTUM_LOG_PATH", "/tmp/dictum-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/dictum-env-log" {
		t.Errorf("got %q, want /tmp/dictum-env-log", got)
	}
}

func TestLogBeforeInitIsNoop(t *testing.T) {
	setupLogDir(t)
	// Must not panic or create files.
	Info("ignored")
	Errorf("ignored %d", 1)
	TranscriptText("ignored")
}

func TestInitWritesDiagnostics(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Info("hello_diag")
	Event("state_change", "recording")
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, "diagnostics.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello_diag") {
		t.Errorf("diagnostics log missing entry: %s", data)
	}
	if !strings.Contains(string(data), "state_change") {
		t.Errorf("diagnostics log missing event: %s", data)
	}
}

func TestTranscriptText(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	TranscriptText("the quick brown fox")
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, "transcripts.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "the quick brown fox") {
		t.Errorf("transcript log missing text: %s", data)
	}
}
