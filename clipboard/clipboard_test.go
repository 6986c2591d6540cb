package clipboard

import (
	"errors"
	"testing"

	"dictum/bus"
)

func TestDeliverCopiesTranscript(t *testing.T) {
	orig := write
	defer func() { write = orig }()
	var copied []string
	write = func(text string) error {
		copied = append(copied, text)
		return nil
	}

	b := bus.New()
	var statuses []bus.Status
	b.Subscribe(bus.StatusUpdated, func(p any) {
		if s, ok := p.(bus.Status); ok {
			statuses = append(statuses, s)
		}
	})

	Deliver(b)
	b.Emit(bus.TranscriptReady, bus.Transcript{Text: "hello there"})
	b.Emit(bus.TranscriptReady, bus.Transcript{Text: ""})

	if len(copied) != 1 || copied[0] != "hello there" {
		t.Errorf("copied = %v, want [hello there]", copied)
	}
	if len(statuses) != 1 || statuses[0].Severity != bus.SeverityInfo {
		t.Errorf("statuses = %v, want one info status", statuses)
	}
}

func TestDeliverReportsCopyFailure(t *testing.T) {
	orig := write
	defer func() { write = orig }()
	write = func(string) error { return errors.New("no display") }

	b := bus.New()
	var statuses []bus.Status
	b.Subscribe(bus.StatusUpdated, func(p any) {
		if s, ok := p.(bus.Status); ok {
			statuses = append(statuses, s)
		}
	})

	Deliver(b)
	b.Emit(bus.TranscriptReady, bus.Transcript{Text: "hello"})

	if len(statuses) != 1 || statuses[0].Severity != bus.SeverityError {
		t.Errorf("statuses = %v, want one error status", statuses)
	}
}
