// Package clipboard puts finished transcripts on the system clipboard.
package clipboard

import (
	cb "github.com/atotto/clipboard"

	"dictum/bus"
	"dictum/log"
)

var write = cb.WriteAll

func Copy(text string) error {
	return write(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// Deliver copies every finished transcript to the clipboard and reports the
// outcome as a status event. Empty transcripts are skipped.
func Deliver(b *bus.Bus) bus.Token {
	return b.Subscribe(bus.TranscriptReady, func(p any) {
		tr, ok := p.(bus.Transcript)
		if !ok || tr.Text == "" {
			return
		}
		if err := Copy(tr.Text); err != nil {
			log.Errorf("copying transcript: %v", err)
			b.Emit(bus.StatusUpdated, bus.Status{
				Message:  "could not copy transcript to clipboard",
				Severity: bus.SeverityError,
			})
			return
		}
		b.Emit(bus.StatusUpdated, bus.Status{
			Message:  "copied to clipboard",
			Severity: bus.SeverityInfo,
		})
	})
}
