package recorder

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const zeroDisplay = "00:00"

// session holds everything belonging to one recording attempt. It is
// created on start and dropped by cleanup, so stale chunks can never leak
// into the next attempt.
type session struct {
	chunks          [][]byte
	start           time.Time
	display         string
	cancelRequested bool
	graceful        bool
	levels          chan float64
	levelsClosed    bool
	sensor          voiceSensor
	silenceWarned   bool
}

func newSession(start time.Time, graceful bool) *session {
	return &session{
		start:    start,
		display:  zeroDisplay,
		graceful: graceful,
		levels:   make(chan float64, 16),
	}
}

func (s *session) pcm() []byte {
	var total int
	for _, c := range s.chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	return out
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func parseDisplay(display string) (time.Duration, bool) {
	var mins, secs int
	if _, err := fmt.Sscanf(display, "%d:%d", &mins, &secs); err != nil {
		return 0, false
	}
	if mins < 0 || secs < 0 || secs > 59 {
		return 0, false
	}
	return time.Duration(mins)*time.Minute + time.Duration(secs)*time.Second, true
}

// rmsLevel reduces a chunk of 16-bit little-endian samples to a single
// 0..1 loudness value for the level meter.
func rmsLevel(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i:])))
		sum += v * v
	}
	return math.Sqrt(sum/float64(n)) / 32768.0
}
