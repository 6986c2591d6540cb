package beep

import "math"

// cue describes one audible tone: a decaying sine tick, optionally repeated
// with a silent gap for the double-beep failure cue.
type cue struct {
	freq     float64
	duration float64 // seconds per tick
	volume   float64
	decay    float64 // exponential envelope rate
	repeat   int
	gap      float64 // seconds of silence between repeats
}

var (
	startCue = cue{freq: 1200, duration: 0.05, volume: 0.5, decay: 60, repeat: 1}
	endCue   = cue{freq: 900, duration: 0.08, volume: 0.5, decay: 40, repeat: 1}
	errorCue = cue{freq: 350, duration: 0.08, volume: 0.6, decay: 30, repeat: 2, gap: 0.05}
)

// render synthesizes the cue as mono PCM16 at sampleRate. Platform players
// only move these samples to a sink; all tone shaping lives here.
func (c cue) render() []int16 {
	tickLen := int(float64(sampleRate) * c.duration)
	gapLen := int(float64(sampleRate) * c.gap)
	out := make([]int16, 0, c.repeat*tickLen+(c.repeat-1)*gapLen)
	for rep := 0; rep < c.repeat; rep++ {
		if rep > 0 {
			out = append(out, make([]int16, gapLen)...)
		}
		for i := 0; i < tickLen; i++ {
			t := float64(i) / float64(sampleRate)
			envelope := math.Exp(-t * c.decay)
			out = append(out, int16(math.Sin(2*math.Pi*c.freq*t)*32767*c.volume*envelope))
		}
	}
	return out
}

// pcmBytes converts rendered samples to little-endian bytes for byte-oriented
// sinks.
func pcmBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}
