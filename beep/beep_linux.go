//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	tonesOnce sync.Once
	tones     struct{ start, end, fail []int16 }
)

func loadTones() {
	tones.start = startCue.render()
	tones.end = endCue.render()
	tones.fail = errorCue.render()
}

// playTone streams one mono cue to the default sink. Cues are rare and
// short, so a throwaway daemon connection per cue beats holding one open.
func playTone(samples []int16) {
	if len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func Init() {
	tonesOnce.Do(loadTones)
}

func PlayStart() {
	if disabled {
		return
	}
	tonesOnce.Do(loadTones)
	go playTone(tones.start)
}

func PlayEnd() {
	if disabled {
		return
	}
	tonesOnce.Do(loadTones)
	go playTone(tones.end)
}

func PlayError() {
	if disabled {
		return
	}
	tonesOnce.Do(loadTones)
	go playTone(tones.fail)
}
