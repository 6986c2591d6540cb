//go:build darwin

package beep

import (
	"sync"

	"github.com/gen2brain/malgo"
)

// player owns one persistent malgo playback device. The data callback
// drains whatever is queued in buf and pads the rest with silence, so an
// idle device just plays quiet.
type player struct {
	ctx *malgo.AllocatedContext
	dev *malgo.Device

	mu  sync.Mutex
	buf []byte
}

var (
	tonesOnce sync.Once
	out       player
	tones     struct{ start, end, fail []byte }
)

func loadTones() {
	tones.start = pcmBytes(startCue.render())
	tones.end = pcmBytes(endCue.render())
	tones.fail = pcmBytes(errorCue.render())

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	out.ctx = ctx
	if err := out.open(); err != nil {
		ctx.Uninit()
		out.ctx = nil
	}
}

func (p *player) open() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	dev, err := malgo.InitDevice(p.ctx.Context, config, malgo.DeviceCallbacks{Data: p.feed})
	if err != nil {
		return err
	}
	p.dev = dev
	return nil
}

func (p *player) feed(pOutput, _ []byte, frameCount uint32) {
	p.mu.Lock()
	n := copy(pOutput, p.buf)
	p.buf = p.buf[n:]
	p.mu.Unlock()
	for i := n; i < len(pOutput); i++ {
		pOutput[i] = 0
	}
}

func (p *player) play(pcm []byte) {
	if p.dev == nil || len(pcm) == 0 {
		return
	}
	p.mu.Lock()
	p.buf = append([]byte(nil), pcm...)
	p.mu.Unlock()

	if err := p.dev.Start(); err != nil {
		// The device can die across sleep/wake; rebuild it once.
		p.dev.Uninit()
		if err := p.open(); err != nil {
			p.dev = nil
			return
		}
		p.dev.Start()
	}
}

func Init() {
	tonesOnce.Do(loadTones)
}

func PlayStart() {
	if disabled {
		return
	}
	tonesOnce.Do(loadTones)
	out.play(tones.start)
}

func PlayEnd() {
	if disabled {
		return
	}
	tonesOnce.Do(loadTones)
	out.play(tones.end)
}

func PlayError() {
	if disabled {
		return
	}
	tonesOnce.Do(loadTones)
	out.play(tones.fail)
}
