package recorder

import (
	"sync"
	"time"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

const (
	vadMode     = 3 // most aggressive, fewest false positives
	vadFrameMs  = 20
	vadDebounce = 3 // consecutive speech frames to confirm voice

	// silenceWarnAfter is how long a recording may stay silent before the
	// user is warned that nothing is being picked up.
	silenceWarnAfter = 5 * time.Second
)

// voiceSensor reports whether speech has been heard in the audio fed to it.
type voiceSensor interface {
	Feed(pcm []byte)
	Voiced() bool
}

// voiceMonitor runs WebRTC voice activity detection over the capture stream.
type voiceMonitor struct {
	vad        *webrtcvad.VAD
	sampleRate int
	frameBytes int

	mu        sync.Mutex
	buf       []byte
	speechRun int
	voiced    bool
}

func newVoiceMonitor(sampleRate uint32) (voiceSensor, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	rate := int(sampleRate)
	return &voiceMonitor{
		vad:        v,
		sampleRate: rate,
		frameBytes: rate * vadFrameMs / 1000 * 2,
	}, nil
}

func (m *voiceMonitor) Feed(pcm []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buf = append(m.buf, pcm...)
	for len(m.buf) >= m.frameBytes {
		frame := m.buf[:m.frameBytes]
		m.buf = m.buf[m.frameBytes:]

		active, err := m.vad.Process(m.sampleRate, frame)
		if err != nil {
			continue
		}
		if !active {
			m.speechRun = 0
			continue
		}
		m.speechRun++
		if m.speechRun >= vadDebounce {
			m.voiced = true
		}
	}
}

func (m *voiceMonitor) Voiced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voiced
}
