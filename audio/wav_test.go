package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWAVClipHeader(t *testing.T) {
	pcm := make([]byte, 3200) // 100ms of 16kHz mono PCM16
	clip := WAVClip(pcm, 16000, 1)

	if len(clip) != WAVHeaderSize+len(pcm) {
		t.Fatalf("clip length = %d, want %d", len(clip), WAVHeaderSize+len(pcm))
	}
	if !bytes.Equal(clip[0:4], []byte("RIFF")) || !bytes.Equal(clip[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(clip[24:28]); got != 16000 {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint16(clip[22:24]); got != 1 {
		t.Errorf("channels = %d", got)
	}
	if got := binary.LittleEndian.Uint32(clip[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
	if got := binary.LittleEndian.Uint32(clip[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
}

func TestWAVClipEmpty(t *testing.T) {
	clip := WAVClip(nil, 16000, 1)
	if len(clip) != WAVHeaderSize {
		t.Fatalf("empty clip length = %d", len(clip))
	}
	if got := binary.LittleEndian.Uint32(clip[40:44]); got != 0 {
		t.Errorf("data size = %d, want 0", got)
	}
}
