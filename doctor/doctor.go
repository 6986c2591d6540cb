// Package doctor runs interactive diagnostics over everything a working
// setup needs: settings, the global shortcut, the microphone, the
// transcription endpoint and the clipboard.
package doctor

import (
	"fmt"
	"time"

	"dictum/audio"
	"dictum/bus"
	"dictum/clipboard"
	"dictum/hotkey"
	"dictum/settings"
	"dictum/transcriber"
)

// Run executes the checks in order and returns an exit code (0=all pass,
// 1=any fail). Later checks build on earlier ones, so it stops at the first
// failure.
func Run(store *settings.Store) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("dictum doctor - interactive system diagnostics")
	fmt.Println("==============================================")

	client := transcriber.New(bus.New(), store)

	pass := checkSettings(client)
	if pass {
		pass = checkShortcut()
	}
	var clip []byte
	if pass {
		clip, pass = checkMicrophone()
	}
	if pass {
		pass = checkTranscription(client, clip)
	}
	if pass {
		pass = checkClipboard()
	}

	fmt.Println()
	if !pass {
		fmt.Println("Some checks failed. See details above.")
		return 1
	}
	fmt.Println("All checks passed!")
	return 0
}

func checkSettings(client *transcriber.Client) bool {
	fmt.Println()
	fmt.Println("[1/5] Settings")

	cfg, err := client.ValidateConfig()
	if err != nil {
		fmt.Printf("  FAIL: %v (run: dictum -set api_key=...)\n", err)
		return false
	}
	fmt.Printf("  PASS: endpoint %s, model %s\n", cfg.Endpoint, cfg.Model)
	return true
}

func checkShortcut() bool {
	fmt.Println()
	fmt.Println("[2/5] Global shortcut")

	if msg, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Printf("  %s\n", msg)
	}

	fmt.Println("Press Ctrl+Shift+Space...")
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register shortcut: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Presses():
		// The shortcut listener may leave the terminal in raw mode.
		resetTerminal()
		fmt.Println("  PASS: shortcut detected")
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for shortcut")
		return false
	}
}

func checkMicrophone() ([]byte, bool) {
	fmt.Println()
	fmt.Println("[3/5] Microphone")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return nil, false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return nil, false
	}
	fmt.Printf("Using device: %s\n", devices[0].Name)

	cfg := audio.CaptureConfig{SampleRate: 16000, Channels: 1, PeriodMillis: 250}
	dev, err := ctx.NewCapture(&devices[0], cfg)
	if err != nil {
		fmt.Printf("  FAIL: cannot open device: %v\n", err)
		return nil, false
	}
	defer dev.Close()

	var pcm []byte
	done := make(chan struct{})
	dev.SetCallback(func(chunk []byte, frames uint32) {
		pcm = append(pcm, chunk...)
		if len(pcm) >= int(cfg.SampleRate)*2*3 { // ~3 seconds
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})
	defer dev.ClearCallback()

	fmt.Println("Say a few words (recording 3 seconds)...")
	if err := dev.Start(); err != nil {
		fmt.Printf("  FAIL: cannot start capture: %v\n", err)
		return nil, false
	}
	select {
	case <-done:
	case <-time.After(6 * time.Second):
	}
	dev.Stop()

	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return nil, false
	}
	fmt.Printf("  PASS: captured %.1fs of audio\n", float64(len(pcm))/float64(cfg.SampleRate*2))
	return audio.WAVClip(pcm, cfg.SampleRate, cfg.Channels), true
}

func checkTranscription(client *transcriber.Client, clip []byte) bool {
	fmt.Println()
	fmt.Println("[4/5] Transcription")

	text, err := client.Transcribe(clip)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %q\n", text)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[5/5] Clipboard")

	marker := fmt.Sprintf("dictum-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Copy(marker); err != nil {
		fmt.Printf("  FAIL: copy: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: read back: %v\n", err)
		return false
	}
	if got != marker {
		fmt.Printf("  FAIL: clipboard content changed: got %q\n", got)
		return false
	}
	fmt.Println("  PASS: clipboard roundtrip OK")
	return true
}
