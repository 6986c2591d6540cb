package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dictum/audio"
	"dictum/beep"
	"dictum/bus"
	"dictum/clipboard"
	"dictum/doctor"
	"dictum/hotkey"
	"dictum/log"
	"dictum/machine"
	"dictum/recorder"
	"dictum/settings"
	"dictum/transcriber"
)

var version = "dev"

// Capture parameters expected by the transcription endpoints: 16 kHz mono
// PCM16, buffered in 250 ms periods.
const (
	sampleRate   = 16000
	channels     = 1
	periodMillis = 250
)

func run() {
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	configFlag := flag.String("config", "", "Settings file path (default: OS-specific location)")
	setFlag := flag.String("set", "", "Persist a setting as key=value and exit (keys: api_key, endpoint, model, language)")
	modelFlag := flag.String("model", "", "Override transcription model for this session")
	langFlag := flag.String("lang", "", "Override language code for this session (e.g., en, es, fr)")
	copyFlag := flag.Bool("copy", true, "Copy finished transcripts to the clipboard")
	muteFlag := flag.Bool("mute", false, "Disable audible recording cues")
	hotkeyFlag := flag.Bool("hotkey", true, "Register the global Ctrl+Shift+Space shortcut")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location, use ./ for current dir)")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("dictum %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	configPath := *configFlag
	if configPath == "" {
		configPath, err = settings.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot resolve settings path: %v\n", err)
			os.Exit(1)
		}
	}
	store, err := settings.Open(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open settings: %v\n", err)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(store))
	}

	if *setFlag != "" {
		key, value, ok := strings.Cut(*setFlag, "=")
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: -set wants key=value")
			os.Exit(1)
		}
		if err := store.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("saved %s to %s\n", key, store.Path())
		return
	}
	if *modelFlag != "" {
		store.Override("model", *modelFlag)
	}
	if *langFlag != "" {
		store.Override("language", *langFlag)
	}

	b := bus.New()
	m := machine.New(b)
	client := transcriber.New(b, store)

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	switch {
	case *deviceFlag != "":
		devices, err := ctx.Devices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing devices: %v\n", err)
			os.Exit(1)
		}
		for i := range devices {
			if devices[i].Name == *deviceFlag {
				selectedDevice = &devices[i]
				break
			}
		}
		if selectedDevice == nil {
			fmt.Fprintf(os.Stderr, "Error: no capture device named %q\n", *deviceFlag)
			os.Exit(1)
		}
	case *setupFlag:
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v, using default\n", err)
			selectedDevice = nil
		}
	}

	captureConfig := audio.CaptureConfig{
		SampleRate:   sampleRate,
		Channels:     channels,
		PeriodMillis: periodMillis,
	}
	recorder.New(b, m, client, func() (audio.CaptureDevice, error) {
		return ctx.NewCapture(selectedDevice, captureConfig)
	}, captureConfig)

	if *copyFlag {
		clipboard.Deliver(b)
	}
	if *muteFlag {
		beep.Disable()
	}
	beep.Bind(b)
	b.Subscribe(bus.TranscriptReady, func(p any) {
		if tr, ok := p.(bus.Transcript); ok && tr.Text != "" {
			log.TranscriptText(tr.Text)
		}
	})

	if *hotkeyFlag {
		stop, err := hotkey.Bind(b, hotkey.New())
		if err != nil {
			log.Warnf("hotkey registration failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: global shortcut unavailable: %v\n", err)
		} else {
			defer stop()
		}
	}

	// Surface missing configuration right away instead of on first record.
	if _, err := client.ValidateConfig(); err == nil {
		go client.Warm()
	}

	if !*tuiFlag {
		log.Infof("dictum %s ready (headless)", version)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		return
	}

	p := NewTUIProgram(b)
	bindUI(b, p)
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		os.Exit(1)
	}
}
