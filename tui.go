package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dictum/bus"
	"dictum/machine"
)

// Messages pushed into the program by bindUI.
type stateMsg struct{ state string }
type timerMsg struct{ display string }
type levelMsg struct{ level float64 }
type statusMsg struct {
	text     string
	severity string
}
type transcriptMsg struct{ text string }
type tickMsg time.Time

const meterWidth = 30

var (
	styleTitle      = lipgloss.NewStyle().Foreground(lipgloss.Color("105")).Bold(true)
	styleRecording  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	stylePaused     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	styleProcessing = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleIdle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleTimer      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	styleMeterOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleMeterHot   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleMeterOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	styleStatusInfo = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleStatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleStatusErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleTranscript = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleHelp       = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHelpKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

type tuiModel struct {
	bus *bus.Bus

	state      string
	display    string
	level      float64
	status     string
	severity   string
	lastText   string
	frame      int
	width      int
	height     int
	transcript int
}

func newTUIModel(b *bus.Bus) tuiModel {
	return tuiModel{
		bus:      b,
		state:    string(machine.StateIdle),
		display:  "00:00",
		status:   "Ready",
		severity: bus.SeverityInfo,
	}
}

func NewTUIProgram(b *bus.Bus) *tea.Program {
	return tea.NewProgram(newTUIModel(b), tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "r":
			m.bus.Emit(bus.ToggleRequested, nil)
		case "p":
			if m.state == string(machine.StatePaused) {
				m.bus.Emit(bus.ResumeRequested, nil)
			} else {
				m.bus.Emit(bus.PauseRequested, nil)
			}
		case "c":
			m.bus.Emit(bus.CancelRequested, nil)
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case stateMsg:
		m.state = msg.state
		if msg.state != string(machine.StateRecording) {
			m.level = 0
		}

	case timerMsg:
		m.display = msg.display

	case levelMsg:
		// Smooth the meter so it does not flicker with every period.
		m.level = m.level*0.6 + msg.level*0.4

	case statusMsg:
		m.status = msg.text
		m.severity = msg.severity

	case transcriptMsg:
		m.transcript++
		m.lastText = msg.text
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("dictum") + "\n\n")
	b.WriteString(m.stateLine() + "\n")
	b.WriteString(styleTimer.Render(m.display) + "\n")
	b.WriteString(m.meter() + "\n\n")
	b.WriteString(m.statusLine() + "\n")

	if m.lastText != "" {
		b.WriteString("\n")
		b.WriteString(styleStatusInfo.Render(fmt.Sprintf("Transcript #%d", m.transcript)) + "\n")
		wrap := m.width - 2
		if wrap < 20 {
			wrap = 60
		}
		for _, line := range wrapText(m.lastText, wrap) {
			b.WriteString(styleTranscript.Render(line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleHelpKey.Render("space") + styleHelp.Render(" record/stop  "))
	b.WriteString(styleHelpKey.Render("p") + styleHelp.Render(" pause/resume  "))
	b.WriteString(styleHelpKey.Render("c") + styleHelp.Render(" cancel  "))
	b.WriteString(styleHelpKey.Render("q") + styleHelp.Render(" quit\n"))
	return b.String()
}

func (m tuiModel) stateLine() string {
	switch m.state {
	case string(machine.StateRecording):
		return styleRecording.Render("● REC")
	case string(machine.StatePaused):
		return stylePaused.Render("‖ PAUSED")
	case string(machine.StateInitializing):
		return styleProcessing.Render("… starting")
	case string(machine.StateStopping), string(machine.StateCancelling):
		return styleProcessing.Render("… stopping")
	case string(machine.StateProcessing):
		dots := strings.Repeat(".", m.frame%4)
		return styleProcessing.Render("◌ TRANSCRIBING" + dots)
	case string(machine.StateError):
		return styleStatusErr.Render("✗ ERROR")
	default:
		return styleIdle.Render("○ STANDBY")
	}
}

func (m tuiModel) meter() string {
	lit := int(m.level * meterWidth * 3) // RMS of speech rarely climbs past a third
	if lit > meterWidth {
		lit = meterWidth
	}
	var b strings.Builder
	for i := 0; i < meterWidth; i++ {
		switch {
		case i >= lit:
			b.WriteString(styleMeterOff.Render("▁"))
		case i >= meterWidth*3/4:
			b.WriteString(styleMeterHot.Render("█"))
		default:
			b.WriteString(styleMeterOn.Render("█"))
		}
	}
	return b.String()
}

func (m tuiModel) statusLine() string {
	switch m.severity {
	case bus.SeverityError:
		return styleStatusErr.Render(m.status)
	case bus.SeverityWarn:
		return styleStatusWarn.Render(m.status)
	default:
		return styleStatusInfo.Render(m.status)
	}
}

func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// bindUI forwards bus events into the running program. It returns after
// wiring the subscriptions; the goroutine draining the level channel ends
// when the channel is closed at cleanup.
func bindUI(b *bus.Bus, p *tea.Program) {
	b.Subscribe(bus.RecordingStateChanged, func(payload any) {
		if sc, ok := payload.(bus.StateChange); ok {
			p.Send(stateMsg{state: sc.New})
		}
	})
	b.Subscribe(bus.TimerUpdated, func(payload any) {
		if d, ok := payload.(bus.TimerDisplay); ok {
			p.Send(timerMsg{display: d.Display})
		}
	})
	b.Subscribe(bus.TimerReset, func(any) {
		p.Send(timerMsg{display: "00:00"})
	})
	b.Subscribe(bus.VisualizationStart, func(payload any) {
		v, ok := payload.(bus.Visualization)
		if !ok || v.Levels == nil {
			return
		}
		go func() {
			for level := range v.Levels {
				p.Send(levelMsg{level: level})
			}
			p.Send(levelMsg{level: 0})
		}()
	})
	b.Subscribe(bus.StatusUpdated, func(payload any) {
		if s, ok := payload.(bus.Status); ok {
			p.Send(statusMsg{text: s.Message, severity: s.Severity})
		}
	})
	b.Subscribe(bus.TranscriptReady, func(payload any) {
		if tr, ok := payload.(bus.Transcript); ok {
			p.Send(transcriptMsg{text: tr.Text})
		}
	})
	b.Subscribe(bus.RequestErrored, func(payload any) {
		if e, ok := payload.(bus.RequestError); ok {
			p.Send(statusMsg{text: e.Message, severity: bus.SeverityError})
		}
	})
	b.Subscribe(bus.SettingsPrompt, func(any) {
		p.Send(statusMsg{
			text:     "configuration incomplete, run: dictum -setup",
			severity: bus.SeverityWarn,
		})
	})
}
