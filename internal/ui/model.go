// ABOUTME: Bubbletea model for the playback TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Output
	driverName   string
	device       string
	mixRate      int
	speakerMode  string
	bufferFrames int
	sessionID    string

	// Metadata
	title  string
	artist string
	album  string

	// Playback
	state   string
	volume  int
	muted   bool
	paused  bool
	elapsed time.Duration

	// Stats
	framesMixed  int64
	periods      int64
	shortWrites  int64
	writeErrors  int64
	framesPlayed int64
	underruns    int64

	// Runtime stats
	goroutines int
	memAlloc   uint64
	memSys     uint64

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	volumeCtrl *VolumeControl
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderTrack())
	b.WriteString(m.renderControls())
	b.WriteString(m.renderStats())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the output device status
func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Resonate OSS Player"))
	b.WriteString("\n\n")

	output := "No output"
	if m.driverName != "" {
		output = fmt.Sprintf("%s (%s)", m.driverName, m.device)
	}
	b.WriteString(headerStyle.Render("Output: "))
	b.WriteString(valueStyle.Render(output))
	b.WriteString("\n")

	if m.mixRate > 0 {
		b.WriteString(headerStyle.Render("Format: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%dHz S16 %s, %d-frame periods (%.1fms)",
			m.mixRate, m.speakerMode, m.bufferFrames, periodMillis(m.bufferFrames, m.mixRate))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderTrack renders current track metadata
func (m Model) renderTrack() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Now Playing:"))
	b.WriteString("\n")

	if m.title == "" {
		b.WriteString(valueStyle.Render("  (No metadata)"))
		b.WriteString("\n\n")
		return b.String()
	}

	b.WriteString(valueStyle.Render(fmt.Sprintf("  Track:  %s", truncate(m.title, 48))))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("  Artist: %s", truncate(m.artist, 48))))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("  Album:  %s", truncate(m.album, 48))))
	b.WriteString("\n\n")
	return b.String()
}

// renderControls renders volume and playback state
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	state := m.state
	if m.paused {
		state = "paused"
	}

	return fmt.Sprintf("%s [%s] %d%%%s\n%s %s  %s\n\n",
		headerStyle.Render("Volume:"), renderBar(m.volume, 100, 20), m.volume, muteIcon,
		headerStyle.Render("State: "), state, formatElapsed(m.elapsed))
}

// renderStats renders playback statistics
func (m Model) renderStats() string {
	return fmt.Sprintf("%s Periods: %d  Frames: %d  Played: %d  Underruns: %d  Short writes: %d  Errors: %d\n\n",
		headerStyle.Render("Stats:"),
		m.periods, m.framesMixed, m.framesPlayed, m.underruns, m.shortWrites, m.writeErrors)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Volume  m:Mute  space:Pause  d:Debug  q:Quit") + "\n"
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`DEBUG:
  Session:    %s
  Goroutines: %d
  Mem Alloc:  %d KB
  Mem Sys:    %d KB

`, m.sessionID, m.goroutines, m.memAlloc/1024, m.memSys/1024)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendChange()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendChange()
		}
	case "m":
		m.muted = !m.muted
		m.sendChange()
	case " ", "p":
		m.paused = !m.paused
		m.sendChange()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// sendChange forwards the control state without blocking the UI
func (m Model) sendChange() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted, Paused: m.paused}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Driver != "" {
		m.driverName = msg.Driver
		m.device = msg.Device
	}
	if msg.MixRate != 0 {
		m.mixRate = msg.MixRate
		m.speakerMode = msg.SpeakerMode
		m.bufferFrames = msg.BufferFrames
	}
	if msg.SessionID != "" {
		m.sessionID = msg.SessionID
	}
	if msg.Title != "" {
		m.title = msg.Title
		m.artist = msg.Artist
		m.album = msg.Album
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if msg.Elapsed != 0 {
		m.elapsed = msg.Elapsed
	}
	if msg.Stats != nil {
		m.framesMixed = msg.Stats.FramesMixed
		m.periods = msg.Stats.Periods
		m.shortWrites = msg.Stats.ShortWrites
		m.writeErrors = msg.Stats.WriteErrors
		m.framesPlayed = msg.Stats.FramesPlayed
		m.underruns = msg.Stats.Underruns
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
		m.memSys = msg.MemSys
	}
}

// StatusMsg updates TUI state. Zero fields leave the current value.
type StatusMsg struct {
	Driver       string
	Device       string
	MixRate      int
	SpeakerMode  string
	BufferFrames int
	SessionID    string
	Title        string
	Artist       string
	Album        string
	State        string
	Volume       int
	Elapsed      time.Duration
	Stats        *Stats
	Goroutines   int
	MemAlloc     uint64
	MemSys       uint64
}

// Stats carries driver and player counters
type Stats struct {
	FramesMixed  int64
	Periods      int64
	ShortWrites  int64
	WriteErrors  int64
	FramesPlayed int64
	Underruns    int64
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func periodMillis(frames, rate int) float64 {
	if rate == 0 {
		return 0
	}
	return float64(frames) * 1000 / float64(rate)
}

func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
