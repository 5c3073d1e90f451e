// ABOUTME: Bubbletea model for the mixpad channel board
// ABOUTME: Shows per-channel playback state and routes keys to mixer actions
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mixpool/mixpool-go/internal/version"
	"github.com/mixpool/mixpool-go/pkg/mix"
)

// fadeOutMS is the fade applied by the "f" key.
const fadeOutMS = 800

// Controller is what the board drives. The mixpad command implements it on
// top of a Mixer and a sound bank; tests implement it with a fake.
type Controller interface {
	// Status reports the current board state.
	Status() Status

	// Trigger plays sound bank slot (0-based) on a free channel.
	Trigger(slot int) error

	// SetVolume sets the volume on every channel (0..mix.MaxVolume).
	SetVolume(v int)

	PauseAll()
	ResumeAll()
	HaltAll()
	FadeOutAll(ms int)

	// Sounds lists the loaded sound bank names, in trigger order.
	Sounds() []string
}

// ChannelStatus is one mixer channel's state for display.
type ChannelStatus struct {
	Index   int
	Playing bool
	Paused  bool
	Fading  mix.Fading
	Volume  int
}

// Status is a snapshot of the whole board.
type Status struct {
	Channels []ChannelStatus
	Playing  int
	Paused   int
	Volume   int
}

// Model represents the TUI state
type Model struct {
	ctrl    Controller
	status  Status
	lastErr string

	width  int
	height int

	quitting bool
}

type tickMsg time.Time

// NewModel creates a new board model
func NewModel(ctrl Controller) Model {
	m := Model{ctrl: ctrl}
	if ctrl != nil {
		m.status = ctrl.Status()
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if m.ctrl != nil {
			m.status = m.ctrl.Status()
		}
		return m, tickEvery()
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up":
		m.setVolume(m.status.Volume + 8)
	case "down":
		m.setVolume(m.status.Volume - 8)
	case "p":
		if m.ctrl != nil {
			m.ctrl.PauseAll()
			m.status = m.ctrl.Status()
		}
	case "r":
		if m.ctrl != nil {
			m.ctrl.ResumeAll()
			m.status = m.ctrl.Status()
		}
	case "h":
		if m.ctrl != nil {
			m.ctrl.HaltAll()
			m.status = m.ctrl.Status()
		}
	case "f":
		if m.ctrl != nil {
			m.ctrl.FadeOutAll(fadeOutMS)
			m.status = m.ctrl.Status()
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.trigger(int(key[0] - '1'))
		}
	}

	return m, nil
}

func (m *Model) setVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > mix.MaxVolume {
		v = mix.MaxVolume
	}
	if m.ctrl != nil {
		m.ctrl.SetVolume(v)
		m.status = m.ctrl.Status()
	}
}

func (m *Model) trigger(slot int) {
	if m.ctrl == nil {
		return
	}
	if err := m.ctrl.Trigger(slot); err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
		m.status = m.ctrl.Status()
	}
}

// View renders the board
func (m Model) View() string {
	if m.quitting {
		return "Closing audio device...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	activeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))

	errStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	var b strings.Builder

	b.WriteString(titleStyle.Render(version.Product + " Pad"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Playing: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.status.Playing)))
	b.WriteString(headerStyle.Render("  Paused: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.status.Paused)))
	b.WriteString(headerStyle.Render("  Volume: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("[%s] %d", renderBar(m.status.Volume, mix.MaxVolume, 10), m.status.Volume)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("Channels (%d)", len(m.status.Channels))))
	b.WriteString("\n")
	for _, ch := range m.status.Channels {
		line := fmt.Sprintf("  %2d %s", ch.Index, channelGlyph(ch))
		if ch.Playing {
			b.WriteString(activeStyle.Render(line))
		} else {
			b.WriteString(valueStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	sounds := []string{}
	if m.ctrl != nil {
		sounds = m.ctrl.Sounds()
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Sounds (%d)", len(sounds))))
	b.WriteString("\n")
	if len(sounds) == 0 {
		b.WriteString(valueStyle.Render("  No sounds loaded"))
		b.WriteString("\n")
	}
	for i, name := range sounds {
		if i >= 9 {
			break
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("  %d: %s", i+1, truncate(name, 40))))
		b.WriteString("\n")
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(
		"1-9:Play  ↑/↓:Volume  p:Pause  r:Resume  f:Fade out  h:Halt  q:Quit"))

	return b.String()
}

// channelGlyph summarizes one channel's state.
func channelGlyph(ch ChannelStatus) string {
	switch {
	case ch.Paused:
		return "⏸ paused"
	case ch.Fading == mix.FadingOut:
		return "▶ fading out"
	case ch.Fading == mix.FadingIn:
		return "▶ fading in"
	case ch.Playing:
		return "▶ playing"
	default:
		return "· idle"
	}
}

func renderBar(value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
