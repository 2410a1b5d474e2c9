package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-metronome/metronome"
	"go-metronome/theme"
	"go-metronome/widgets"
)

type Model struct {
	Manager  *metronome.Manager
	Theme    *theme.Theme
	pendulum *widgets.Pendulum
	quitting bool
}

type UpdateMsg struct{}

func NewModel(manager *metronome.Manager, th *theme.Theme) Model {
	return Model{
		Manager:  manager,
		Theme:    th,
		pendulum: widgets.NewPendulum(41, 30),
	}
}

// ListenForUpdates relays manager state changes into bubbletea.
func ListenForUpdates(manager *metronome.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit

		case " ", "space":
			m.Manager.Toggle()

		case "t":
			m.Manager.Tap()

		case "+", "=":
			m.Manager.IncrementBPM(1)

		case "-", "_":
			m.Manager.IncrementBPM(-1)

		case "right":
			m.Manager.IncrementBPM(5)

		case "left":
			m.Manager.IncrementBPM(-5)

		case "]":
			m.Manager.SetBeatsPerMeasure(m.Manager.GetState().BeatsPerMeasure + 1)

		case "[":
			m.Manager.SetBeatsPerMeasure(m.Manager.GetState().BeatsPerMeasure - 1)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	st := m.Manager.GetState()

	var b strings.Builder
	b.WriteString(th.Title.Render("go-metronome"))
	b.WriteString("\n\n")

	if !st.Ready {
		b.WriteString(th.Warning.Render("audio unavailable - metronome disabled"))
		b.WriteString("\n\n")
	}

	b.WriteString(th.BPM.Render(fmt.Sprintf("%3d BPM", st.Tempo)))
	b.WriteString(th.Muted.Render(fmt.Sprintf("   %d/4   ", st.BeatsPerMeasure)))
	if st.State == metronome.StatePlaying {
		b.WriteString(th.Active.Render("playing"))
	} else {
		b.WriteString(th.Muted.Render("stopped"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderBeats(st))
	b.WriteString("\n\n")

	b.WriteString(m.pendulum.Render(st.PendulumAngle, th))
	b.WriteString("\n\n")

	b.WriteString(m.renderTaps(st))
	b.WriteString("\n\n")

	b.WriteString(m.renderHelp())
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// renderBeats draws one lamp per beat of the measure; the current beat
// lights up, with the accent drawn distinctly.
func (m Model) renderBeats(st metronome.State) string {
	th := m.Theme
	var b strings.Builder
	for i := 0; i < st.BeatsPerMeasure; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		current := st.State == metronome.StatePlaying && i == st.BeatIndex
		switch {
		case current && i == 0:
			b.WriteString(th.Accent.Render(string(th.Symbols.BeatAccent)))
		case current:
			b.WriteString(th.Active.Render(string(th.Symbols.BeatOn)))
		default:
			b.WriteString(th.Muted.Render(string(th.Symbols.BeatOff)))
		}
	}
	return b.String()
}

// renderTaps shows progress toward a tap-tempo estimate.
func (m Model) renderTaps(st metronome.State) string {
	th := m.Theme
	if st.TapCount == 0 {
		return th.Muted.Render("tap 't' to set tempo")
	}
	var b strings.Builder
	b.WriteString(th.Label.Render("tap "))
	for i := 0; i < 4; i++ {
		if i < st.TapCount {
			b.WriteString(th.Accent.Render(string(th.Symbols.TapFilled)))
		} else {
			b.WriteString(th.Muted.Render(string(th.Symbols.TapEmpty)))
		}
	}
	return b.String()
}

func (m Model) renderHelp() string {
	th := m.Theme
	items := [][2]string{
		{"space", "start/stop"},
		{"t", "tap tempo"},
		{"+/-", "bpm"},
		{"←/→", "bpm ±5"},
		{"[/]", "beats"},
		{"q", "quit"},
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = th.HelpKey.Render(it[0]) + th.HelpDesc.Render(" "+it[1])
	}
	return strings.Join(parts, th.HelpDesc.Render("  "))
}
