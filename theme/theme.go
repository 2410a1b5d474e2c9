package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Symbols Symbols

	Title    lipgloss.Style
	BPM      lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Active   lipgloss.Style
	Warning  lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

type Symbols struct {
	// Beat lamps
	BeatOff    rune // · upcoming beat
	BeatOn     rune // ● current beat
	BeatAccent rune // ◉ current beat, accented

	// Pendulum
	Bob    rune // ● the pendulum bob
	Track  rune // ─ the swing track
	Center rune // │ the beat-crossing mark

	// Tap progress
	TapFilled rune // ■
	TapEmpty  rune // □
}

func New() *Theme {
	var (
		fg     = lipgloss.Color("252")
		muted  = lipgloss.Color("243")
		accent = lipgloss.Color("205")
		active = lipgloss.Color("84")
		warn   = lipgloss.Color("214")
	)
	return &Theme{
		Symbols: Symbols{
			BeatOff:    '·',
			BeatOn:     '●',
			BeatAccent: '◉',

			Bob:    '●',
			Track:  '─',
			Center: '│',

			TapFilled: '■',
			TapEmpty:  '□',
		},
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		BPM:      lipgloss.NewStyle().Foreground(fg).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(fg),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Accent:   lipgloss.NewStyle().Foreground(accent),
		Active:   lipgloss.NewStyle().Foreground(active),
		Warning:  lipgloss.NewStyle().Foreground(warn),
		HelpKey:  lipgloss.NewStyle().Foreground(accent),
		HelpDesc: lipgloss.NewStyle().Foreground(muted),
	}
}
