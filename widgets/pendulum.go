package widgets

import (
	"strings"

	"go-metronome/theme"
)

// Pendulum renders the metronome arm as a one-line swing track. The
// bob's column tracks the visual-phase angle; it crosses the center
// mark on each beat.
type Pendulum struct {
	Width    int
	MaxAngle float64 // degrees, matches the phase generator's amplitude
}

func NewPendulum(width int, maxAngle float64) *Pendulum {
	if width%2 == 0 {
		width++ // a true center column needs odd width
	}
	return &Pendulum{Width: width, MaxAngle: maxAngle}
}

// Render maps angle (degrees, -MaxAngle..MaxAngle) to a track line.
func (p *Pendulum) Render(angle float64, th *theme.Theme) string {
	if angle > p.MaxAngle {
		angle = p.MaxAngle
	}
	if angle < -p.MaxAngle {
		angle = -p.MaxAngle
	}

	center := p.Width / 2
	pos := center + int(angle/p.MaxAngle*float64(center)+0.5*sign(angle))

	var b strings.Builder
	for i := 0; i < p.Width; i++ {
		switch {
		case i == pos:
			b.WriteString(th.Accent.Render(string(th.Symbols.Bob)))
		case i == center:
			b.WriteString(th.Muted.Render(string(th.Symbols.Center)))
		default:
			b.WriteString(th.Muted.Render(string(th.Symbols.Track)))
		}
	}
	return b.String()
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
