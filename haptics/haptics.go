// Package haptics delivers per-beat tactile feedback. Everything here
// is best-effort: callers fire and forget, and a failing driver must
// never be allowed to touch beat timing.
package haptics

import "os"

// Intensity of a pulse, 0..1.
type Intensity float64

const (
	// Light marks an ordinary beat.
	Light Intensity = 0.3
	// Strong marks the accented first beat of a measure.
	Strong Intensity = 1.0
)

// Driver produces a single pulse. Implementations may fail; callers
// swallow the error.
type Driver interface {
	Pulse(intensity Intensity) error
}

// Noop discards every pulse.
type Noop struct{}

func (Noop) Pulse(Intensity) error { return nil }

// Terminal rings the terminal bell on strong pulses only; most
// terminals cannot modulate intensity, so light pulses stay silent.
type Terminal struct{}

func (Terminal) Pulse(intensity Intensity) error {
	if intensity < Strong {
		return nil
	}
	_, err := os.Stdout.Write([]byte{0x07})
	return err
}
