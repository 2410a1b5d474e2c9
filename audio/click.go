package audio

import "math"

// Click voicings: short decayed sine bursts. The accent sits higher
// and rings slightly longer so beat 1 reads clearly at speed.
const (
	accentFreq   = 1200.0
	accentVolume = 0.5
	accentDecay  = 60.0

	tickFreq   = 900.0
	tickVolume = 0.4
	tickDecay  = 80.0

	clickDurationMs = 50
)

// AccentClick synthesizes the emphasized beat-1 click at the given rate.
func AccentClick(rate int) []float32 {
	return synthClick(rate, accentFreq, accentVolume, accentDecay)
}

// TickClick synthesizes the ordinary click at the given rate.
func TickClick(rate int) []float32 {
	return synthClick(rate, tickFreq, tickVolume, tickDecay)
}

func synthClick(rate int, freq, volume, decay float64) []float32 {
	n := rate * clickDurationMs / 1000
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(rate)
		env := math.Exp(-decay * t)
		out[i] = float32(volume * env * math.Sin(2*math.Pi*freq*t))
	}
	return out
}
