// Package audio provides the playback backend for the metronome. All
// timing authority lives here: the engine keeps its own clock, counted
// in samples rendered, and plays clicks at exact sample offsets. Host
// timers decide only when to hand work to this package, never when
// sound occurs.
package audio

// ClockTime is a position on the audio clock, in seconds. It advances
// only as samples are rendered, so it is monotone and immune to
// wall-clock jumps and host scheduling jitter.
type ClockTime float64

// SampleID identifies a loaded click sample.
type SampleID int

// Backend is the surface the scheduling engine consumes. The real
// implementation is *Engine; tests substitute a fake with a manually
// advanced clock.
type Backend interface {
	// Now returns the current audio clock position.
	Now() ClockTime

	// LoadSample registers a mono PCM buffer and returns its id.
	LoadSample(pcm []float32) SampleID

	// ScheduleSample queues the sample to sound at exactly the given
	// clock position. Requests already in the past are clamped to the
	// next renderable frame rather than dropped.
	ScheduleSample(id SampleID, at ClockTime)

	// Resume unsuspends the clock if it was suspended.
	Resume()
}

const (
	// SampleRate is the engine's fixed output rate.
	SampleRate = 44100

	// renderBlock is the number of frames mixed per write. ~11.6ms at
	// 44.1kHz, comfortably inside the scheduler's 100ms horizon.
	renderBlock = 512

	otoBufferSize = 8192
)
