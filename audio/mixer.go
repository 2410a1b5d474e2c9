package audio

import (
	"sync"

	"go-metronome/debug"
)

// mixer owns the sample clock and the set of in-flight clicks. It has
// no notion of wall time: Render advances the clock by exactly the
// number of frames produced, and Schedule positions clicks against
// that same counter, so playback position and scheduling share one
// clock domain.
type mixer struct {
	mu      sync.Mutex
	rate    int
	samples map[SampleID][]float32
	nextID  SampleID
	head    int64 // absolute frame index of the next frame to render
	active  []voice
}

// voice is one scheduled click being (or about to be) mixed out.
type voice struct {
	start int64 // absolute frame at which the click begins
	pos   int   // frames of the click already rendered
	data  []float32
}

func newMixer(rate int) *mixer {
	return &mixer{
		rate:    rate,
		samples: make(map[SampleID][]float32),
		nextID:  1,
	}
}

func (m *mixer) load(pcm []float32) SampleID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.samples[id] = pcm
	return id
}

func (m *mixer) now() ClockTime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ClockTime(float64(m.head) / float64(m.rate))
}

// schedule queues a click at the given clock position. In-past
// requests clamp to the render head so the click still sounds, just
// late, instead of vanishing.
func (m *mixer) schedule(id SampleID, at ClockTime) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.samples[id]
	if !ok {
		debug.Log("audio", "schedule: unknown sample id %d", id)
		return
	}

	start := int64(float64(at) * float64(m.rate))
	if start < m.head {
		debug.Log("audio", "schedule: %.4fs already past head, clamping", float64(at))
		start = m.head
	}
	m.active = append(m.active, voice{start: start, data: data})
}

// render mixes all due clicks into out and advances the clock by
// len(out) frames. out is zeroed first; silence is the default.
func (m *mixer) render(out []float32) {
	for i := range out {
		out[i] = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	blockEnd := m.head + int64(len(out))
	kept := m.active[:0]
	for _, v := range m.active {
		if v.start >= blockEnd {
			kept = append(kept, v)
			continue
		}
		// offset of the click's next frame within this block
		at := v.start + int64(v.pos) - m.head
		for at < int64(len(out)) && v.pos < len(v.data) {
			out[at] += v.data[v.pos]
			at++
			v.pos++
		}
		if v.pos < len(v.data) {
			kept = append(kept, v)
		}
	}
	m.active = kept
	m.head = blockEnd
}

// pending reports how many scheduled clicks have not finished sounding.
func (m *mixer) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
