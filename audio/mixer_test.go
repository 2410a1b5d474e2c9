package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixerClockAdvancesWithRendering(t *testing.T) {
	m := newMixer(1000)

	assert.Equal(t, ClockTime(0), m.now())

	buf := make([]float32, 250)
	m.render(buf)
	assert.Equal(t, ClockTime(0.25), m.now())

	m.render(buf)
	m.render(buf)
	assert.Equal(t, ClockTime(0.75), m.now())
}

func TestMixerPlacesClickAtExactOffset(t *testing.T) {
	m := newMixer(1000)
	id := m.load([]float32{1, 1, 1})

	// click at 0.1s = frame 100
	m.schedule(id, 0.1)

	buf := make([]float32, 200)
	m.render(buf)

	for i, v := range buf {
		if i >= 100 && i < 103 {
			assert.Equal(t, float32(1), v, "frame %d", i)
		} else {
			assert.Equal(t, float32(0), v, "frame %d", i)
		}
	}
}

func TestMixerClickSpansRenderBlocks(t *testing.T) {
	m := newMixer(1000)
	id := m.load([]float32{1, 1, 1, 1})

	// frame 98: two frames land in the first block, two in the second
	m.schedule(id, 0.098)

	first := make([]float32, 100)
	m.render(first)
	assert.Equal(t, float32(1), first[98])
	assert.Equal(t, float32(1), first[99])
	require.Equal(t, 1, m.pending())

	second := make([]float32, 100)
	m.render(second)
	assert.Equal(t, float32(1), second[0])
	assert.Equal(t, float32(1), second[1])
	assert.Equal(t, float32(0), second[2])
	assert.Equal(t, 0, m.pending())
}

func TestMixerClampsPastDeadlineToHead(t *testing.T) {
	m := newMixer(1000)
	id := m.load([]float32{1})

	m.render(make([]float32, 500)) // head at 0.5s
	m.schedule(id, 0.1)            // already past

	buf := make([]float32, 10)
	m.render(buf)
	assert.Equal(t, float32(1), buf[0], "late click sounds at the head, not dropped")
}

func TestMixerOverlappingClicksSum(t *testing.T) {
	m := newMixer(1000)
	id := m.load([]float32{0.5, 0.5})

	m.schedule(id, 0)
	m.schedule(id, 0)

	buf := make([]float32, 4)
	m.render(buf)
	assert.Equal(t, float32(1), buf[0])
	assert.Equal(t, float32(1), buf[1])
}

func TestFloatBufferTo16BitLE(t *testing.T) {
	pcm := floatBufferTo16BitLE([]float32{0, 1, -1, 2, -2}, nil)
	require.Len(t, pcm, 10)

	read := func(i int) int16 { return int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8) }
	assert.Equal(t, int16(0), read(0))
	assert.Equal(t, int16(32767), read(1))
	assert.Equal(t, int16(-32767), read(2))
	assert.Equal(t, int16(32767), read(3), "clipped high")
	assert.Equal(t, int16(-32767), read(4), "clipped low")
}

func TestClickSynthesisShapes(t *testing.T) {
	accent := AccentClick(SampleRate)
	tick := TickClick(SampleRate)

	require.Equal(t, SampleRate*clickDurationMs/1000, len(accent))
	require.Equal(t, len(accent), len(tick))

	// starts at zero crossing, has energy, decays
	assert.Equal(t, float32(0), accent[0])
	var peak float32
	for _, v := range accent {
		if v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, float32(0.1))
	assert.Less(t, abs32(accent[len(accent)-1]), peak/4)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
