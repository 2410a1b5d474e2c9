package metronome

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-metronome/audio"
)

// fakeBackend is an audio backend with a manually advanced clock, so
// tests control simulated time completely.
type fakeBackend struct {
	mu        sync.Mutex
	now       audio.ClockTime
	nextID    audio.SampleID
	scheduled []audio.ClockTime
	resumes   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1}
}

func (f *fakeBackend) Now() audio.ClockTime {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeBackend) LoadSample([]float32) audio.SampleID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeBackend) ScheduleSample(_ audio.SampleID, at audio.ClockTime) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, at)
}

func (f *fakeBackend) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
}

func (f *fakeBackend) advance(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += audio.ClockTime(seconds)
}

func (f *fakeBackend) times() []audio.ClockTime {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]audio.ClockTime, len(f.scheduled))
	copy(out, f.scheduled)
	return out
}

// stepTo drives scheduling passes while advancing the simulated clock
// by step until it reaches target.
func stepTo(e *Engine, f *fakeBackend, target, step float64) {
	for float64(f.Now()) < target {
		remaining := target - float64(f.Now())
		if remaining < step {
			f.advance(remaining)
		} else {
			f.advance(step)
		}
		e.runPass(e.gen)
	}
}

func drainEvents(e *Engine) []BeatEvent {
	var out []BeatEvent
	for {
		select {
		case ev := <-e.notifyCh:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBeatSpacingIsExact(t *testing.T) {
	for _, bpm := range []int{60, 100, 120, 207, 300} {
		f := newFakeBackend()
		e := NewEngine(f)
		e.begin(bpm)
		e.runPass(e.gen)

		// irregular steps simulate host-thread load; beat placement
		// must not care
		for i := 0; float64(f.Now()) < 4.0; i++ {
			f.advance([]float64{0.06, 0.01, 0.09, 0.025}[i%4])
			e.runPass(e.gen)
		}

		times := f.times()
		require.Greater(t, len(times), 3, "bpm %d", bpm)
		want := 60.0 / float64(bpm)
		for i := 1; i < len(times); i++ {
			got := float64(times[i] - times[i-1])
			assert.InDelta(t, want, got, 1e-9, "bpm %d, interval %d", bpm, i)
		}
	}
}

func TestFirstBeatIsNeverInThePast(t *testing.T) {
	f := newFakeBackend()
	f.advance(12.5)
	e := NewEngine(f)
	first, _, _, _ := e.begin(120)
	e.runPass(e.gen)

	assert.Equal(t, audio.ClockTime(12.5)+startOffset, first)
	times := f.times()
	require.NotEmpty(t, times)
	assert.Greater(t, float64(times[0]), 12.5)
	assert.Equal(t, 1, f.resumes, "clock resumed on start")
}

func TestLookaheadBound(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)
	e.begin(300) // fastest supported: period 200ms
	e.runPass(e.gen)

	period := 60.0 / 300.0
	maxInFlight := int(math.Ceil(float64(lookaheadWindow)/period)) + 1

	for float64(f.Now()) < 3.0 {
		f.advance(0.025)
		e.runPass(e.gen)

		// in-flight: scheduled beats still governing the current
		// interval (a beat is live until its successor sounds)
		now := float64(f.Now())
		inFlight := 0
		for _, at := range f.times() {
			if float64(at)+period > now {
				inFlight++
			}
		}
		assert.GreaterOrEqual(t, inFlight, 1)
		assert.LessOrEqual(t, inFlight, maxInFlight)
	}
}

func TestTempoChangePreservesScheduledBeats(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)
	e.begin(120)
	e.runPass(e.gen)
	stepTo(e, f, 1.0, 0.025)

	before := f.times()
	require.NotEmpty(t, before)

	e.SetBPM(90)
	stepTo(e, f, 3.0, 0.025)
	after := f.times()

	// beats already handed over kept their timing
	assert.Equal(t, before, after[:len(before)])

	// every interval is either the old or the new period, old ones
	// strictly before new ones
	oldPeriod, newPeriod := 60.0/120.0, 60.0/90.0
	sawNew := false
	for i := 1; i < len(after); i++ {
		d := float64(after[i] - after[i-1])
		switch {
		case math.Abs(d-oldPeriod) < 1e-9:
			assert.False(t, sawNew, "old interval after new interval")
		case math.Abs(d-newPeriod) < 1e-9:
			sawNew = true
		default:
			t.Fatalf("interval %d is neither period: %v", i, d)
		}
	}
	assert.True(t, sawNew, "new period never took effect")
}

func TestBPMClamped(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)
	e.SetBPM(5000)
	assert.Equal(t, 300, e.BPM())
	e.SetBPM(-3)
	assert.Equal(t, 20, e.BPM())
}

func TestEndToEndSixSeconds(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)
	e.begin(100)
	e.runPass(e.gen)
	stepTo(e, f, 5.9, 0.025)
	e.Stop()

	events := drainEvents(e)
	require.Len(t, events, 10)

	wantIndex := []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}
	period := 60.0 / 100.0
	for i, ev := range events {
		assert.Equal(t, wantIndex[i], ev.BeatIndex, "event %d", i)
		assert.Equal(t, ev.BeatIndex == 0, ev.IsAccent, "event %d", i)
		wantAt := float64(startOffset) + float64(i)*period
		assert.InDelta(t, wantAt, float64(ev.ScheduledAt), 1e-9, "event %d", i)
	}
}

func TestBeatsPerMeasureChangesAtMeasureBoundary(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)
	e.begin(120)
	e.runPass(e.gen)

	// schedule two beats of the first measure, then request 3/4
	stepTo(e, f, 0.6, 0.025)
	e.SetBeatsPerMeasure(3)
	stepTo(e, f, 5.3, 0.025)
	e.Stop()

	var indices []int
	for _, ev := range drainEvents(e) {
		indices = append(indices, ev.BeatIndex)
	}
	// first measure finishes in 4, then 3 from the boundary on
	want := []int{0, 1, 2, 3, 0, 1, 2, 0, 1, 2, 0}
	require.GreaterOrEqual(t, len(indices), len(want))
	assert.Equal(t, want, indices[:len(want)])
}

func TestStartWhilePlayingReplacesLoop(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)

	e.Start(120, nil)
	e.Start(140, nil)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&e.activeLoops))
	assert.Equal(t, 140, e.BPM())
	e.Stop()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&e.activeLoops))
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)

	e.Stop() // never started
	assert.False(t, e.Playing())

	e.Start(120, nil)
	assert.True(t, e.Playing())
	e.Stop()
	e.Stop()
	assert.False(t, e.Playing())
}

func TestStopHaltsScheduling(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)
	e.begin(120)
	e.runPass(e.gen)
	stepTo(e, f, 1.0, 0.025)
	e.Stop()

	n := len(f.times())
	stepTo(e, f, 3.0, 0.025)
	assert.Equal(t, n, len(f.times()), "no beats scheduled after stop")
}

func TestNotificationDelivery(t *testing.T) {
	f := newFakeBackend()
	e := NewEngine(f)

	var got atomic.Int32
	e.Start(120, func(ev BeatEvent) {
		got.Add(1)
	})

	// first beat sits 50ms out on the (frozen) clock; the dispatcher
	// sleeps roughly that long in wall time
	assert.Eventually(t, func() bool { return got.Load() >= 1 },
		500*time.Millisecond, 5*time.Millisecond)
	e.Stop()
}
