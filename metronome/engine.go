// Package metronome contains the beat timing core: the lookahead
// scheduling engine, the tap-tempo estimator, and the orchestrating
// manager that UI consumers talk to.
package metronome

import (
	"sync"
	"sync/atomic"
	"time"

	"go-metronome/audio"
	"go-metronome/config"
	"go-metronome/debug"
)

// BeatEvent is one scheduled beat. Created by the scheduler, consumed
// once by the audio backend and once by the notification channel, then
// discarded.
type BeatEvent struct {
	BeatIndex   int
	ScheduledAt audio.ClockTime
	IsAccent    bool
}

const (
	// loopInterval is how often the scheduler re-arms. Must be short
	// enough that at least one pass happens per beat at MaxBPM
	// (200ms/beat at 300 BPM), else a beat could be skipped before it
	// enters the window.
	loopInterval = 25 * time.Millisecond

	// lookaheadWindow is the horizon within which beats are handed to
	// the audio backend. Must exceed loopInterval so a delayed pass
	// leaves no coverage gap.
	lookaheadWindow = audio.ClockTime(0.100)

	// startOffset delays the first beat slightly so it is never
	// scheduled in the past.
	startOffset = audio.ClockTime(0.050)
)

// Engine maintains a lookahead queue of beats against the audio
// backend's clock. Host timers only decide what to schedule next; the
// backend decides when sound occurs.
//
// At most one scheduling loop is active per engine: Start while
// already started replaces the loop rather than duplicating it.
type Engine struct {
	backend audio.Backend
	accent  audio.SampleID
	tick    audio.SampleID

	mu              sync.Mutex
	bpm             int
	beatsPerMeasure int
	pendingBeats    int // beats-per-measure change waiting for a measure boundary
	nextBeatTime    audio.ClockTime
	beatIndex       int
	playing         bool
	gen             uint64 // invalidates passes from a replaced loop
	stopCh          chan struct{}
	notifyCh        chan BeatEvent

	activeLoops int32 // instrumentation, read by tests
}

// NewEngine loads the click samples into the backend and returns an
// engine ready to start.
func NewEngine(backend audio.Backend) *Engine {
	return &Engine{
		backend:         backend,
		accent:          backend.LoadSample(audio.AccentClick(audio.SampleRate)),
		tick:            backend.LoadSample(audio.TickClick(audio.SampleRate)),
		bpm:             120,
		beatsPerMeasure: 4,
	}
}

// Start begins playback at the given tempo. onBeat is invoked on the
// notification channel near each beat's sounded time; it drives only
// visuals and haptics and tolerates ordinary jitter. Returns the clock
// position of the first beat.
func (e *Engine) Start(bpm int, onBeat func(BeatEvent)) audio.ClockTime {
	first, gen, stopCh, notifyCh := e.begin(bpm)
	go e.scheduleLoop(gen, stopCh)
	go e.notifyLoop(stopCh, notifyCh, onBeat)
	e.runPass(gen)
	return first
}

// begin resets scheduler state and replaces any running loop. Split
// from Start so tests can drive passes without live goroutines.
func (e *Engine) begin(bpm int) (first audio.ClockTime, gen uint64, stopCh chan struct{}, notifyCh chan BeatEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		// replace, never duplicate
		close(e.stopCh)
		debug.Log("engine", "start while playing, replacing loop")
	}
	e.gen++
	e.bpm = config.ClampBPM(bpm)
	e.beatIndex = 0
	if e.pendingBeats != 0 {
		e.beatsPerMeasure = e.pendingBeats
		e.pendingBeats = 0
	}

	e.backend.Resume()
	e.nextBeatTime = e.backend.Now() + startOffset
	e.playing = true
	e.stopCh = make(chan struct{})
	e.notifyCh = make(chan BeatEvent, 64)
	return e.nextBeatTime, e.gen, e.stopCh, e.notifyCh
}

// Stop halts scheduling. Idempotent. Beats already handed to the
// backend inside the lookahead window finish sounding; the
// notification callback is dropped immediately.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	e.playing = false
	close(e.stopCh)
}

// SetBPM changes the tempo, clamped to the supported range. Only
// future advances use the new interval: beats already inside the
// lookahead window keep their original timing, so a live tempo change
// is glitch-free.
func (e *Engine) SetBPM(bpm int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bpm = config.ClampBPM(bpm)
}

// SetBeatsPerMeasure changes the measure length. While playing it
// takes effect at the next measure boundary, never retroactively.
func (e *Engine) SetBeatsPerMeasure(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n = config.ClampBeatsPerMeasure(n)
	if !e.playing {
		e.beatsPerMeasure = n
		e.pendingBeats = 0
		return
	}
	if n == e.beatsPerMeasure {
		e.pendingBeats = 0
		return
	}
	e.pendingBeats = n
}

// BPM returns the current tempo.
func (e *Engine) BPM() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bpm
}

// Playing reports whether a scheduling loop is active.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Now exposes the backend clock for consumers that phase-align to it.
func (e *Engine) Now() audio.ClockTime {
	return e.backend.Now()
}

func (e *Engine) scheduleLoop(gen uint64, stopCh chan struct{}) {
	atomic.AddInt32(&e.activeLoops, 1)
	defer atomic.AddInt32(&e.activeLoops, -1)

	ticker := time.NewTicker(loopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			e.runPass(gen)
		}
	}
}

// runPass fills the lookahead window: every beat due before
// now+lookaheadWindow is handed to the audio backend at its exact
// clock position and queued for notification. Events leave here
// strictly increasing in index and time.
func (e *Engine) runPass(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing || gen != e.gen {
		return
	}

	lookaheadEnd := e.backend.Now() + lookaheadWindow
	for e.nextBeatTime < lookaheadEnd {
		ev := BeatEvent{
			BeatIndex:   e.beatIndex,
			ScheduledAt: e.nextBeatTime,
			IsAccent:    e.beatIndex == 0,
		}

		id := e.tick
		if ev.IsAccent {
			id = e.accent
		}
		e.backend.ScheduleSample(id, ev.ScheduledAt)

		select {
		case e.notifyCh <- ev:
		default:
			// capacity dwarfs the window's worst case; if this ever
			// fires the dispatcher is wedged
			debug.Log("engine", "notify queue full, dropping beat %d", ev.BeatIndex)
		}

		e.nextBeatTime += audio.ClockTime(60.0 / float64(e.bpm))
		e.beatIndex++
		if e.beatIndex >= e.beatsPerMeasure {
			e.beatIndex = 0
			if e.pendingBeats != 0 {
				e.beatsPerMeasure = e.pendingBeats
				e.pendingBeats = 0
			}
		}
	}
}

// notifyLoop is the single executor queue for UI/haptic notification:
// it drains beats in order and sleeps until each is due. This channel
// tolerates host jitter; audible timing never depends on it.
func (e *Engine) notifyLoop(stopCh chan struct{}, ch chan BeatEvent, onBeat func(BeatEvent)) {
	for {
		select {
		case <-stopCh:
			return
		case ev := <-ch:
			delay := time.Duration(float64(ev.ScheduledAt-e.backend.Now()) * float64(time.Second))
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-stopCh:
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if onBeat != nil {
				onBeat(ev)
			}
		}
	}
}
