package metronome

import (
	"math"
	"sync"
	"time"

	"go-metronome/audio"
	"go-metronome/config"
	"go-metronome/debug"
	"go-metronome/haptics"
	"go-metronome/wake"
)

// Pendulum parameters
const (
	pendulumFPS      = 60
	pendulumMaxAngle = 30.0 // degrees
)

// BeatMirror receives best-effort copies of beat notifications (e.g.
// the MIDI output). Calls happen off the audio-accurate path.
type BeatMirror interface {
	Beat(isAccent bool)
}

// Manager orchestrates the metronome: it owns the idle/playing state
// machine, funnels every BPM producer (explicit set, tap tempo) into
// one writer toward the engine, drives the pendulum phase, and fans
// beat notifications out to haptics and UI.
type Manager struct {
	engine   *Engine
	tap      *TapTempo
	haptics  haptics.Driver
	wakeLock wake.Lock
	mirror   BeatMirror // may be nil

	mu              sync.Mutex
	state           PlayState
	bpm             int
	beatsPerMeasure int
	beatIndex       int
	pendulumAngle   float64
	phaseAnchor     audio.ClockTime // a beat-center instant on the audio clock
	pendulumStop    chan struct{}

	// UpdateChan notifies the TUI that readable state changed.
	UpdateChan chan struct{}
}

// NewManager wires the orchestrator. A nil backend means the audio
// subsystem failed to initialize; the manager is then permanently
// not-ready and Start is a logged no-op (resolved externally by
// rebuilding the manager with a working backend).
func NewManager(backend audio.Backend, h haptics.Driver, l wake.Lock, mirror BeatMirror, cfg *config.Config) *Manager {
	m := &Manager{
		tap:             NewTapTempo(),
		haptics:         h,
		wakeLock:        l,
		mirror:          mirror,
		bpm:             config.ClampBPM(cfg.LastTempo),
		beatsPerMeasure: config.ClampBeatsPerMeasure(cfg.BeatsPerMeasure),
		UpdateChan:      make(chan struct{}, 1),
	}
	if backend != nil {
		m.engine = NewEngine(backend)
		m.engine.SetBeatsPerMeasure(m.beatsPerMeasure)
	}
	return m
}

// Ready reports whether the audio backend initialized.
func (m *Manager) Ready() bool {
	return m.engine != nil
}

// Start transitions idle -> playing. No-op when already playing or
// when the audio backend is not ready.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.engine == nil {
		m.mu.Unlock()
		debug.Log("manager", "start ignored: audio backend not ready")
		return
	}
	if m.state == StatePlaying {
		m.mu.Unlock()
		return
	}
	m.state = StatePlaying
	m.beatIndex = 0
	bpm := m.bpm
	m.mu.Unlock()

	m.tap.Reset()
	if err := m.wakeLock.Acquire(); err != nil {
		debug.Log("manager", "keep-awake acquire: %v", err)
	}

	first := m.engine.Start(bpm, m.onBeat)

	m.mu.Lock()
	m.phaseAnchor = first
	m.pendulumStop = make(chan struct{})
	stop := m.pendulumStop
	m.mu.Unlock()

	go m.pendulumLoop(stop)
	m.notifyUpdate()
}

// Stop transitions playing -> idle. Idempotent. Clicks already inside
// the engine's lookahead window play out.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == StateIdle {
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	m.beatIndex = 0
	m.pendulumAngle = 0
	stop := m.pendulumStop
	m.pendulumStop = nil
	m.mu.Unlock()

	m.engine.Stop()
	if stop != nil {
		close(stop)
	}
	if err := m.wakeLock.Release(); err != nil {
		debug.Log("manager", "keep-awake release: %v", err)
	}
	m.notifyUpdate()
}

// Toggle flips between idle and playing.
func (m *Manager) Toggle() {
	m.mu.Lock()
	playing := m.state == StatePlaying
	m.mu.Unlock()
	if playing {
		m.Stop()
	} else {
		m.Start()
	}
}

// SetBPM is the sole writer of tempo into the engine. Out-of-range
// values are clamped, never rejected. A live change re-anchors the
// pendulum so the animation tracks the new period without a jump.
func (m *Manager) SetBPM(bpm int) {
	bpm = config.ClampBPM(bpm)

	m.mu.Lock()
	old := m.bpm
	m.bpm = bpm
	playing := m.state == StatePlaying
	if playing && m.engine != nil && old != bpm {
		// preserve the current phase fraction under the new period so
		// the pendulum keeps moving smoothly
		now := m.engine.Now()
		oldPeriod := 60.0 / float64(old)
		newPeriod := 60.0 / float64(bpm)
		phase := math.Mod(float64(now-m.phaseAnchor), oldPeriod) / oldPeriod
		m.phaseAnchor = now - audio.ClockTime(phase*newPeriod)
	}
	m.mu.Unlock()

	if playing && m.engine != nil {
		m.engine.SetBPM(bpm)
	}
	m.notifyUpdate()
}

// IncrementBPM nudges the tempo by delta.
func (m *Manager) IncrementBPM(delta int) {
	m.mu.Lock()
	bpm := m.bpm
	m.mu.Unlock()
	m.SetBPM(bpm + delta)
}

// SetBeatsPerMeasure changes the measure length; mid-playback changes
// land on the next measure boundary.
func (m *Manager) SetBeatsPerMeasure(n int) {
	n = config.ClampBeatsPerMeasure(n)
	m.mu.Lock()
	m.beatsPerMeasure = n
	m.mu.Unlock()
	if m.engine != nil {
		m.engine.SetBeatsPerMeasure(n)
	}
	m.notifyUpdate()
}

// Tap records a tap-tempo tap; once enough taps exist, the estimate
// funnels through SetBPM like any other tempo change.
func (m *Manager) Tap() {
	if bpm, ok := m.tap.Tap(time.Now()); ok {
		m.SetBPM(bpm)
		return
	}
	m.notifyUpdate()
}

// GetState returns a snapshot for UI consumers.
func (m *Manager) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		State:           m.state,
		Tempo:           m.bpm,
		BeatsPerMeasure: m.beatsPerMeasure,
		BeatIndex:       m.beatIndex,
		PendulumAngle:   m.pendulumAngle,
		TapCount:        m.tap.Count(),
		Ready:           m.engine != nil,
	}
}

// Close tears down playback state. The audio backend itself belongs to
// a longer-lived owner and is deliberately not closed here.
func (m *Manager) Close() {
	m.Stop()
}

// onBeat runs on the engine's notification channel, near each beat's
// sounded time.
func (m *Manager) onBeat(ev BeatEvent) {
	m.mu.Lock()
	m.beatIndex = ev.BeatIndex
	m.mu.Unlock()

	intensity := haptics.Light
	if ev.IsAccent {
		intensity = haptics.Strong
	}
	// fire-and-forget: a slow or failing driver must not delay the
	// next notification
	go func() {
		if err := m.haptics.Pulse(intensity); err != nil {
			debug.Log("manager", "haptic pulse: %v", err)
		}
	}()
	if m.mirror != nil {
		go m.mirror.Beat(ev.IsAccent)
	}

	m.notifyUpdate()
}

// pendulumLoop recomputes the visual phase at a fixed rate. It reads
// the audio clock but is otherwise independent of the audio-accurate
// path; UI-thread jitter here is fine.
func (m *Manager) pendulumLoop(stop chan struct{}) {
	ticker := time.NewTicker(time.Second / pendulumFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.state != StatePlaying {
				m.mu.Unlock()
				return
			}
			period := 60.0 / float64(m.bpm)
			elapsed := math.Mod(float64(m.engine.Now()-m.phaseAnchor), period)
			if elapsed < 0 {
				elapsed += period
			}
			// sin crosses zero at each beat instant, so the pendulum
			// passes center exactly on the click
			angle := math.Sin(2*math.Pi*elapsed/period) * pendulumMaxAngle
			m.pendulumAngle = angle
			m.mu.Unlock()

			debug.LogEvery(300, "pendulum", "angle=%.1f", angle)
			m.notifyUpdate()
		}
	}
}

// notifyUpdate pokes the TUI without ever blocking.
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
