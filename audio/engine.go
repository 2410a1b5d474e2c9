package audio

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto"

	"go-metronome/debug"
)

// Engine renders the mixer to the sound device. It owns the render
// goroutine; the oto player's blocking Write paces rendering at the
// device's real rate, which is what makes the sample counter a clock.
//
// The engine's lifecycle belongs to a long-lived owner (main), never
// to a UI component: hosts may remount views without teardown intent,
// and rebuilding the device context on every mount causes audible
// dropouts.
type Engine struct {
	mix    *mixer
	ctx    *oto.Context
	player *oto.Player

	mu        sync.Mutex
	cond      *sync.Cond
	suspended bool
	closed    bool

	done chan struct{}
}

// NewEngine opens the sound device and starts rendering silence. The
// clock starts suspended; Resume starts it.
func NewEngine() (*Engine, error) {
	ctx, err := oto.NewContext(SampleRate, 1, 2, otoBufferSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	e := &Engine{
		mix:       newMixer(SampleRate),
		ctx:       ctx,
		player:    ctx.NewPlayer(),
		suspended: true,
		done:      make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	go e.renderLoop()
	return e, nil
}

func (e *Engine) Now() ClockTime { return e.mix.now() }

func (e *Engine) LoadSample(pcm []float32) SampleID { return e.mix.load(pcm) }

func (e *Engine) ScheduleSample(id SampleID, at ClockTime) { e.mix.schedule(id, at) }

// Resume unsuspends the clock.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.suspended = false
	e.mu.Unlock()
	e.cond.Signal()
}

// Suspend pauses rendering; the clock stops advancing. Clicks already
// scheduled stay queued and sound after Resume.
func (e *Engine) Suspend() {
	e.mu.Lock()
	e.suspended = true
	e.mu.Unlock()
}

// Close stops the render loop and releases the device.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.suspended = false
	e.mu.Unlock()
	e.cond.Signal()
	<-e.done

	if err := e.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	if err := e.ctx.Close(); err != nil {
		return fmt.Errorf("cannot close oto context: %w", err)
	}
	return nil
}

func (e *Engine) renderLoop() {
	defer close(e.done)

	buf := make([]float32, renderBlock)
	pcm := make([]byte, 0, renderBlock*2)

	for {
		e.mu.Lock()
		for e.suspended && !e.closed {
			e.cond.Wait()
		}
		if e.closed {
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		e.mix.render(buf)
		pcm = floatBufferTo16BitLE(buf, pcm[:0])
		if _, err := e.player.Write(pcm); err != nil {
			debug.Log("audio", "player write: %v", err)
			return
		}
	}
}
