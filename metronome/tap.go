package metronome

import (
	"sync"
	"time"

	"go-metronome/config"
)

const (
	// tapWindow is the max taps retained; older taps are evicted.
	tapWindow = 8
	// tapMinimum taps are needed before an estimate is produced.
	tapMinimum = 4
	// tapTimeout: a pause this long means new tempo intent, the
	// buffer restarts from the incoming tap.
	tapTimeout = 2 * time.Second
	// minMeanInterval guards against duplicate timestamps; a mean
	// below this is insufficient data, not a tempo.
	minMeanInterval = time.Millisecond
)

// TapTempo estimates BPM from the timing of repeated user taps.
type TapTempo struct {
	mu   sync.Mutex
	taps []time.Time
}

func NewTapTempo() *TapTempo {
	return &TapTempo{}
}

// Tap records a tap at the given instant and returns the current BPM
// estimate. ok is false until enough taps exist. The caller passes the
// instant so tests can drive a simulated clock.
func (t *TapTempo) Tap(now time.Time) (bpm int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.taps) > 0 && now.Sub(t.taps[len(t.taps)-1]) > tapTimeout {
		t.taps = t.taps[:0]
	}

	t.taps = append(t.taps, now)
	if len(t.taps) > tapWindow {
		t.taps = t.taps[1:]
	}

	if len(t.taps) < tapMinimum {
		return 0, false
	}

	var total time.Duration
	for i := 1; i < len(t.taps); i++ {
		total += t.taps[i].Sub(t.taps[i-1])
	}
	mean := total / time.Duration(len(t.taps)-1)
	if mean < minMeanInterval {
		return 0, false
	}

	bpm = int(float64(time.Minute)/float64(mean) + 0.5)
	return config.ClampBPM(bpm), true
}

// Reset clears the buffer and tap counter.
func (t *TapTempo) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.taps = t.taps[:0]
}

// Count reports how many taps are buffered, for UI progress feedback.
func (t *TapTempo) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.taps)
}
