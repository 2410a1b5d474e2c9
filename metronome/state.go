package metronome

// PlayState is the orchestrator's state machine position.
type PlayState int

const (
	StateIdle PlayState = iota
	StatePlaying
)

func (s PlayState) String() string {
	if s == StatePlaying {
		return "playing"
	}
	return "idle"
}

// State is a read-only snapshot for UI consumers. Single writer (the
// Manager), many readers.
type State struct {
	State           PlayState `json:"state"`
	Tempo           int       `json:"tempo"`
	BeatsPerMeasure int       `json:"beatsPerMeasure"`
	BeatIndex       int       `json:"beatIndex"`
	PendulumAngle   float64   `json:"pendulumAngle"` // degrees
	TapCount        int       `json:"tapCount"`
	Ready           bool      `json:"ready"`
}
