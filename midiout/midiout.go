// Package midiout mirrors beat notifications to an external MIDI port,
// for driving a hardware click or a DAW metronome track. Sends are
// best-effort and happen on the notification channel, never on the
// audio-accurate path.
package midiout

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-metronome/debug"
)

// GM side stick / claves for tick, hand clap for accent: audible as a
// click on any GM sound source.
const (
	accentNote = 39
	tickNote   = 75

	accentVelocity = 120
	tickVelocity   = 80

	channel = 9 // GM percussion, 0-based
)

// Sender lazily opens MIDI out ports by name and sends beat notes.
type Sender struct {
	mu      sync.Mutex
	port    string
	senders map[string]func(gomidi.Message) error
}

func NewSender() *Sender {
	return &Sender{senders: make(map[string]func(gomidi.Message) error)}
}

// Ports lists the available MIDI output port names.
func Ports() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// SetPort selects the output port. Empty disables MIDI output.
func (s *Sender) SetPort(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = name
}

// Beat sends the click note for one beat. Failures are logged and
// dropped.
func (s *Sender) Beat(isAccent bool) {
	send := s.sender()
	if send == nil {
		return
	}

	note, vel := uint8(tickNote), uint8(tickVelocity)
	if isAccent {
		note, vel = accentNote, accentVelocity
	}
	if err := send(gomidi.NoteOn(channel, note, vel)); err != nil {
		debug.Log("midiout", "note on: %v", err)
		return
	}
	if err := send(gomidi.NoteOff(channel, note)); err != nil {
		debug.Log("midiout", "note off: %v", err)
	}
}

// sender returns the send func for the configured port, opening it on
// first use.
func (s *Sender) sender() func(gomidi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == "" {
		return nil
	}
	if send, ok := s.senders[s.port]; ok {
		return send
	}

	for _, port := range gomidi.GetOutPorts() {
		if port.String() == s.port {
			send, err := gomidi.SendTo(port)
			if err != nil {
				debug.Log("midiout", "open %q: %v", s.port, err)
				return nil
			}
			s.senders[s.port] = send
			return send
		}
	}
	debug.Log("midiout", "port %q not found", s.port)
	return nil
}

// Close shuts down the MIDI driver.
func (s *Sender) Close() {
	gomidi.CloseDriver()
}
