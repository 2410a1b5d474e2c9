package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-metronome/audio"
	"go-metronome/config"
	"go-metronome/debug"
	"go-metronome/haptics"
	"go-metronome/metronome"
	"go-metronome/midiout"
	"go-metronome/theme"
	"go-metronome/tui"
	"go-metronome/wake"
)

func main() {
	debugFlag := flag.Bool("debug", false, "write a debug log to ~/.config/go-metronome/debug.log")
	listMIDI := flag.Bool("list-midi", false, "list MIDI output ports and exit")
	flag.Parse()

	if *debugFlag {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	if *listMIDI {
		for _, name := range midiout.Ports() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// The audio engine outlives the UI: main owns it, the TUI only
	// consumes state. A failed device leaves the manager not-ready
	// instead of aborting, so the rest of the app still works.
	var backend audio.Backend
	engine, err := audio.NewEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "audio: %v\n", err)
		debug.Log("main", "audio init failed: %v", err)
	} else {
		backend = engine
		defer engine.Close()
	}

	var driver haptics.Driver = haptics.Noop{}
	if cfg.HapticsEnabled {
		driver = haptics.Terminal{}
	}

	var mirror metronome.BeatMirror
	var sender *midiout.Sender
	if cfg.MIDIPort != "" {
		sender = midiout.NewSender()
		sender.SetPort(cfg.MIDIPort)
		mirror = sender
		defer sender.Close()
	}

	manager := metronome.NewManager(backend, driver, wake.NewCounted(wake.Noop{}), mirror, cfg)
	defer manager.Close()

	m := tui.NewModel(manager, theme.New())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	st := manager.GetState()
	cfg.LastTempo = st.Tempo
	cfg.BeatsPerMeasure = st.BeatsPerMeasure
	if err := cfg.Save(); err != nil {
		debug.Log("main", "config save: %v", err)
	}
}
