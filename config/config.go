package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Tempo bounds shared by every BPM producer (explicit set, tap tempo,
// loaded config).
const (
	MinBPM = 20
	MaxBPM = 300
)

// Beats-per-measure bounds
const (
	MinBeatsPerMeasure = 2
	MaxBeatsPerMeasure = 12
)

// Config is the main configuration structure, persisted as JSON
type Config struct {
	LastTempo       int    `json:"lastTempo,omitempty"`
	BeatsPerMeasure int    `json:"beatsPerMeasure,omitempty"`
	MIDIPort        string `json:"midiPort,omitempty"`
	HapticsEnabled  bool   `json:"hapticsEnabled"`
}

// baseDir is overridable for tests
var baseDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-metronome"), nil
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LastTempo:       120,
		BeatsPerMeasure: 4,
		HapticsEnabled:  true,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	return baseDir()
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// normalize clamps loaded values into the supported ranges so a
// hand-edited file can never start the engine outside them
func (c *Config) normalize() {
	if c.LastTempo == 0 {
		c.LastTempo = 120
	}
	c.LastTempo = ClampBPM(c.LastTempo)
	if c.BeatsPerMeasure == 0 {
		c.BeatsPerMeasure = 4
	}
	c.BeatsPerMeasure = ClampBeatsPerMeasure(c.BeatsPerMeasure)
}

// ClampBPM clamps a tempo into [MinBPM, MaxBPM]
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// ClampBeatsPerMeasure clamps a measure length into the supported range
func ClampBeatsPerMeasure(n int) int {
	if n < MinBeatsPerMeasure {
		return MinBeatsPerMeasure
	}
	if n > MaxBeatsPerMeasure {
		return MaxBeatsPerMeasure
	}
	return n
}
