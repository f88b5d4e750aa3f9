// Package config loads a session description from YAML, the starting
// parameters for a run of the engine, and turns them into the engine's own
// EngineParams values.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"harmonium/internal/chord"
	"harmonium/internal/engine"
	"harmonium/internal/rhythm"
)

// Session is the top-level YAML document describing one run.
type Session struct {
	Title string `yaml:"title,omitempty"`
	Key   string `yaml:"key"`           // e.g. "C", "F#", "Bb"
	Mode  string `yaml:"mode,omitempty"` // "major" or "minor", default major
	Steps int    `yaml:"steps,omitempty"`

	Emotion *EmotionConfig `yaml:"emotion,omitempty"`
	Rhythm  *RhythmConfig  `yaml:"rhythm,omitempty"`
	Harmony *HarmonyConfig `yaml:"harmony,omitempty"`
	Melody  *MelodyConfig  `yaml:"melody,omitempty"`
	Voicing *VoicingConfig `yaml:"voicing,omitempty"`
	Mix     *MixConfig     `yaml:"mix,omitempty"`
	Record  *RecordConfig  `yaml:"record,omitempty"`
}

// EmotionConfig seeds the engine's high-level emotional controls.
type EmotionConfig struct {
	Arousal     float32 `yaml:"arousal,omitempty"`
	Valence     float32 `yaml:"valence,omitempty"`
	Density     float32 `yaml:"density,omitempty"`
	Tension     float32 `yaml:"tension,omitempty"`
	Smoothness  float32 `yaml:"smoothness,omitempty"`
}

// RhythmConfig configures the primary and secondary sequencers.
type RhythmConfig struct {
	Algorithm string `yaml:"algorithm,omitempty"` // "euclidean" or "perfect_balance"

	Pulses   int `yaml:"pulses,omitempty"`
	Rotation int `yaml:"rotation,omitempty"`

	SecondaryPulses   int `yaml:"secondary_pulses,omitempty"`
	SecondaryRotation int `yaml:"secondary_rotation,omitempty"`
}

// HarmonyConfig selects the progression engine and its style.
type HarmonyConfig struct {
	Mode     string `yaml:"mode,omitempty"`     // "basic" or "driver"
	Strategy string `yaml:"strategy,omitempty"` // steedman, neo_riemannian, parsimonious, auto
}

// MelodyConfig seeds the melody navigator.
type MelodyConfig struct {
	Octave     int     `yaml:"octave,omitempty"`
	Smoothness float32 `yaml:"smoothness,omitempty"`
}

// VoicingConfig selects the chord voicer.
type VoicingConfig struct {
	Style     string `yaml:"style,omitempty"` // "shell" or "block_chord"
	NumVoices int    `yaml:"num_voices,omitempty"`
}

// MixConfig sets per-instrument output gains and mutes.
type MixConfig struct {
	GainLead  float64  `yaml:"gain_lead,omitempty"`
	GainBass  float64  `yaml:"gain_bass,omitempty"`
	GainSnare float64  `yaml:"gain_snare,omitempty"`
	GainHat   float64  `yaml:"gain_hat,omitempty"`
	Mute      []string `yaml:"mute,omitempty"` // any of "bass","lead","snare","hat"
}

// RecordConfig controls which sinks capture the session.
type RecordConfig struct {
	Wav       string `yaml:"wav,omitempty"`       // output path, empty disables
	Midi      string `yaml:"midi,omitempty"`      // output path, empty disables
	MusicXML  string `yaml:"musicxml,omitempty"`  // output path, empty disables
	SoundFont string `yaml:"soundfont,omitempty"` // explicit .sf2 path
}

// LoadSession reads and parses a session file, filling in defaults for
// anything the document omits.
func LoadSession(filename string) (*Session, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.applyDefaults()
	return &s, nil
}

func (s *Session) applyDefaults() {
	if s.Key == "" {
		s.Key = "C"
	}
	if s.Steps == 0 {
		s.Steps = 16
	}
	if s.Emotion == nil {
		s.Emotion = &EmotionConfig{Arousal: 0.5, Valence: 0.2, Density: 0.5, Tension: 0.3, Smoothness: 0.5}
	}
	if s.Rhythm == nil {
		s.Rhythm = &RhythmConfig{Algorithm: "euclidean", Pulses: 4}
	}
	if s.Rhythm.Algorithm == "" {
		s.Rhythm.Algorithm = "euclidean"
	}
	if s.Rhythm.Pulses == 0 {
		s.Rhythm.Pulses = 4
	}
	if s.Harmony == nil {
		s.Harmony = &HarmonyConfig{Mode: "basic"}
	}
	if s.Harmony.Mode == "" {
		s.Harmony.Mode = "basic"
	}
	if s.Melody == nil {
		s.Melody = &MelodyConfig{Octave: 4, Smoothness: 0.5}
	}
	if s.Melody.Octave == 0 {
		s.Melody.Octave = 4
	}
	if s.Voicing == nil {
		s.Voicing = &VoicingConfig{Style: "shell"}
	}
	if s.Voicing.Style == "" {
		s.Voicing.Style = "shell"
	}
	if s.Mix == nil {
		s.Mix = &MixConfig{GainLead: 1, GainBass: 1, GainSnare: 1, GainHat: 1}
	}
	if s.Record == nil {
		s.Record = &RecordConfig{}
	}
}

var noteMap = map[string]chord.PitchClass{
	"C": 0, "C#": 1, "DB": 1,
	"D": 2, "D#": 3, "EB": 3,
	"E": 4,
	"F": 5, "F#": 6, "GB": 6,
	"G": 7, "G#": 8, "AB": 8,
	"A": 9, "A#": 10, "BB": 10,
	"B": 11,
}

// ParseKey resolves a key name like "C", "F#", or "Bb" into a PitchClass.
func ParseKey(name string) (chord.PitchClass, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if pc, ok := noteMap[key]; ok {
		return pc, nil
	}
	return 0, fmt.Errorf("unrecognized key %q", name)
}

// KeyRoot resolves the session's configured key, defaulting to C on a bad
// or missing value.
func (s *Session) KeyRoot() chord.PitchClass {
	pc, err := ParseKey(s.Key)
	if err != nil {
		return 0
	}
	return pc
}

// IsMinor reports whether the session's mode is minor.
func (s *Session) IsMinor() bool {
	return strings.EqualFold(s.Mode, "minor")
}

// EngineParams converts the session's emotion block into the engine's
// high-level control struct.
func (s *Session) EngineParams() engine.EngineParams {
	p := engine.DefaultEngineParams()
	p.Arousal = s.Emotion.Arousal
	p.Valence = s.Emotion.Valence
	p.Density = s.Emotion.Density
	p.Tension = s.Emotion.Tension
	p.Smoothness = s.Emotion.Smoothness

	if s.Rhythm.Algorithm == "perfect_balance" {
		p.Algorithm = rhythm.ModePerfectBalance
	} else {
		p.Algorithm = rhythm.ModeEuclidean
	}

	if s.Harmony.Mode == "driver" {
		p.HarmonyMode = engine.HarmonyModeDriver
	} else {
		p.HarmonyMode = engine.HarmonyModeBasic
	}

	p.GainLead = float32(s.Mix.GainLead)
	p.GainBass = float32(s.Mix.GainBass)
	p.GainSnare = float32(s.Mix.GainSnare)
	p.GainHat = float32(s.Mix.GainHat)

	for _, name := range s.Mix.Mute {
		if ch, ok := muteChannel(name); ok {
			p.MutedChannels[ch] = true
		}
	}

	return p
}

func muteChannel(name string) (int, bool) {
	switch strings.ToLower(name) {
	case "bass":
		return 0, true
	case "lead":
		return 1, true
	case "snare":
		return 2, true
	case "hat":
		return 3, true
	default:
		return 0, false
	}
}
