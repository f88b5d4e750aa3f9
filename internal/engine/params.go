package engine

import "harmonium/internal/rhythm"

// HarmonyMode selects between the fixed chord-progression player (Basic)
// and the full harmony driver (Driver, see internal/harmony.Driver).
type HarmonyMode int

const (
	HarmonyModeBasic HarmonyMode = iota
	HarmonyModeDriver
)

// HarmonyStrategy names an explicit strategy preference for the driver, or
// Auto to let it choose by tension/hysteresis. Carried for session-file
// fidelity with the source's MusicalParams; the driver built in
// internal/harmony only supports the Auto (hysteresis-driven) behavior, so
// any non-Auto value here is accepted but currently has no additional
// effect — see DESIGN.md.
type HarmonyStrategy int

const (
	HarmonyStrategySteedman HarmonyStrategy = iota
	HarmonyStrategyNeoRiemannian
	HarmonyStrategyParsimonious
	HarmonyStrategyAuto
)

// EngineParams is the high-level emotional control surface written by the
// control thread and read at most once per audio block via a TripleBuffer.
type EngineParams struct {
	Arousal    float32 // 0..1, energy/activation -> BPM
	Valence    float32 // -1..1, mood -> major/minor bias
	Density    float32 // 0..1, rhythmic complexity
	Tension    float32 // 0..1, harmonic/rhythmic dissonance
	Smoothness float32 // 0..1, melodic Hurst factor

	Algorithm   rhythm.Mode
	HarmonyMode HarmonyMode

	ChannelRouting [16]int32
	MutedChannels  [16]bool

	GainLead, GainBass, GainSnare, GainHat float32
	VelBaseBass, VelBaseSnare              uint8

	EnableSynthesisMorphing bool
}

// DefaultEngineParams mirrors the source's Default impl: moderate energy,
// slightly positive mood, light density/tension, smooth melody.
func DefaultEngineParams() EngineParams {
	p := EngineParams{
		Arousal:       0.5,
		Valence:       0.3,
		Density:       0.2,
		Tension:       0.4,
		Smoothness:    0.7,
		Algorithm:     rhythm.ModeEuclidean,
		HarmonyMode:   HarmonyModeDriver,
		GainLead:      0.8,
		GainBass:      0.8,
		GainSnare:     0.8,
		GainHat:       0.8,
		VelBaseBass:   80,
		VelBaseSnare:  90,
	}
	for i := range p.ChannelRouting {
		p.ChannelRouting[i] = -1
	}
	return p
}

// ComputeBPM derives a tempo from arousal: 70 BPM at rest, 180 BPM at full
// arousal.
func (p EngineParams) ComputeBPM() float32 {
	return 70 + p.Arousal*110
}

// MusicalParams is the fully-resolved, low-level technical control
// surface, published by the control thread through
// Engine.MusicalParamsWriter for "direct mode". Nothing in this module
// derives it from EngineParams, and the engine does not read it. Field set mirrors original_source/src/params.rs::MusicalParams.
type MusicalParams struct {
	BPM          float32
	MasterVolume float32

	EnableRhythm  bool
	EnableHarmony bool
	EnableMelody  bool
	EnableVoicing bool

	RhythmMode             rhythm.Mode
	RhythmSteps            int
	RhythmPulses           int
	RhythmRotation         int
	RhythmDensity          float32
	RhythmTension          float32
	RhythmSecondarySteps   int
	RhythmSecondaryPulses  int
	RhythmSecondaryRotation int
	FixedKick              bool

	HarmonyMode          HarmonyMode
	HarmonyStrategy      HarmonyStrategy
	HarmonyTension       float32
	HarmonyValence       float32
	HarmonyMeasuresPerChord int
	KeyRoot              uint8

	MelodySmoothness float32
	VoicingDensity   float32
	VoicingTension   float32
	MelodyOctave     int

	GainLead, GainBass, GainSnare, GainHat float32
	VelBaseBass, VelBaseSnare              uint8

	ChannelRouting [16]int32
	MutedChannels  [16]bool

	RecordWav      bool
	RecordMidi     bool
	RecordMusicXML bool
}

// DefaultMusicalParams mirrors the source's #[serde(default = ...)] field
// defaults.
func DefaultMusicalParams() MusicalParams {
	p := MusicalParams{
		BPM:                     125,
		MasterVolume:            0.8,
		EnableRhythm:            true,
		EnableHarmony:           true,
		EnableMelody:            true,
		EnableVoicing:           false,
		RhythmMode:              rhythm.ModeEuclidean,
		RhythmSteps:             16,
		RhythmPulses:            4,
		RhythmDensity:           0.5,
		RhythmTension:           0.3,
		RhythmSecondarySteps:    12,
		RhythmSecondaryPulses:   3,
		HarmonyMode:             HarmonyModeDriver,
		HarmonyStrategy:         HarmonyStrategyAuto,
		HarmonyTension:          0.3,
		HarmonyMeasuresPerChord: 2,
		MelodySmoothness:        0.7,
		VoicingDensity:          0.5,
		VoicingTension:          0.3,
		MelodyOctave:            4,
		GainLead:                0.8,
		GainBass:                0.8,
		GainSnare:               0.8,
		GainHat:                 0.8,
		VelBaseBass:             80,
		VelBaseSnare:            90,
	}
	for i := range p.ChannelRouting {
		p.ChannelRouting[i] = -1
	}
	return p
}

// CurrentState is the engine's internally-smoothed copy of the continuous
// targets in MusicalParams/EngineParams. update_controls morphs it toward
// the latest target by a per-parameter linear-interpolation rate every
// block, which is why sudden UI changes never introduce audio artifacts.
type CurrentState struct {
	Arousal    float32
	Valence    float32
	Density    float32
	Tension    float32
	Smoothness float32
	BPM        float32
}

// DefaultCurrentState matches DefaultEngineParams at rest.
func DefaultCurrentState() CurrentState {
	return CurrentState{
		Arousal:    0.5,
		Valence:    0.3,
		Density:    0.2,
		Tension:    0.4,
		Smoothness: 0.7,
		BPM:        125,
	}
}

// Smoothing rates: per-block linear-interpolation factors toward target
// values, one rate per smoothed parameter.
const (
	smoothArousal    = 0.06
	smoothValence    = 0.04
	smoothDensity    = 0.02
	smoothTension    = 0.08
	smoothSmoothness = 0.05
	smoothBPM        = 0.05
)

func lerp(current, target, rate float32) float32 {
	return current + (target-current)*rate
}

// ControlMode holds the control-thread-owned switches between emotion and
// direct-parameter modes, plus global module enable overrides that apply
// regardless of mode.
type ControlMode struct {
	UseEmotionMode bool
	DirectParams   MusicalParams

	EnableRhythm  bool
	EnableHarmony bool
	EnableMelody  bool
	EnableVoicing bool
	FixedKick     bool
}

// DefaultControlMode starts in emotion mode with every module enabled.
func DefaultControlMode() ControlMode {
	return ControlMode{
		UseEmotionMode: true,
		DirectParams:   DefaultMusicalParams(),
		EnableRhythm:   true,
		EnableHarmony:  true,
		EnableMelody:   true,
		EnableVoicing:  false,
	}
}
