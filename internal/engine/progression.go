package engine

import "harmonium/internal/chord"

// ChordStep is one entry in a Basic-mode progression: a root offset from
// the session key plus a quality, expressed independently of key so the
// same palette can be transposed to any KeyRoot.
type ChordStep struct {
	RootOffset int32
	Quality    chord.Type
}

// Progression is a fixed, looping sequence of ChordSteps, the Basic-mode
// counterpart of harmony.Driver. There is no generative logic here:
// NewEngine picks a palette once with SelectPalette and the engine just
// walks it.
type Progression struct {
	Name  string
	Steps []ChordStep
}

// ChordAt returns the chord at index i (wrapping), resolved against a key
// root.
func (p Progression) ChordAt(i int, keyRoot chord.PitchClass) chord.Chord {
	if len(p.Steps) == 0 {
		return chord.New(int(keyRoot), chord.Major)
	}
	s := p.Steps[((i%len(p.Steps))+len(p.Steps))%len(p.Steps)]
	return chord.New(int(keyRoot)+int(s.RootOffset), s.Quality)
}

// Len reports the number of steps in the progression's cycle.
func (p Progression) Len() int { return len(p.Steps) }

// Built-in palettes, analogous to the teacher's YAML chord_progression
// sessions (see parser.ChordProgression) but expressed in semitone offsets
// from the key root instead of absolute chord names so they transpose with
// KeyRoot.
var (
	progressionPopI_V_vi_IV = Progression{
		Name: "pop-I-V-vi-IV",
		Steps: []ChordStep{
			{RootOffset: 0, Quality: chord.Major},
			{RootOffset: 7, Quality: chord.Major},
			{RootOffset: 9, Quality: chord.Minor},
			{RootOffset: 5, Quality: chord.Major},
		},
	}
	progressionJazzii_V_I = Progression{
		Name: "jazz-ii-V-I",
		Steps: []ChordStep{
			{RootOffset: 2, Quality: chord.Minor7},
			{RootOffset: 7, Quality: chord.Dominant7},
			{RootOffset: 0, Quality: chord.Major7},
			{RootOffset: 0, Quality: chord.Major7},
		},
	}
	progressionMinorVibe = Progression{
		Name: "minor-vibe",
		Steps: []ChordStep{
			{RootOffset: 0, Quality: chord.Minor7},
			{RootOffset: 5, Quality: chord.Minor7},
			{RootOffset: 8, Quality: chord.Major7},
			{RootOffset: 7, Quality: chord.Dominant7},
		},
	}
	progressionTenseCycle = Progression{
		Name: "tense-cycle",
		Steps: []ChordStep{
			{RootOffset: 0, Quality: chord.Minor},
			{RootOffset: 1, Quality: chord.Diminished},
			{RootOffset: 6, Quality: chord.Dominant7},
			{RootOffset: 0, Quality: chord.Minor},
		},
	}
)

// DefaultPalettes lists every built-in progression, in selection order.
func DefaultPalettes() []Progression {
	return []Progression{
		progressionPopI_V_vi_IV,
		progressionJazzii_V_I,
		progressionMinorVibe,
		progressionTenseCycle,
	}
}

// SelectPalette picks a built-in progression by valence/tension: brighter
// moods favor the pop and jazz cycles, darker or tenser moods favor the
// minor and dissonant ones. Mirrors how the driver's own strategy
// selection leans on the same two axes (see harmony.Driver).
func SelectPalette(valence, tension float32) Progression {
	switch {
	case tension > 0.6:
		return progressionTenseCycle
	case valence < -0.1:
		return progressionMinorVibe
	case valence > 0.3:
		return progressionPopI_V_vi_IV
	default:
		return progressionJazzii_V_I
	}
}

// measuresPerChord mirrors the source's tick(): high tension shortens the
// harmonic rhythm to one measure per chord, otherwise two.
func measuresPerChord(tension float32) int {
	if tension > 0.6 {
		return 1
	}
	return 2
}
