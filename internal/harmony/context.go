// Package harmony implements the three chord-progression strategies
// (Steedman functional grammar, Neo-Riemannian transformations,
// parsimonious voice-leading), the pivot detector that blends them, and
// the driver that orchestrates strategy selection, anti-loop memory and
// forced cadences.
package harmony

import "harmonium/internal/chord"

// TransitionType classifies how a HarmonyDecision's chord was reached.
type TransitionType int

const (
	Functional TransitionType = iota
	Transformational
	Pivot
)

// Context is the read-only input every strategy consults to propose its
// next chord.
type Context struct {
	CurrentChord    chord.Chord
	GlobalKey       chord.PitchClass
	Tension         float32
	Valence         float32
	MeasureInPhrase int
	BeatInMeasure   int
}

// Decision is a strategy's proposal.
type Decision struct {
	NextChord      chord.Chord
	TransitionType TransitionType
	SuggestedScale []chord.PitchClass
}

// RNG is the explicit random source every strategy call takes. The audio
// thread owns one instance; the control thread owns a separate one — an
// RNG is never shared across the two domains.
type RNG interface {
	// Float32 returns a pseudo-random value in [0,1).
	Float32() float32
	// IntN returns a pseudo-random value in [0,n).
	IntN(n int) int
}

// Strategy is the common interface implemented by the Steedman grammar,
// the Neo-Riemannian engine and the parsimonious driver.
type Strategy interface {
	NextChord(ctx Context, rng RNG) Decision
}
