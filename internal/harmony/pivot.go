package harmony

import "harmonium/internal/chord"

// PivotType classifies whether a chord functions as a pivot between common
// key areas.
type PivotType int

const (
	PivotNone PivotType = iota
	PivotDiatonic
	PivotModal
	PivotChromatic
)

// IsPivotChord classifies a chord relative to the global key by its root
// alone: a root on a degree of the key's major scale is a diatonic pivot,
// any other root is chromatic. The tonic is one of those degrees, so the
// PivotModal branch (root equal to the key) is never reached.
func IsPivotChord(c chord.Chord, globalKey chord.PitchClass) PivotType {
	degree := int(chord.Norm(int(c.Root) - int(globalKey)))
	diatonicDegrees := map[int]bool{0: true, 2: true, 4: true, 5: true, 7: true, 9: true, 11: true}
	if diatonicDegrees[degree] {
		return PivotDiatonic
	}
	if c.Root == globalKey {
		return PivotModal
	}
	return PivotChromatic
}

// CrossfadeWeight is a smooth two-band ramp between the Steedman and
// Neo-Riemannian strategies: below 0.5 tension pure Steedman, above 0.7
// pure Neo-Riemannian, linear between.
func CrossfadeWeight(tension float32) (steedmanW, neoW float32) {
	switch {
	case tension < 0.5:
		return 1, 0
	case tension > 0.7:
		return 0, 1
	default:
		neoW = (tension - 0.5) / 0.2
		return 1 - neoW, neoW
	}
}

// CrossfadeWeightThreeHysteresis is a three-band ramp with dead zones
// between [sLo,sHi] and [nLo,nHi] that gives the driver hysteresis instead
// of flapping between strategies at a single threshold crossing.
func CrossfadeWeightThreeHysteresis(tension, sLo, sHi, nLo, nHi float32) (steedmanW, parsimoniousW, neoW float32) {
	switch {
	case tension <= sLo:
		return 1, 0, 0
	case tension < sHi:
		t := (tension - sLo) / (sHi - sLo)
		return 1 - t, t, 0
	case tension <= nLo:
		return 0, 1, 0
	case tension < nHi:
		t := (tension - nLo) / (nHi - nLo)
		return 0, 1 - t, t
	default:
		return 0, 0, 1
	}
}
