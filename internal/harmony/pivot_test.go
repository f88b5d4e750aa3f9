package harmony

import (
	"testing"

	"harmonium/internal/chord"
)

func TestIsPivotChordDiatonic(t *testing.T) {
	g := chord.New(7, chord.Minor) // G minor: root on the fifth degree of C
	if got := IsPivotChord(g, 0); got != PivotDiatonic {
		t.Errorf("IsPivotChord(G minor in C) = %v, want PivotDiatonic", got)
	}
}

func TestIsPivotChordChromatic(t *testing.T) {
	c := chord.New(1, chord.Major) // flat-II, non-diatonic root, not same root as key
	if got := IsPivotChord(c, 0); got != PivotChromatic {
		t.Errorf("IsPivotChord(flat-II) = %v, want PivotChromatic", got)
	}
}

func TestCrossfadeWeightBelowLowBand(t *testing.T) {
	s, n := CrossfadeWeight(0.3)
	if s != 1 || n != 0 {
		t.Errorf("CrossfadeWeight(0.3) = (%v,%v), want (1,0)", s, n)
	}
}

func TestCrossfadeWeightAboveHighBand(t *testing.T) {
	s, n := CrossfadeWeight(0.9)
	if s != 0 || n != 1 {
		t.Errorf("CrossfadeWeight(0.9) = (%v,%v), want (0,1)", s, n)
	}
}

func TestCrossfadeWeightMidpointIsHalved(t *testing.T) {
	s, n := CrossfadeWeight(0.6)
	if s < 0.4999 || s > 0.5001 || n < 0.4999 || n > 0.5001 {
		t.Errorf("CrossfadeWeight(0.6) = (%v,%v), want (0.5,0.5)", s, n)
	}
}

func TestCrossfadeWeightThreeHysteresisBands(t *testing.T) {
	sLo, sHi, nLo, nHi := float32(0.45), float32(0.55), float32(0.65), float32(0.75)

	s, p, n := CrossfadeWeightThreeHysteresis(0.2, sLo, sHi, nLo, nHi)
	if s != 1 || p != 0 || n != 0 {
		t.Errorf("below sLo = (%v,%v,%v), want (1,0,0)", s, p, n)
	}

	s, p, n = CrossfadeWeightThreeHysteresis(0.6, sLo, sHi, nLo, nHi)
	if s != 0 || p != 1 || n != 0 {
		t.Errorf("between sHi and nLo = (%v,%v,%v), want (0,1,0)", s, p, n)
	}

	s, p, n = CrossfadeWeightThreeHysteresis(0.9, sLo, sHi, nLo, nHi)
	if s != 0 || p != 0 || n != 1 {
		t.Errorf("above nHi = (%v,%v,%v), want (0,0,1)", s, p, n)
	}
}

func TestCrossfadeWeightThreeHysteresisWeightsSumToOne(t *testing.T) {
	for _, tension := range []float32{0.0, 0.2, 0.45, 0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 1.0} {
		s, p, n := CrossfadeWeightThreeHysteresis(tension, 0.45, 0.55, 0.65, 0.75)
		sum := s + p + n
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("weights at tension=%v sum to %v, want 1", tension, sum)
		}
	}
}
