package chord

import "testing"

func TestPitchClassesInRange(t *testing.T) {
	for _, q := range AllTypes {
		c := New(5, q)
		for _, pc := range c.PitchClasses() {
			if pc > 11 {
				t.Fatalf("quality %v produced out-of-range pc %d", q, pc)
			}
		}
	}
}

func TestTriadTetradCounts(t *testing.T) {
	if !New(0, Major).IsTriad() {
		t.Error("Major should be a triad")
	}
	if New(0, Major).IsTetrad() {
		t.Error("Major should not be a tetrad")
	}
	if !New(0, Dominant7).IsTetrad() {
		t.Error("Dominant7 should be a tetrad")
	}
	n := len(New(0, Dominant7).PitchClasses())
	if n != 4 {
		t.Errorf("Dominant7 pitch class count = %d, want 4", n)
	}
}

func TestIsMinor(t *testing.T) {
	if !New(0, Minor).IsMinor() {
		t.Error("Minor should report IsMinor")
	}
	if New(0, Major).IsMinor() {
		t.Error("Major should not report IsMinor")
	}
}

func TestVoiceLeadingDistanceIdentity(t *testing.T) {
	c := New(0, Major)
	if d := c.VoiceLeadingDistance(c); d != 0 {
		t.Errorf("self distance = %d, want 0", d)
	}
}

func TestVoiceLeadingDistanceCMajorAMinor(t *testing.T) {
	// C major {0,4,7} vs A minor {9,0,4}: only the 7->9 voice moves by 2.
	c := New(0, Major)
	a := New(9, Minor)
	if d := c.VoiceLeadingDistance(a); d != 2 {
		t.Errorf("C major -> A minor distance = %d, want 2", d)
	}
}

func TestIdentifyRoundTrip(t *testing.T) {
	for _, q := range AllTypes {
		c := New(3, q)
		got, ok := Identify(c.PitchClasses())
		if !ok {
			t.Fatalf("failed to identify quality %v", q)
		}
		if got.Root != c.Root || got.Quality != c.Quality {
			t.Errorf("Identify(%v) = %v, want %v", c.PitchClasses(), got, c)
		}
	}
}

func TestIdentifyUnknownSet(t *testing.T) {
	_, ok := Identify([]PitchClass{0, 1, 2})
	if ok {
		t.Error("chromatic cluster should not identify as a known chord")
	}
}

func TestNormNegative(t *testing.T) {
	if Norm(-1) != 11 {
		t.Errorf("Norm(-1) = %d, want 11", Norm(-1))
	}
	if Norm(13) != 1 {
		t.Errorf("Norm(13) = %d, want 1", Norm(13))
	}
}
