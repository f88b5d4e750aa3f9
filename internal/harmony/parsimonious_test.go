package harmony

import (
	"testing"

	"harmonium/internal/chord"
	"harmonium/internal/lcc"
)

func TestFindNeighborsIncludesCardinalityExpansionForTriad(t *testing.T) {
	p := NewParsimonious(lcc.New())
	c := chord.New(0, chord.Major)
	neighbors := p.FindNeighbors(c)

	found := false
	for _, n := range neighbors {
		if n.Transformation == CardinalityExpand && n.Chord.Root == c.Root && n.Chord.Quality == chord.Major7 {
			found = true
		}
	}
	if !found {
		t.Error("expected a CardinalityExpand neighbor to Cmaj7 from C major")
	}
}

func TestFindNeighborsIncludesCardinalityContractionForTetrad(t *testing.T) {
	p := NewParsimonious(lcc.New())
	c := chord.New(0, chord.Dominant7)
	neighbors := p.FindNeighbors(c)

	found := false
	for _, n := range neighbors {
		if n.Transformation == CardinalityContract && n.Chord.Quality == chord.Major {
			found = true
		}
	}
	if !found {
		t.Error("expected a CardinalityContract neighbor to C major from C7")
	}
}

func TestFindNeighborsExcludesOriginalChord(t *testing.T) {
	p := NewParsimonious(lcc.New())
	c := chord.New(0, chord.Major)
	for _, n := range p.FindNeighbors(c) {
		if n.Chord.Equal(c) {
			t.Error("FindNeighbors should never propose the original chord as its own neighbor")
		}
	}
}

func TestFindNeighborsDeduplicated(t *testing.T) {
	p := NewParsimonious(lcc.New())
	c := chord.New(0, chord.Major)
	neighbors := p.FindNeighbors(c)
	seen := map[[2]int]bool{}
	for _, n := range neighbors {
		key := [2]int{int(n.Chord.Root), int(n.Chord.Quality)}
		if seen[key] {
			t.Errorf("duplicate neighbor %v", n.Chord)
		}
		seen[key] = true
	}
}

func TestTRQForTransitionRangeIsZeroToOne(t *testing.T) {
	from := chord.New(0, chord.Major)
	to := chord.New(6, chord.Diminished)
	trq := trqForTransition(from, to)
	if trq.Tension < 0 || trq.Tension > 1 || trq.Release < 0 || trq.Release > 1 {
		t.Errorf("TRQ out of range: %+v", trq)
	}
}

func TestTRQCommonTonesBoostsRelease(t *testing.T) {
	from := chord.New(0, chord.Major)
	closeMove := trqForTransition(from, chord.New(9, chord.Minor))  // A minor, shares C and E
	farMove := trqForTransition(from, chord.New(6, chord.Diminished)) // no shared tones with C major
	if closeMove.Release <= farMove.Release {
		t.Errorf("relative minor should have higher release than a distant diminished chord: close=%v far=%v", closeMove.Release, farMove.Release)
	}
}

func TestSelectNeighborHighTensionPrefersNetPositiveTRQ(t *testing.T) {
	p := NewParsimonious(lcc.New())
	neighbors := []Neighbor{
		{Chord: chord.New(1, chord.Major), VoiceLeadingDistance: 1, TRQ: TRQ{Tension: 0.8, Release: 0.1}},
		{Chord: chord.New(2, chord.Major), VoiceLeadingDistance: 1, TRQ: TRQ{Tension: 0.1, Release: 0.8}},
	}
	ctx := Context{Tension: 0.9}
	got, ok := p.SelectNeighbor(neighbors, ctx, &fixedRNG{values: []float32{0.0}})
	if !ok {
		t.Fatal("expected a neighbor to be selected")
	}
	if got.TRQ.Net() <= 0 {
		t.Errorf("at high tension, selected neighbor should have net-positive TRQ, got %v", got.TRQ)
	}
}

func TestSelectNeighborLowTensionPrefersNetNonPositiveTRQ(t *testing.T) {
	p := NewParsimonious(lcc.New())
	neighbors := []Neighbor{
		{Chord: chord.New(1, chord.Major), VoiceLeadingDistance: 1, TRQ: TRQ{Tension: 0.8, Release: 0.1}},
		{Chord: chord.New(2, chord.Major), VoiceLeadingDistance: 1, TRQ: TRQ{Tension: 0.1, Release: 0.8}},
	}
	ctx := Context{Tension: 0.1}
	got, ok := p.SelectNeighbor(neighbors, ctx, &fixedRNG{values: []float32{0.0}})
	if !ok {
		t.Fatal("expected a neighbor to be selected")
	}
	if got.TRQ.Net() > 0 {
		t.Errorf("at low tension, selected neighbor should have net-non-positive TRQ, got %v", got.TRQ)
	}
}

func TestSelectNeighborEmptyReturnsFalse(t *testing.T) {
	p := NewParsimonious(lcc.New())
	_, ok := p.SelectNeighbor(nil, Context{}, &fixedRNG{values: []float32{0.5}})
	if ok {
		t.Error("SelectNeighbor on an empty slice should report ok=false")
	}
}

func TestFindPathIdentityParsimonious(t *testing.T) {
	p := NewParsimonious(lcc.New())
	c := chord.New(0, chord.Major)
	path := p.FindPath(c, c, 4)
	if len(path) != 1 || !path[0].Equal(c) {
		t.Errorf("FindPath(c, c) = %v, want [c]", path)
	}
}

func TestFindPathReachesCardinalityNeighborInOneStep(t *testing.T) {
	p := NewParsimonious(lcc.New())
	from := chord.New(0, chord.Major)
	to := chord.New(0, chord.Major7)
	path := p.FindPath(from, to, 4)
	if len(path) != 2 {
		t.Fatalf("FindPath(Cmaj, Cmaj7) = %v, want a 2-chord direct path", path)
	}
	if !path[1].Equal(to) {
		t.Errorf("path ends at %v, want %v", path[1], to)
	}
}

func TestWithMaxMovementClampsToThree(t *testing.T) {
	p := NewParsimonious(lcc.New()).WithMaxMovement(10)
	if p.maxMovement != 3 {
		t.Errorf("WithMaxMovement(10) set maxMovement = %d, want clamped to 3", p.maxMovement)
	}
}
