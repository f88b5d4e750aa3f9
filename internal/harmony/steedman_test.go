package harmony

import (
	"testing"

	"harmonium/internal/chord"
	"harmonium/internal/lcc"
)

func TestSteedmanRealizeDominantIsAlwaysDominant7(t *testing.T) {
	g := NewSteedmanGrammar(lcc.New())
	c := g.Realize(RNV, 0, 0.0)
	if c.Quality != chord.Dominant7 {
		t.Errorf("V realized as %v, want Dominant7", c.Quality)
	}
	if c.Root != 7 {
		t.Errorf("V in key of C realized at root %d, want 7", c.Root)
	}
}

func TestSteedmanPendingExpansionDrainsBeforeNewRule(t *testing.T) {
	g := NewSteedmanGrammar(lcc.New())
	g.currentNumeral = RNV
	g.pendingExpansion = []RomanNumeral{RNIV, RNI}

	ctx := Context{GlobalKey: 0, Valence: 0.0}
	rng := &fixedRNG{values: []float32{0.5}}

	first := g.NextChord(ctx, rng)
	if g.CurrentNumeral() != RNIV {
		t.Errorf("after draining pending[0], current numeral = %v, want RNIV", g.CurrentNumeral())
	}
	if first.NextChord.Root != chord.Norm(RNIV.Interval()) {
		t.Errorf("realized chord root = %d, want %d", first.NextChord.Root, RNIV.Interval())
	}

	second := g.NextChord(ctx, rng)
	if g.CurrentNumeral() != RNI {
		t.Errorf("after draining pending[1], current numeral = %v, want RNI", g.CurrentNumeral())
	}
	_ = second
}

func TestSteedmanRecursionResetsAtTonic(t *testing.T) {
	g := NewSteedmanGrammar(lcc.New())
	g.recursionDepth[BackCycle] = 2
	g.currentNumeral = RNI

	ctx := Context{GlobalKey: 0, Valence: 0.0}
	g.generateNextStateful(ctx, &fixedRNG{values: []float32{0.99}})

	if g.currentNumeral == RNI && g.recursionDepth[BackCycle] != 0 {
		t.Errorf("recursion depth should reset once numeral returns to I")
	}
}

func TestSteedmanSuggestedScaleNonEmpty(t *testing.T) {
	g := NewSteedmanGrammar(lcc.New())
	ctx := Context{GlobalKey: 0, Valence: 0.2, Tension: 0.3}
	decision := g.NextChord(ctx, &fixedRNG{values: []float32{0.5}})
	if len(decision.SuggestedScale) == 0 {
		t.Error("suggested scale should be non-empty")
	}
	for _, pc := range decision.SuggestedScale {
		if pc > 11 {
			t.Errorf("suggested scale contains out-of-range pc %d", pc)
		}
	}
}

func TestCategoryWeightJazzFavorsPreparation(t *testing.T) {
	if Jazz.CategoryWeight(Preparation) <= Pop.CategoryWeight(Preparation) {
		t.Error("Jazz should weight ii-V preparation higher than Pop")
	}
}
