package engine

import (
	"testing"

	"harmonium/internal/chord"
)

func TestProgressionChordAtWraps(t *testing.T) {
	p := progressionPopI_V_vi_IV
	first := p.ChordAt(0, 0)
	wrapped := p.ChordAt(p.Len(), 0)
	if first != wrapped {
		t.Fatalf("ChordAt(0) = %+v, ChordAt(Len()) = %+v, want equal (cycle wraps)", first, wrapped)
	}
}

func TestProgressionChordAtTransposesWithKeyRoot(t *testing.T) {
	p := progressionPopI_V_vi_IV
	inC := p.ChordAt(0, chord.Norm(0))
	inD := p.ChordAt(0, chord.Norm(2))
	if inD.Root != chord.Norm(int(inC.Root)+2) {
		t.Fatalf("ChordAt root did not transpose: inC=%v inD=%v", inC.Root, inD.Root)
	}
}

func TestProgressionEmptyFallsBackToTonicMajor(t *testing.T) {
	p := Progression{Name: "empty"}
	c := p.ChordAt(3, chord.Norm(5))
	if c.Root != chord.Norm(5) || c.Quality != chord.Major {
		t.Fatalf("ChordAt on empty progression = %+v, want tonic major", c)
	}
}

func TestSelectPaletteHighTensionPicksTenseCycle(t *testing.T) {
	got := SelectPalette(0, 0.9)
	if got.Name != progressionTenseCycle.Name {
		t.Fatalf("SelectPalette(tension=0.9) = %s, want %s", got.Name, progressionTenseCycle.Name)
	}
}

func TestMeasuresPerChordShortensUnderHighTension(t *testing.T) {
	if got := measuresPerChord(0.9); got != 1 {
		t.Errorf("measuresPerChord(0.9) = %d, want 1", got)
	}
	if got := measuresPerChord(0.2); got != 2 {
		t.Errorf("measuresPerChord(0.2) = %d, want 2", got)
	}
}
