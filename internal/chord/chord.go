// Package chord models pitch classes and chords: quality signatures,
// derived properties and voice-leading distance.
package chord

import "sort"

// PitchClass is an integer in 0..11, always normalized modulo 12.
type PitchClass uint8

// Norm reduces pc into 0..11, handling negative input.
func Norm(pc int) PitchClass {
	pc %= 12
	if pc < 0 {
		pc += 12
	}
	return PitchClass(pc)
}

// Type enumerates chord qualities.
type Type int

const (
	Major Type = iota
	Minor
	Diminished
	Augmented
	Sus2
	Sus4
	Major7
	Minor7
	Dominant7
	HalfDiminished
	Diminished7
	MinorMajor7
	Augmented7
	Major6
	Minor6
	Dominant7Sus4
)

var names = map[Type]string{
	Major: "", Minor: "m", Diminished: "dim", Augmented: "aug",
	Sus2: "sus2", Sus4: "sus4", Major7: "maj7", Minor7: "m7",
	Dominant7: "7", HalfDiminished: "m7b5", Diminished7: "dim7",
	MinorMajor7: "mMaj7", Augmented7: "aug7", Major6: "6", Minor6: "m6",
	Dominant7Sus4: "7sus4",
}

// String returns the conventional chord-symbol suffix for the quality.
func (t Type) String() string { return names[t] }

// intervals is the intervallic signature of each quality, root-relative.
var intervals = map[Type][]int{
	Major:          {0, 4, 7},
	Minor:          {0, 3, 7},
	Diminished:     {0, 3, 6},
	Augmented:      {0, 4, 8},
	Sus2:           {0, 2, 7},
	Sus4:           {0, 5, 7},
	Major7:         {0, 4, 7, 11},
	Minor7:         {0, 3, 7, 10},
	Dominant7:      {0, 4, 7, 10},
	HalfDiminished: {0, 3, 6, 10},
	Diminished7:    {0, 3, 6, 9},
	MinorMajor7:    {0, 3, 7, 11},
	Augmented7:     {0, 4, 8, 10},
	Major6:         {0, 4, 7, 9},
	Minor6:         {0, 3, 7, 9},
	Dominant7Sus4:  {0, 5, 7, 10},
}

// AllTypes lists every known chord quality, in declaration order.
var AllTypes = []Type{
	Major, Minor, Diminished, Augmented, Sus2, Sus4, Major7, Minor7,
	Dominant7, HalfDiminished, Diminished7, MinorMajor7, Augmented7,
	Major6, Minor6, Dominant7Sus4,
}

// Intervals returns the root-relative interval signature for a quality.
func Intervals(t Type) []int {
	src := intervals[t]
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// Chord is a root pitch class plus a quality.
type Chord struct {
	Root    PitchClass
	Quality Type
}

// New builds a Chord, normalizing the root.
func New(root int, quality Type) Chord {
	return Chord{Root: Norm(root), Quality: quality}
}

// PitchClasses returns the chord's pitch-class set, root first.
func (c Chord) PitchClasses() []PitchClass {
	ivs := intervals[c.Quality]
	out := make([]PitchClass, len(ivs))
	for i, iv := range ivs {
		out[i] = Norm(int(c.Root) + iv)
	}
	return out
}

// IsTriad reports whether the chord has exactly three pitch classes.
func (c Chord) IsTriad() bool { return len(intervals[c.Quality]) == 3 }

// IsTetrad reports whether the chord has exactly four pitch classes.
func (c Chord) IsTetrad() bool { return len(intervals[c.Quality]) == 4 }

// IsMinor reports whether the quality carries a minor third (index 1 == 3).
func (c Chord) IsMinor() bool {
	ivs := intervals[c.Quality]
	return len(ivs) > 1 && ivs[1] == 3
}

// Equal reports whether two chords have the same root and quality.
func (c Chord) Equal(o Chord) bool {
	return c.Root == o.Root && c.Quality == o.Quality
}

// Name returns a display string such as "C#m7".
func (c Chord) Name() string {
	return pcName(c.Root) + c.Quality.String()
}

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func pcName(pc PitchClass) string { return sharpNames[pc%12] }

// circularDistance is the shortest distance between two pitch classes on
// the 12-tone circle.
func circularDistance(a, b PitchClass) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	if d > 6 {
		d = 12 - d
	}
	return d
}

// VoiceLeadingDistance computes the minimum-weight matching between the two
// chords' pitch-class sets under modulo-12 circular distance. Sets of
// differing cardinality are padded by repeating the shorter set's elements
// (octave doublings), matching how voice-leading distance is conventionally
// computed between a triad and a tetrad.
func (c Chord) VoiceLeadingDistance(o Chord) int {
	a := c.PitchClasses()
	b := o.PitchClasses()
	for len(a) < len(b) {
		a = append(a, a[len(a)%len(c.PitchClasses())])
	}
	for len(b) < len(a) {
		b = append(b, b[len(b)%len(o.PitchClasses())])
	}
	return minWeightMatching(a, b)
}

// minWeightMatching brute-forces the minimum total circular distance over
// all permutations of b against a. Chord cardinalities are always 3 or 4,
// so this is at most 24 permutations — cheap and exact.
func minWeightMatching(a, b []PitchClass) int {
	n := len(a)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	best := -1
	permute(idx, 0, func(perm []int) {
		total := 0
		for i, p := range perm {
			total += circularDistance(a[i], b[p])
		}
		if best == -1 || total < best {
			best = total
		}
	})
	return best
}

func permute(a []int, k int, visit func([]int)) {
	if k == len(a) {
		visit(a)
		return
	}
	for i := k; i < len(a); i++ {
		a[k], a[i] = a[i], a[k]
		permute(a, k+1, visit)
		a[k], a[i] = a[i], a[k]
	}
}

// Identify attempts to classify a set of pitch classes as a known Chord by
// testing every member as a candidate root, in the order given, so a
// root-first list such as Chord.PitchClasses() identifies back to its own
// root even for symmetric or ambiguous sets. Returns ok=false if no
// quality's interval signature matches.
func Identify(pcs []PitchClass) (c Chord, ok bool) {
	if len(pcs) < 3 {
		return Chord{}, false
	}
	uniq := uniqueSorted(pcs)
	for _, p := range pcs {
		root := Norm(int(p))
		rel := make([]int, 0, len(uniq))
		for _, pc := range uniq {
			rel = append(rel, int(Norm(int(pc)-int(root))))
		}
		sort.Ints(rel)
		for _, t := range AllTypes {
			want := append([]int(nil), intervals[t]...)
			sort.Ints(want)
			if intSliceEqual(rel, want) {
				return New(int(root), t), true
			}
		}
	}
	return Chord{}, false
}

func uniqueSorted(pcs []PitchClass) []PitchClass {
	seen := map[PitchClass]bool{}
	out := make([]PitchClass, 0, len(pcs))
	for _, pc := range pcs {
		n := Norm(int(pc))
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
