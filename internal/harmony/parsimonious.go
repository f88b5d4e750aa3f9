package harmony

import (
	"harmonium/internal/chord"
	"harmonium/internal/lcc"
)

// MaxSemitoneMovement bounds single-voice search steps.
const MaxSemitoneMovement = 2

// TRQ (Tension/Release Quotient) quantifies the emotional direction of a
// harmonic transition.
type TRQ struct {
	Tension float32
	Release float32
}

// Net is positive when tense, negative when released.
func (t TRQ) Net() float32 { return t.Tension - t.Release }

func newTRQ(tension, release float32) TRQ {
	return TRQ{Tension: clamp01(tension), Release: clamp01(release)}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// trqForTransition scores a from->to chord move.
func trqForTransition(from, to chord.Chord) TRQ {
	distance := float32(from.VoiceLeadingDistance(to))
	tension := clamp01(distance / 6.0)
	common := countCommonTones(from, to)
	release := clamp01(float32(common) / 3.0)
	return newTRQ(tension, release)
}

func countCommonTones(a, b chord.Chord) int {
	bpcs := b.PitchClasses()
	n := 0
	for _, pc := range a.PitchClasses() {
		for _, bpc := range bpcs {
			if pc == bpc {
				n++
				break
			}
		}
	}
	return n
}

// Transform names the kind of parsimonious move used to reach a neighbor.
type Transform int

const (
	SingleSemitone Transform = iota
	SingleWholeTone
	DoubleSemitone
	CardinalityExpand
	CardinalityContract
)

// Neighbor is a candidate next chord with its voice-leading cost.
type Neighbor struct {
	Chord                chord.Chord
	VoiceLeadingDistance int
	TRQ                  TRQ
	Transformation       Transform
}

// Parsimonious explores the chord-neighbor graph dynamically instead of
// following the fixed P/L/R rails, so it works for every chord quality.
type Parsimonious struct {
	lcc                   *lcc.LCC
	maxMovement           int
	allowCardinalityMorph bool
}

// NewParsimonious builds a parsimonious driver sharing the given LCC
// tables, with single-voice search up to MaxSemitoneMovement and
// cardinality morphing enabled.
func NewParsimonious(tables *lcc.LCC) *Parsimonious {
	return &Parsimonious{lcc: tables, maxMovement: MaxSemitoneMovement, allowCardinalityMorph: true}
}

// WithMaxMovement caps single-voice search distance at up to 3 semitones.
func (p *Parsimonious) WithMaxMovement(semitones int) *Parsimonious {
	if semitones > 3 {
		semitones = 3
	}
	p.maxMovement = semitones
	return p
}

// WithCardinalityMorph toggles triad<->tetrad neighbor proposals.
func (p *Parsimonious) WithCardinalityMorph(enabled bool) *Parsimonious {
	p.allowCardinalityMorph = enabled
	return p
}

// FindNeighbors aggregates single-voice, double-voice and (if enabled)
// cardinality-morph neighbors, deduplicated by (root, quality,
// transformation) and sorted by ascending voice-leading distance.
func (p *Parsimonious) FindNeighbors(c chord.Chord) []Neighbor {
	pcs := c.PitchClasses()
	var neighbors []Neighbor
	neighbors = append(neighbors, p.findSingleVoiceNeighbors(c, pcs)...)
	neighbors = append(neighbors, p.findDoubleVoiceNeighbors(c, pcs)...)
	if p.allowCardinalityMorph {
		neighbors = append(neighbors, p.findCardinalityNeighbors(c)...)
	}

	sortNeighborsByDistance(neighbors)
	return dedupNeighbors(neighbors)
}

func sortNeighborsByDistance(n []Neighbor) {
	for i := 1; i < len(n); i++ {
		for j := i; j > 0 && n[j].VoiceLeadingDistance < n[j-1].VoiceLeadingDistance; j-- {
			n[j], n[j-1] = n[j-1], n[j]
		}
	}
}

func dedupNeighbors(n []Neighbor) []Neighbor {
	seen := map[[3]int]bool{}
	out := make([]Neighbor, 0, len(n))
	for _, nb := range n {
		key := [3]int{int(nb.Chord.Root), int(nb.Chord.Quality), int(nb.Transformation)}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, nb)
	}
	return out
}

func (p *Parsimonious) findSingleVoiceNeighbors(original chord.Chord, pcs []chord.PitchClass) []Neighbor {
	var neighbors []Neighbor
	deltas := []int{-2, -1, 1, 2}
	for voiceIdx, pc := range pcs {
		for _, delta := range deltas {
			if abs(delta) > p.maxMovement {
				continue
			}
			newPC := chord.Norm(int(pc) + delta)
			newPCs := append([]chord.PitchClass(nil), pcs...)
			newPCs[voiceIdx] = newPC

			newChord, ok := chord.Identify(newPCs)
			if !ok || newChord.Equal(original) {
				continue
			}
			transform := SingleSemitone
			if abs(delta) != 1 {
				transform = SingleWholeTone
			}
			neighbors = append(neighbors, Neighbor{
				Chord:                newChord,
				VoiceLeadingDistance: original.VoiceLeadingDistance(newChord),
				TRQ:                  trqForTransition(original, newChord),
				Transformation:       transform,
			})
		}
	}
	return neighbors
}

func (p *Parsimonious) findDoubleVoiceNeighbors(original chord.Chord, pcs []chord.PitchClass) []Neighbor {
	var neighbors []Neighbor
	n := len(pcs)
	if n < 2 {
		return neighbors
	}
	deltas := []int{-1, 1}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for _, d1 := range deltas {
				for _, d2 := range deltas {
					newPCs := append([]chord.PitchClass(nil), pcs...)
					newPCs[i] = chord.Norm(int(pcs[i]) + d1)
					newPCs[j] = chord.Norm(int(pcs[j]) + d2)

					newChord, ok := chord.Identify(newPCs)
					if !ok || newChord.Equal(original) {
						continue
					}
					neighbors = append(neighbors, Neighbor{
						Chord:                newChord,
						VoiceLeadingDistance: original.VoiceLeadingDistance(newChord),
						TRQ:                  trqForTransition(original, newChord),
						Transformation:       DoubleSemitone,
					})
				}
			}
		}
	}
	return neighbors
}

func (p *Parsimonious) findCardinalityNeighbors(original chord.Chord) []Neighbor {
	if original.IsTriad() {
		return p.expandTriadToTetrad(original)
	}
	if original.IsTetrad() {
		return p.contractTetradToTriad(original)
	}
	return nil
}

var triadExpansions = map[chord.Type][]chord.Type{
	chord.Major:      {chord.Major7, chord.Dominant7, chord.Major6},
	chord.Minor:      {chord.Minor7, chord.MinorMajor7, chord.Minor6},
	chord.Diminished: {chord.HalfDiminished, chord.Diminished7},
	chord.Augmented:  {chord.Augmented7},
	chord.Sus4:       {chord.Dominant7Sus4},
}

var tetradContractions = map[chord.Type]chord.Type{
	chord.Major7:         chord.Major,
	chord.Dominant7:      chord.Major,
	chord.Major6:         chord.Major,
	chord.Minor7:         chord.Minor,
	chord.MinorMajor7:    chord.Minor,
	chord.Minor6:         chord.Minor,
	chord.HalfDiminished: chord.Diminished,
	chord.Diminished7:    chord.Diminished,
	chord.Augmented7:     chord.Augmented,
	chord.Dominant7Sus4:  chord.Sus4,
}

func (p *Parsimonious) expandTriadToTetrad(original chord.Chord) []Neighbor {
	var neighbors []Neighbor
	for _, qual := range triadExpansions[original.Quality] {
		newChord := chord.New(int(original.Root), qual)
		neighbors = append(neighbors, Neighbor{
			Chord:                newChord,
			VoiceLeadingDistance: original.VoiceLeadingDistance(newChord),
			TRQ:                  trqForTransition(original, newChord),
			Transformation:       CardinalityExpand,
		})
	}
	return neighbors
}

func (p *Parsimonious) contractTetradToTriad(original chord.Chord) []Neighbor {
	qual, ok := tetradContractions[original.Quality]
	if !ok {
		return nil
	}
	newChord := chord.New(int(original.Root), qual)
	return []Neighbor{{
		Chord:                newChord,
		VoiceLeadingDistance: original.VoiceLeadingDistance(newChord),
		TRQ:                  trqForTransition(original, newChord),
		Transformation:       CardinalityContract,
	}}
}

// SelectNeighbor partitions candidates by TRQ sign based on ctx.Tension,
// then weighted-samples within the chosen partition with weight
// 1/(distance+1).
func (p *Parsimonious) SelectNeighbor(neighbors []Neighbor, ctx Context, rng RNG) (Neighbor, bool) {
	if len(neighbors) == 0 {
		return Neighbor{}, false
	}

	var filtered []Neighbor
	switch {
	case ctx.Tension > 0.6:
		for _, n := range neighbors {
			if n.TRQ.Net() > 0.0 {
				filtered = append(filtered, n)
			}
		}
	case ctx.Tension < 0.4:
		for _, n := range neighbors {
			if n.TRQ.Net() <= 0.0 {
				filtered = append(filtered, n)
			}
		}
	default:
		filtered = neighbors
	}
	candidates := filtered
	if len(candidates) == 0 {
		candidates = neighbors
	}

	var total float32
	for _, n := range candidates {
		total += 1.0 / (float32(n.VoiceLeadingDistance) + 1.0)
	}
	choice := rng.Float32() * total
	for _, n := range candidates {
		weight := 1.0 / (float32(n.VoiceLeadingDistance) + 1.0)
		choice -= weight
		if choice <= 0 {
			return n, true
		}
	}
	return candidates[0], true
}

// FindPath runs BFS over the parsimonious neighbor graph from one chord to
// another, returning the shortest chord sequence including both endpoints,
// or nil if none is found within maxDepth.
func (p *Parsimonious) FindPath(from, to chord.Chord, maxDepth int) []chord.Chord {
	type key struct {
		root    chord.PitchClass
		quality chord.Type
	}
	targetKey := key{to.Root, to.Quality}
	startKey := key{from.Root, from.Quality}
	if startKey == targetKey {
		return []chord.Chord{from}
	}

	type node struct {
		chord chord.Chord
		path  []chord.Chord
	}
	visited := map[key]bool{startKey: true}
	queue := []node{{from, []chord.Chord{from}}}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if len(n.path) > maxDepth {
			continue
		}
		for _, neighbor := range p.FindNeighbors(n.chord) {
			nk := key{neighbor.Chord.Root, neighbor.Chord.Quality}
			if nk == targetKey {
				return append(append([]chord.Chord(nil), n.path...), neighbor.Chord)
			}
			if !visited[nk] {
				visited[nk] = true
				path := append(append([]chord.Chord(nil), n.path...), neighbor.Chord)
				queue = append(queue, node{neighbor.Chord, path})
			}
		}
	}
	return nil
}

// NextChord implements Strategy.
func (p *Parsimonious) NextChord(ctx Context, rng RNG) Decision {
	neighbors := p.FindNeighbors(ctx.CurrentChord)
	next := ctx.CurrentChord
	if neighbor, ok := p.SelectNeighbor(neighbors, ctx, rng); ok {
		next = neighbor.Chord
	}

	parent := lcc.ParentLydian(next)
	level := lcc.LevelForTension(ctx.Tension)
	scale := p.lcc.GetScale(parent, level)

	return Decision{
		NextChord:      next,
		TransitionType: Transformational,
		SuggestedScale: scale,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
