package harmony

import (
	"harmonium/internal/chord"
	"harmonium/internal/lcc"
)

// NeoRiemannian operates on triads only and moves between them via the
// three classic involutions: Parallel, Leading-tone and Relative.
type NeoRiemannian struct {
	lcc *lcc.LCC
}

// NewNeoRiemannian builds a Neo-Riemannian strategy sharing the given LCC
// tables.
func NewNeoRiemannian(tables *lcc.LCC) *NeoRiemannian {
	return &NeoRiemannian{lcc: tables}
}

// P (Parallel) swaps quality at the same root: major(r) <-> minor(r).
func P(c chord.Chord) chord.Chord {
	if c.Quality == chord.Major {
		return chord.New(int(c.Root), chord.Minor)
	}
	return chord.New(int(c.Root), chord.Major)
}

// L (Leading-tone) replaces the root with the major third above, flipping
// quality: major(r) <-> minor(r+4).
func L(c chord.Chord) chord.Chord {
	if c.Quality == chord.Major {
		return chord.New(int(c.Root)+4, chord.Minor)
	}
	return chord.New(int(c.Root)-4, chord.Major)
}

// R (Relative) replaces the fifth with the sixth: major(r) <-> minor(r-3).
func R(c chord.Chord) chord.Chord {
	if c.Quality == chord.Major {
		return chord.New(int(c.Root)-3, chord.Minor)
	}
	return chord.New(int(c.Root)+3, chord.Major)
}

var involutions = []func(chord.Chord) chord.Chord{P, L, R}

// NextChord samples uniformly among {P, L, R}, biased by tension: higher
// tension prefers L over R.
func (n *NeoRiemannian) NextChord(ctx Context, rng RNG) Decision {
	c := ctx.CurrentChord
	if !c.IsTriad() {
		c = chord.New(int(c.Root), chord.Major)
	}

	weights := []float32{1.0, 1.0 + ctx.Tension, 1.0 + (1 - ctx.Tension)}
	var total float32
	for _, w := range weights {
		total += w
	}
	choice := rng.Float32() * total
	idx := 0
	for i, w := range weights {
		choice -= w
		if choice <= 0 {
			idx = i
			break
		}
		idx = i
	}

	next := involutions[idx](c)
	parent := lcc.ParentLydian(next)
	level := lcc.LevelForTension(ctx.Tension)
	scale := n.lcc.GetScale(parent, level)

	return Decision{
		NextChord:      next,
		TransitionType: Transformational,
		SuggestedScale: scale,
	}
}

// FindPath runs a breadth-first search over the {P, L, R} graph from one
// triad to another, returning the shortest chord sequence including both
// endpoints, or nil if none is found within maxDepth.
func FindPath(from, to chord.Chord, maxDepth int) []chord.Chord {
	if from.Equal(to) {
		return []chord.Chord{from}
	}
	type node struct {
		chord chord.Chord
		path  []chord.Chord
	}
	visited := map[chord.Chord]bool{from: true}
	queue := []node{{from, []chord.Chord{from}}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []node
		for _, n := range queue {
			for _, transform := range involutions {
				cand := transform(n.chord)
				if visited[cand] {
					continue
				}
				path := append(append([]chord.Chord(nil), n.path...), cand)
				if cand.Equal(to) {
					return path
				}
				visited[cand] = true
				next = append(next, node{cand, path})
			}
		}
		queue = next
	}
	return nil
}
