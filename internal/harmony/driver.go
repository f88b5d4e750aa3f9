package harmony

import (
	"harmonium/internal/chord"
	"harmonium/internal/lcc"
)

// StrategyMode names the harmonic strategy currently driving progression.
type StrategyMode int

const (
	StrategySteedman StrategyMode = iota
	StrategyNeoRiemannian
	StrategyParsimonious
	StrategyTransitioning
)

func (m StrategyMode) String() string {
	switch m {
	case StrategySteedman:
		return "Steedman"
	case StrategyNeoRiemannian:
		return "Neo-Riemannian"
	case StrategyParsimonious:
		return "Parsimonious"
	case StrategyTransitioning:
		return "Transitioning"
	default:
		return "Unknown"
	}
}

// hysteresisBoost is the fraction of a strategy's own weight added back to
// itself to resist chaotic flapping around a threshold.
const hysteresisBoost = 0.1

const maxTabooRetries = 3

// Driver orchestrates the three harmony strategies: it picks one
// probabilistically with hysteresis, guards against A->B->A loops with a
// two-chord taboo list, and forces a cadential resolution on a dramatic
// tension drop.
type Driver struct {
	steedman      *SteedmanGrammar
	neoRiemannian *NeoRiemannian
	parsimonious  *Parsimonious
	lcc           *lcc.LCC

	currentChord    chord.Chord
	chordHistory    []chord.Chord
	currentStrategy StrategyMode
	lastStrategy    StrategyMode
	phrasePosition  int
	lastTension     float32
	globalKey       chord.PitchClass

	SteedmanLower float32
	SteedmanUpper float32
	NeoLower      float32
	NeoUpper      float32
}

// NewDriver constructs a Driver anchored on initialKey, sharing one LCC
// handle across all three strategies.
func NewDriver(initialKey chord.PitchClass, tables *lcc.LCC) *Driver {
	return &Driver{
		steedman:        NewSteedmanGrammar(tables),
		neoRiemannian:   NewNeoRiemannian(tables),
		parsimonious:    NewParsimonious(tables),
		lcc:             tables,
		currentChord:    chord.New(int(initialKey), chord.Major),
		currentStrategy: StrategySteedman,
		lastStrategy:    StrategySteedman,
		lastTension:     0.5,
		globalKey:       chord.Norm(int(initialKey)),
		SteedmanLower:   0.45,
		SteedmanUpper:   0.55,
		NeoLower:        0.65,
		NeoUpper:        0.75,
	}
}

// SetKey sets the global tonic.
func (d *Driver) SetKey(key chord.PitchClass) { d.globalKey = chord.Norm(int(key)) }

// SetGrammarStyle forwards a style setting to the Steedman strategy.
func (d *Driver) SetGrammarStyle(style GrammarStyle) { d.steedman.SetStyle(style) }

// SetHysteresisThresholds configures the four strategy-selection
// thresholds. It clamps and returns whether a clamp was necessary, rather
// than panicking, so a misconfigured control surface degrades gracefully
// as the spec's error-handling design requires.
func (d *Driver) SetHysteresisThresholds(steedmanLower, steedmanUpper, neoLower, neoUpper float32) (clamped bool) {
	if !(steedmanLower < steedmanUpper && steedmanUpper <= neoLower && neoLower < neoUpper) {
		steedmanLower, steedmanUpper, neoLower, neoUpper = 0.45, 0.55, 0.65, 0.75
		clamped = true
	}
	d.SteedmanLower, d.SteedmanUpper, d.NeoLower, d.NeoUpper = steedmanLower, steedmanUpper, neoLower, neoUpper
	return clamped
}

// CurrentStrategyName returns the name of the strategy last used.
func (d *Driver) CurrentStrategyName() string { return d.currentStrategy.String() }

// CurrentChord returns the chord currently installed.
func (d *Driver) CurrentChord() chord.Chord { return d.currentChord }

// RecentHistory returns the taboo-list window (at most 2 chords).
func (d *Driver) RecentHistory() []chord.Chord { return d.chordHistory }

func (d *Driver) selectStrategyProbabilistic(ctx Context, rng RNG) StrategyMode {
	isTetrad := ctx.CurrentChord.IsTetrad()

	steedmanW, parsimoniousW, neoW := CrossfadeWeightThreeHysteresis(
		ctx.Tension, d.SteedmanLower, d.SteedmanUpper, d.NeoLower, d.NeoUpper)

	if isTetrad && neoW > 0 {
		parsimoniousW += neoW
		neoW = 0
	}

	if steedmanW >= 0.99 {
		d.lastStrategy = StrategySteedman
		return StrategySteedman
	}
	if parsimoniousW >= 0.99 {
		d.lastStrategy = StrategyParsimonious
		return StrategyParsimonious
	}
	if neoW >= 0.99 {
		strategy := StrategyNeoRiemannian
		if isTetrad {
			strategy = StrategyParsimonious
		}
		d.lastStrategy = strategy
		return strategy
	}

	takeFrom := func(a, b, boost float32) (float32, float32) {
		if a+b <= 0 {
			return a, b
		}
		return max0(a - boost*a/(a+b)), max0(b - boost*b/(a+b))
	}
	switch d.lastStrategy {
	case StrategySteedman:
		boost := steedmanW * hysteresisBoost
		steedmanW += boost
		parsimoniousW, neoW = takeFrom(parsimoniousW, neoW, boost)
	case StrategyParsimonious:
		boost := parsimoniousW * hysteresisBoost
		parsimoniousW += boost
		steedmanW, neoW = takeFrom(steedmanW, neoW, boost)
	case StrategyNeoRiemannian:
		boost := neoW * hysteresisBoost
		neoW += boost
		steedmanW, parsimoniousW = takeFrom(steedmanW, parsimoniousW, boost)
	}

	total := steedmanW + parsimoniousW + neoW
	var sNorm, pNorm float32
	if total > 0 {
		sNorm = steedmanW / total
		pNorm = parsimoniousW / total
	} else {
		sNorm, pNorm = 0.33, 0.34
	}

	rand := rng.Float32()
	var strategy StrategyMode
	switch {
	case rand < sNorm:
		strategy = StrategySteedman
	case rand < sNorm+pNorm:
		strategy = StrategyParsimonious
	default:
		if isTetrad {
			strategy = StrategyParsimonious
		} else {
			strategy = StrategyNeoRiemannian
		}
	}

	d.lastStrategy = strategy
	return strategy
}

func max0(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

// NextChord advances the driver by one harmonic step.
func (d *Driver) NextChord(tension, valence float32, rng RNG) Decision {
	dramaticTensionDrop := d.lastTension > 0.7 && tension < 0.5

	ctx := Context{
		CurrentChord:    d.currentChord,
		GlobalKey:       d.globalKey,
		Tension:         tension,
		Valence:         valence,
		MeasureInPhrase: d.phrasePosition / 4,
		BeatInMeasure:   d.phrasePosition % 4,
	}

	selectedStrategy := d.selectStrategyProbabilistic(ctx, rng)
	steedmanW, neoW := CrossfadeWeight(tension)

	decide := func() Decision {
		switch selectedStrategy {
		case StrategySteedman:
			d.currentStrategy = StrategySteedman
			if dramaticTensionDrop {
				return d.resolveCadence(ctx, rng)
			}
			return d.steedman.NextChord(ctx, rng)
		case StrategyNeoRiemannian:
			if ctx.CurrentChord.IsTriad() {
				d.currentStrategy = StrategyNeoRiemannian
				return d.neoRiemannian.NextChord(ctx, rng)
			}
			d.currentStrategy = StrategyParsimonious
			return d.parsimonious.NextChord(ctx, rng)
		case StrategyParsimonious:
			d.currentStrategy = StrategyParsimonious
			return d.parsimonious.NextChord(ctx, rng)
		default: // StrategyTransitioning
			d.currentStrategy = StrategyTransitioning
			return d.handleTransition(ctx, steedmanW, neoW, rng)
		}
	}

	decision := decide()
	for retry := 0; retry < maxTabooRetries && d.wouldCreateABALoop(decision.NextChord); retry++ {
		decision = decide()
	}

	d.chordHistory = append(d.chordHistory, d.currentChord)
	if len(d.chordHistory) > 2 {
		d.chordHistory = d.chordHistory[1:]
	}

	d.currentChord = decision.NextChord
	d.phrasePosition++
	d.lastTension = tension

	return decision
}

func (d *Driver) handleTransition(ctx Context, steedmanW, neoW float32, rng RNG) Decision {
	pivotType := IsPivotChord(ctx.CurrentChord, d.globalKey)

	if pivotType != PivotNone {
		if neoW > steedmanW {
			return d.neoRiemannian.NextChord(ctx, rng)
		}
		return d.steedman.NextChord(ctx, rng)
	}

	var target chord.Chord
	if neoW > steedmanW {
		target = d.neoRiemannian.NextChord(ctx, rng).NextChord
	} else {
		target = d.steedman.NextChord(ctx, rng).NextChord
	}

	pivotChord := createPivot(ctx.CurrentChord, target)

	parent := lcc.ParentLydian(pivotChord)
	level := lcc.LevelForTension(ctx.Tension)
	scale := d.lcc.GetScale(parent, level)

	return Decision{
		NextChord:      pivotChord,
		TransitionType: Pivot,
		SuggestedScale: scale,
	}
}

// createPivot builds a bridging chord whose root is the midpoint (by
// shortest circular distance) between the current and target roots, and
// whose quality follows the target.
func createPivot(from, to chord.Chord) chord.Chord {
	fwd := int(chord.Norm(int(to.Root) - int(from.Root)))
	back := 12 - fwd
	var mid int
	if fwd <= back {
		mid = int(from.Root) + fwd/2
	} else {
		mid = int(from.Root) - back/2
	}
	return chord.New(mid, to.Quality)
}

// GetCurrentScale returns the LCC scale suggested for the current chord at
// the given tension.
func (d *Driver) GetCurrentScale(tension float32) []chord.PitchClass {
	parent := lcc.ParentLydian(d.currentChord)
	level := lcc.LevelForTension(tension)
	return d.lcc.GetScale(parent, level)
}

// ResetPhrase zeroes the phrase position counter.
func (d *Driver) ResetPhrase() { d.phrasePosition = 0 }

// wouldCreateABALoop reports whether proposed matches a chord in the
// two-chord taboo list. The tonic is always exempt.
func (d *Driver) wouldCreateABALoop(proposed chord.Chord) bool {
	if proposed.Root == d.globalKey {
		return false
	}
	for _, h := range d.chordHistory {
		if proposed.Root == h.Root && proposed.Quality == h.Quality {
			return true
		}
	}
	return false
}

// resolveCadence forces a cadential resolution after a dramatic tension
// drop: if sitting on the dominant, resolve to a tonic major triad;
// otherwise target the tonic 60% of the time and the dominant 40%, with
// quality following valence sign.
func (d *Driver) resolveCadence(ctx Context, rng RNG) Decision {
	dominantRoot := chord.Norm(int(d.globalKey) + 7)

	var target chord.Chord
	if ctx.CurrentChord.Root == dominantRoot {
		target = chord.New(int(d.globalKey), chord.Major)
	} else {
		quality := chord.Minor
		if ctx.Valence > 0 {
			quality = chord.Major
		}
		if rng.Float32() < 0.6 {
			target = chord.New(int(d.globalKey), quality)
		} else {
			target = chord.New(int(dominantRoot), quality)
		}
	}

	parent := lcc.ParentLydian(target)
	level := lcc.LevelForTension(ctx.Tension)
	scale := d.lcc.GetScale(parent, level)

	return Decision{
		NextChord:      target,
		TransitionType: Functional,
		SuggestedScale: scale,
	}
}
