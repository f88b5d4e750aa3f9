package harmony

import (
	"harmonium/internal/chord"
	"harmonium/internal/lcc"
)

// RomanNumeral is a scale-degree symbol the Steedman grammar rewrites.
type RomanNumeral int

const (
	RNI RomanNumeral = iota
	RNII
	RNIII
	RNIV
	RNV
	RNVI
	RNVII
	RNVofV
	RNVofII
	RNVofIV
	RNVofVI
	RNVofIII
	RNFlatII
	RNFlatVI
	RNFlatVII
)

// Interval is the semitone offset from the tonic.
func (r RomanNumeral) Interval() int {
	switch r {
	case RNI:
		return 0
	case RNII:
		return 2
	case RNIII:
		return 4
	case RNIV:
		return 5
	case RNV:
		return 7
	case RNVI:
		return 9
	case RNVII:
		return 11
	case RNVofV:
		return 2
	case RNVofII:
		return 9
	case RNVofIV:
		return 0
	case RNVofVI:
		return 4
	case RNVofIII:
		return 11
	case RNFlatII:
		return 1
	case RNFlatVI:
		return 8
	case RNFlatVII:
		return 10
	default:
		return 0
	}
}

// RuleCategory groups rewrite rules for per-style weighting.
type RuleCategory int

const (
	Cadential RuleCategory = iota
	Preparation
	BackCycle
	TritoneSubstitution
	Deceptive
	ModalInterchange
)

// GrammarStyle selects a category-weighting preset and a realization
// flavor (chord quality choices per numeral).
type GrammarStyle int

const (
	Jazz GrammarStyle = iota
	Pop
	Classical
	Contemporary
)

// CategoryWeight is the style's probability multiplier for a rule category.
func (s GrammarStyle) CategoryWeight(cat RuleCategory) float32 {
	switch s {
	case Jazz:
		switch cat {
		case Preparation:
			return 1.5
		case BackCycle:
			return 1.3
		case TritoneSubstitution:
			return 1.2
		case Cadential:
			return 0.8
		}
	case Pop:
		switch cat {
		case Cadential:
			return 1.5
		case Preparation:
			return 0.8
		case BackCycle:
			return 0.3
		case TritoneSubstitution:
			return 0.2
		}
	case Classical:
		switch cat {
		case Cadential:
			return 1.4
		case Deceptive:
			return 1.2
		case TritoneSubstitution:
			return 0.1
		}
	case Contemporary:
		switch cat {
		case ModalInterchange:
			return 1.4
		case Deceptive:
			return 1.3
		case BackCycle:
			return 1.1
		}
	}
	return 1.0
}

// rewriteRule is one production of the grammar.
type rewriteRule struct {
	lhs          RomanNumeral
	rhs          []RomanNumeral
	weight       float32
	minValence   float32
	maxValence   float32
	category     RuleCategory
	maxRecursion int
}

// SteedmanGrammar is a stateful rewrite engine over Roman numerals. It
// keeps an in-flight expansion queue across calls — next_chord looks pure
// from the outside but mutates this object, by design.
type SteedmanGrammar struct {
	rules             []rewriteRule
	lcc               *lcc.LCC
	style             GrammarStyle
	currentNumeral    RomanNumeral
	pendingExpansion  []RomanNumeral
	recursionDepth    map[RuleCategory]int
	maxRecursionDepth int
}

// NewSteedmanGrammar builds a grammar with the standard jazz/pop rule set.
func NewSteedmanGrammar(tables *lcc.LCC) *SteedmanGrammar {
	g := &SteedmanGrammar{
		lcc:               tables,
		style:             Jazz,
		currentNumeral:    RNI,
		recursionDepth:    map[RuleCategory]int{},
		maxRecursionDepth: 2,
	}
	g.initRules()
	return g
}

func (g *SteedmanGrammar) addRule(lhs RomanNumeral, rhs []RomanNumeral, weight, minV, maxV float32, cat RuleCategory, maxRecursion int) {
	g.rules = append(g.rules, rewriteRule{lhs: lhs, rhs: rhs, weight: weight, minValence: minV, maxValence: maxV, category: cat, maxRecursion: maxRecursion})
}

func (g *SteedmanGrammar) initRules() {
	g.addRule(RNV, []RomanNumeral{RNI}, 0.9, -1.0, 1.0, Cadential, 0)
	g.addRule(RNIV, []RomanNumeral{RNI}, 0.5, 0.2, 1.0, Cadential, 0)

	g.addRule(RNV, []RomanNumeral{RNII, RNV}, 0.85, -1.0, 1.0, Preparation, 0)
	g.addRule(RNV, []RomanNumeral{RNIV, RNV}, 0.5, 0.0, 1.0, Preparation, 0)

	g.addRule(RNV, []RomanNumeral{RNVI, RNII, RNV}, 0.4, -1.0, 1.0, BackCycle, 1)
	g.addRule(RNV, []RomanNumeral{RNIII, RNVI, RNII, RNV}, 0.2, -0.5, 1.0, BackCycle, 0)
	g.addRule(RNV, []RomanNumeral{RNVofV, RNV}, 0.3, -1.0, 0.3, BackCycle, 0)

	g.addRule(RNV, []RomanNumeral{RNFlatII}, 0.35, -1.0, 0.5, TritoneSubstitution, 0)
	g.addRule(RNV, []RomanNumeral{RNII, RNFlatII}, 0.25, -1.0, 0.3, TritoneSubstitution, 0)

	g.addRule(RNVI, []RomanNumeral{RNVofVI, RNVI}, 0.3, -1.0, 1.0, Preparation, 0)
	g.addRule(RNII, []RomanNumeral{RNVofII, RNII}, 0.25, -1.0, 1.0, Preparation, 0)

	g.addRule(RNV, []RomanNumeral{RNVI}, 0.3, -0.5, 0.5, Deceptive, 0)
	g.addRule(RNV, []RomanNumeral{RNFlatVI}, 0.2, -1.0, 0.0, Deceptive, 0)

	g.addRule(RNIV, []RomanNumeral{RNFlatVII, RNIV}, 0.2, -0.5, 0.5, ModalInterchange, 0)
	g.addRule(RNI, []RomanNumeral{RNFlatVII, RNIV, RNI}, 0.15, -0.5, 0.5, ModalInterchange, 0)

	g.addRule(RNI, []RomanNumeral{RNVI, RNI}, 0.4, -0.5, 0.5, Cadential, 0)
	g.addRule(RNI, []RomanNumeral{RNIV, RNI}, 0.6, 0.2, 1.0, Cadential, 0)
	g.addRule(RNI, []RomanNumeral{RNIII, RNI}, 0.3, -1.0, 0.3, Cadential, 0)

	g.addRule(RNIV, []RomanNumeral{RNII, RNIV}, 0.4, -1.0, 1.0, Preparation, 0)
}

// SetStyle sets the current grammar style.
func (g *SteedmanGrammar) SetStyle(s GrammarStyle) { g.style = s }

// Style returns the current grammar style.
func (g *SteedmanGrammar) Style() GrammarStyle { return g.style }

// SetMaxRecursion sets the recursion depth allowed for back-cycling rules.
func (g *SteedmanGrammar) SetMaxRecursion(depth int) { g.maxRecursionDepth = depth }

// HasPending reports whether an expansion is queued.
func (g *SteedmanGrammar) HasPending() bool { return len(g.pendingExpansion) > 0 }

// CurrentNumeral returns the current Roman numeral (debug/UI use).
func (g *SteedmanGrammar) CurrentNumeral() RomanNumeral { return g.currentNumeral }

func (g *SteedmanGrammar) canRecurse(cat RuleCategory) bool {
	return g.recursionDepth[cat] < g.maxRecursionDepth
}

func (g *SteedmanGrammar) applicableRules(symbol RomanNumeral, valence float32) []*rewriteRule {
	var out []*rewriteRule
	for i := range g.rules {
		r := &g.rules[i]
		if r.lhs == symbol && valence >= r.minValence && valence <= r.maxValence {
			out = append(out, r)
		}
	}
	return out
}

func (g *SteedmanGrammar) selectRuleStyled(rules []*rewriteRule, rng RNG) ([]RomanNumeral, RuleCategory, bool) {
	type weighted struct {
		rule   *rewriteRule
		weight float32
	}
	var candidates []weighted
	for _, r := range rules {
		if r.maxRecursion > 0 && !g.canRecurse(r.category) {
			continue
		}
		candidates = append(candidates, weighted{r, r.weight * g.style.CategoryWeight(r.category)})
	}
	if len(candidates) == 0 {
		return nil, 0, false
	}
	var total float32
	for _, c := range candidates {
		total += c.weight
	}
	choice := rng.Float32() * total
	for _, c := range candidates {
		choice -= c.weight
		if choice <= 0 {
			return c.rule.rhs, c.rule.category, true
		}
	}
	last := candidates[len(candidates)-1]
	return last.rule.rhs, last.rule.category, true
}

// Realize converts a Roman numeral into a concrete chord for the given key,
// valence and style.
func (g *SteedmanGrammar) Realize(numeral RomanNumeral, key chord.PitchClass, valence float32) chord.Chord {
	return g.realizeWithStyle(numeral, key, valence, g.style)
}

func (g *SteedmanGrammar) realizeWithStyle(numeral RomanNumeral, key chord.PitchClass, valence float32, style GrammarStyle) chord.Chord {
	root := chord.Norm(int(key) + numeral.Interval())
	var quality chord.Type
	switch numeral {
	case RNI:
		if valence > 0.3 {
			quality = chord.Major7
		} else {
			quality = chord.Major
		}
	case RNII:
		switch style {
		case Jazz, Contemporary:
			quality = chord.Minor7
		case Pop:
			quality = chord.Minor
		case Classical:
			if valence < -0.3 {
				quality = chord.Dominant7
			} else {
				quality = chord.Minor
			}
		}
	case RNIII:
		if style == Jazz {
			quality = chord.Minor7
		} else {
			quality = chord.Minor
		}
	case RNIV:
		if valence > 0.3 && style == Jazz {
			quality = chord.Major7
		} else {
			quality = chord.Major
		}
	case RNV:
		quality = chord.Dominant7
	case RNVI:
		if style == Jazz {
			quality = chord.Minor7
		} else {
			quality = chord.Minor
		}
	case RNVII:
		quality = chord.HalfDiminished
	case RNFlatII:
		quality = chord.Dominant7
	case RNFlatVI:
		if style == Jazz || style == Contemporary {
			quality = chord.Major7
		} else {
			quality = chord.Major
		}
	case RNFlatVII:
		quality = chord.Dominant7
	case RNVofV, RNVofII, RNVofIV, RNVofVI, RNVofIII:
		quality = chord.Dominant7
	default:
		quality = chord.Major
	}
	return chord.New(int(root), quality)
}

// defaultProgressionFor is the cycle-of-fifths fallback used when no rule
// applies.
func (g *SteedmanGrammar) defaultProgressionFor(current RomanNumeral, ctx Context, rng RNG) RomanNumeral {
	choice := rng.Float32()
	switch current {
	case RNI:
		if ctx.Valence > 0.0 && choice < 0.4 {
			return RNV
		} else if choice < 0.7 {
			return RNIV
		}
		return RNVI
	case RNII:
		return RNV
	case RNIII:
		return RNVI
	case RNIV:
		if choice < 0.6 {
			return RNV
		}
		return RNI
	case RNV:
		return RNI
	case RNVI:
		if choice < 0.5 {
			return RNII
		}
		return RNIV
	case RNVII:
		return RNI
	case RNVofV:
		return RNV
	case RNVofII:
		return RNII
	case RNVofIV:
		return RNIV
	case RNVofVI:
		return RNVI
	case RNVofIII:
		return RNIII
	case RNFlatII:
		return RNI
	case RNFlatVI:
		if choice < 0.5 {
			return RNV
		}
		return RNI
	case RNFlatVII:
		return RNIV
	default:
		return RNI
	}
}

func (g *SteedmanGrammar) generateNextStateful(ctx Context, rng RNG) RomanNumeral {
	if len(g.pendingExpansion) > 0 {
		next := g.pendingExpansion[0]
		g.pendingExpansion = g.pendingExpansion[1:]
		g.currentNumeral = next
		return next
	}

	rules := g.applicableRules(g.currentNumeral, ctx.Valence)
	var nextNumeral RomanNumeral
	if expansion, category, ok := g.selectRuleStyled(rules, rng); ok {
		if category == BackCycle {
			g.recursionDepth[category]++
		}
		switch {
		case len(expansion) > 1:
			g.pendingExpansion = append([]RomanNumeral(nil), expansion[1:]...)
			nextNumeral = expansion[0]
		case len(expansion) == 1:
			nextNumeral = expansion[0]
		default:
			nextNumeral = g.defaultProgressionFor(g.currentNumeral, ctx, rng)
		}
	} else {
		nextNumeral = g.defaultProgressionFor(g.currentNumeral, ctx, rng)
	}

	if nextNumeral == RNI {
		g.recursionDepth = map[RuleCategory]int{}
	}
	g.currentNumeral = nextNumeral
	return nextNumeral
}

// NextChord implements Strategy.
func (g *SteedmanGrammar) NextChord(ctx Context, rng RNG) Decision {
	numeral := g.generateNextStateful(ctx, rng)
	next := g.Realize(numeral, ctx.GlobalKey, ctx.Valence)

	parent := lcc.ParentLydian(next)
	level := lcc.LevelForTension(ctx.Tension)
	scale := g.lcc.GetScale(parent, level)

	return Decision{
		NextChord:      next,
		TransitionType: Functional,
		SuggestedScale: scale,
	}
}
