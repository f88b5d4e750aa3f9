package melody

import (
	"math"

	"harmonium/internal/chord"
)

const (
	phraseEnergyDecayRate = 0.08
	minPhraseLength       = 4
	maxRestChance         = 0.9
	pinkNoiseOctaves      = 5
	defaultHurstFactor    = 0.7
)

// Navigator walks an LCC-suggested scale with a hybrid Markov + pink-noise
// step generator, phrase-energy driven rests, motif repetition, and
// passing-tone resolution toward the current chord.
type Navigator struct {
	scale      []chord.PitchClass
	baseOctave int

	currentIndex int
	lastStep     int

	chordPCs  map[chord.PitchClass]bool
	globalKey chord.PitchClass

	pink         *PinkNoise
	hurstFactor  float32
	motifBuffer  []int
	motifIndex   int
	playingMotif bool

	phraseEnergy   float32
	lastNoteStable bool
	lastDirection  int
	stepsSinceRest int
}

// NewNavigator builds a navigator over scale (an ascending one-octave
// pitch-class layout, as returned by the LCC tables), centered at
// baseOctave, starting on the tonic of a major-seventh chord.
func NewNavigator(scale []chord.PitchClass, baseOctave int, globalKey chord.PitchClass) *Navigator {
	n := &Navigator{
		scale:          append([]chord.PitchClass(nil), scale...),
		baseOctave:     baseOctave,
		globalKey:      globalKey,
		pink:           NewPinkNoise(pinkNoiseOctaves),
		hurstFactor:    defaultHurstFactor,
		phraseEnergy:   1.0,
		lastNoteStable: true,
	}
	n.SetChordContext(chord.New(int(globalKey), chord.Major7))
	return n
}

// SetScale installs a new scale layout (e.g. after a tension change moves
// the LCC level), without disturbing position or phrase state.
func (n *Navigator) SetScale(scale []chord.PitchClass) {
	n.scale = append(n.scale[:0], scale...)
}

// SetHurstFactor clamps and sets the smoothness of the pink-noise walk: low
// values force small steps (smooth), high values permit larger jumps
// (erratic).
func (n *Navigator) SetHurstFactor(f float32) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	n.hurstFactor = f
}

// SetChordContext installs the current chord, recomputing stability for the
// position the navigator currently occupies.
func (n *Navigator) SetChordContext(c chord.Chord) {
	pcs := c.PitchClasses()
	set := make(map[chord.PitchClass]bool, len(pcs))
	for _, pc := range pcs {
		set[pc] = true
	}
	n.chordPCs = set
	n.lastNoteStable = n.isInCurrentChord(n.currentIndex)
}

func (n *Navigator) isInCurrentChord(scaleIndex int) bool {
	length := len(n.scale)
	if length == 0 {
		return false
	}
	idx := ((scaleIndex % length) + length) % length
	return n.chordPCs[n.scale[idx]]
}

// NextMelodicEvent advances the navigator by one step, returning the
// resulting event. is_strong_beat should be true on kick-drum hits;
// is_new_measure true at the first step of a measure.
func (n *Navigator) NextMelodicEvent(isStrongBeat, isNewMeasure bool, rng RNG) Event {
	if n.shouldRest(isStrongBeat, isNewMeasure, rng) {
		n.playingMotif = false
		n.motifBuffer = n.motifBuffer[:0]
		return Event{Kind: Rest}
	}

	if isNewMeasure {
		n.playingMotif = rng.Float32() < 0.5 && len(n.motifBuffer) > 0
		n.motifIndex = 0
		if !n.playingMotif {
			n.motifBuffer = n.motifBuffer[:0]
		}
	}

	var rawStep int
	if n.playingMotif && n.motifIndex < len(n.motifBuffer) {
		rawStep = n.motifBuffer[n.motifIndex]
	} else {
		rawStep = n.generateHybridStep(isStrongBeat, rng)
		if !n.playingMotif {
			n.motifBuffer = append(n.motifBuffer, rawStep)
		}
	}

	length := len(n.scale)
	normalizedIndex := 0
	if length > 0 {
		normalizedIndex = ((n.currentIndex % length) + length) % length
	}
	resolvedStep := n.applyResolution(rawStep, normalizedIndex)

	n.motifIndex++
	freq := n.applyStepAndGetFrequency(resolvedStep)

	n.lastNoteStable = n.isInCurrentChord(n.currentIndex)

	useLegato := resolvedStep == 0 || (abs(resolvedStep) == 1 && n.playingMotif && n.motifIndex > 1)
	if useLegato {
		return Event{Kind: Legato, Frequency: freq}
	}
	return Event{Kind: NoteOn, Frequency: freq}
}

func (n *Navigator) shouldRest(isStrongBeat, isNewMeasure bool, rng RNG) bool {
	n.phraseEnergy -= phraseEnergyDecayRate

	if n.stepsSinceRest < minPhraseLength {
		n.stepsSinceRest++
		return false
	}

	var restChance float32
	if n.phraseEnergy <= 0 {
		restChance = 0.7
	} else {
		rem := 1 - n.phraseEnergy
		restChance = rem * rem * 0.5
	}
	if isNewMeasure {
		restChance += 0.2
	}
	if isStrongBeat {
		restChance += 0.1
	}
	if restChance > maxRestChance {
		restChance = maxRestChance
	}

	rest := rng.Float32() < restChance
	if rest {
		n.phraseEnergy = 1.0
		n.stepsSinceRest = 0
	} else {
		n.stepsSinceRest++
	}
	return rest
}

func (n *Navigator) generateHybridStep(isStrongBeat bool, rng RNG) int {
	length := len(n.scale)
	drift := n.pink.Next(rng)
	targetIndex := int(drift * 12.0)

	normalizedIndex := 0
	if length > 0 {
		normalizedIndex = ((n.currentIndex % length) + length) % length
	}
	isChordTone := n.isInCurrentChord(normalizedIndex)
	isTonic := normalizedIndex == 0
	isLeadingTone := length == 7 && normalizedIndex == 6

	steps, weights := weightedSteps(isChordTone, isTonic, isLeadingTone, isStrongBeat, length)

	currentDist := absF(float32(targetIndex - n.currentIndex))
	fractalInfluence := 0.5 + n.hurstFactor*3.0

	finalWeights := make([]int, len(weights))
	for i, step := range steps {
		predicted := n.currentIndex + step
		newDist := absF(float32(targetIndex - predicted))
		w := float32(weights[i])
		if newDist < currentDist {
			w *= fractalInfluence
		} else {
			w *= 0.8
		}
		finalWeights[i] = int(w)
	}

	chosen := weightedSample(rng, steps, finalWeights)

	if abs(n.lastStep) > 2 && abs(chosen) > 2 && sign(chosen) == sign(n.lastStep) {
		if chosen > 0 {
			return -1
		}
		return 1
	}
	return chosen
}

func (n *Navigator) applyResolution(originalStep, normalizedIndex int) int {
	if !n.lastNoteStable {
		var resolution int
		if n.lastDirection != 0 {
			resolution = n.lastDirection
		} else {
			up, down := normalizedIndex+1, normalizedIndex-1
			switch {
			case n.isInCurrentChord(up):
				resolution = 1
			case n.isInCurrentChord(down):
				resolution = -1
			case originalStep > 0:
				resolution = 1
			default:
				resolution = -1
			}
		}
		n.lastDirection = resolution
		return resolution
	}

	if originalStep != 0 {
		n.lastDirection = sign(originalStep)
	}
	return originalStep
}

func (n *Navigator) applyStepAndGetFrequency(step int) float32 {
	n.lastStep = step
	n.currentIndex += step

	length := len(n.scale)
	bound := length * 2
	if n.currentIndex > bound {
		n.currentIndex = bound
	}
	if n.currentIndex < -bound {
		n.currentIndex = -bound
	}

	return n.frequency()
}

func (n *Navigator) frequency() float32 {
	length := len(n.scale)
	if length == 0 {
		return 440.0
	}
	idx := n.currentIndex
	octaveShift := 0
	for idx < 0 {
		idx += length
		octaveShift--
	}
	for idx >= length {
		idx -= length
		octaveShift++
	}

	pc := int(n.scale[idx])
	midi := (n.baseOctave+octaveShift+1)*12 + pc
	return float32(440.0 * math.Pow(2, (float64(midi)-69.0)/12.0))
}

// FrequencyToMIDI rounds a frequency (Hz) to the nearest MIDI note number.
func FrequencyToMIDI(freq float32) int {
	if freq <= 0 {
		return 0
	}
	note := 69.0 + 12.0*math.Log2(float64(freq)/440.0)
	return int(math.Round(note))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
