package melody

// weightedSteps computes the unnormalized Markov candidate steps and
// weights for a scale position, keyed by whether the position is a chord
// tone, the tonic, the leading tone, and whether the beat is strong.
// Weights sum to 100 in every branch except the tonic on a strong beat,
// whose weights sum to 115; weightedSample draws against the actual
// total. Stepwise motion (+-1) dominates in
// every branch so emitted melodies favor conjunct motion over arpeggiation.
func weightedSteps(isChordTone, isTonic, isLeadingTone, isStrongBeat bool, octaveJump int) (steps []int, weights []int) {
	switch {
	case isTonic:
		if isStrongBeat {
			return []int{0, 1, -1, 2, 4, -3, octaveJump, -octaveJump},
				[]int{5, 35, 35, 15, 10, 5, 5, 5}
		}
		return []int{1, -1, 2, -2, 0}, []int{40, 40, 10, 5, 5}
	case isLeadingTone:
		return []int{1, -1, 0, -2}, []int{85, 10, 2, 3}
	case isChordTone:
		if isStrongBeat {
			return []int{0, 1, -1, -2, 2, -4}, []int{5, 40, 40, 5, 5, 5}
		}
		return []int{1, -1, 2, -2, 0}, []int{40, 40, 10, 5, 5}
	default:
		return []int{1, -1, 0}, []int{45, 45, 10}
	}
}

func weightedSample(rng RNG, values []int, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return values[0]
	}
	choice := int(rng.Float32() * float32(total))
	for i, w := range weights {
		choice -= w
		if choice < 0 {
			return values[i]
		}
	}
	return values[len(values)-1]
}
