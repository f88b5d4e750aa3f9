package voicing

import "harmonium/internal/chord"

func cLydianScale() []chord.PitchClass {
	return []chord.PitchClass{0, 2, 4, 6, 7, 9, 11}
}

func baseCtx() Context {
	return Context{
		ChordRootMIDI: 60,
		ChordQuality:  chord.Major7,
		LCCScale:      cLydianScale(),
		Tension:       0.3,
		Density:       0.5,
		CurrentStep:   0,
		TotalSteps:    16,
	}
}
