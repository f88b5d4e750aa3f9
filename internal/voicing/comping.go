package voicing

import "harmonium/internal/rhythm"

// compingPattern is a Euclidean on/off gate over the sequencer's step
// count, shared by every voicer so their density response is consistent.
type compingPattern struct {
	pattern []bool
}

func newCompingPattern(steps int, density float32) compingPattern {
	return compingPattern{pattern: rhythm.Euclidean(steps, density)}
}

func (c compingPattern) isActive(step int) bool {
	if len(c.pattern) == 0 {
		return false
	}
	return c.pattern[((step%len(c.pattern))+len(c.pattern))%len(c.pattern)]
}
