package rhythm

import "testing"

func onsetIndices(pattern []StepTrigger, pred func(StepTrigger) bool) []int {
	var out []int
	for i, t := range pattern {
		if pred(t) {
			out = append(out, i)
		}
	}
	return out
}

func intsEqual(a, b []int) bool {
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

func TestBasicRhythmScenario(t *testing.T) {
	s := NewSequencer(Params{Mode: ModeEuclidean, Steps: 16, Pulses: 4, Rotation: 0})
	got := onsetIndices(s.Pattern(), StepTrigger.IsAny)
	want := []int{0, 4, 8, 12}
	if !intsEqual(got, want) {
		t.Fatalf("onsets = %v, want %v", got, want)
	}
	for i := 0; i < 4; i++ {
		trig := s.Tick()
		if !trig.Kick || !trig.Hat || trig.Velocity != 1.0 {
			t.Fatalf("tick %d = %+v, want kick+hat at velocity 1.0", i, trig)
		}
		s.Tick()
		s.Tick()
		s.Tick()
	}
}

func TestRotatedRhythmScenario(t *testing.T) {
	s := NewSequencer(Params{Mode: ModeEuclidean, Steps: 16, Pulses: 4, Rotation: 2})
	got := onsetIndices(s.Pattern(), StepTrigger.IsAny)
	want := []int{2, 6, 10, 14}
	if !intsEqual(got, want) {
		t.Fatalf("onsets = %v, want %v", got, want)
	}
}

func TestPerfectBalanceChaosLayerSkipsOddSteps(t *testing.T) {
	// Kick, snare, and hat layers only ever land on even steps or multiples
	// of three, so any Hat set at a step that is both odd and not a
	// multiple of three can only have come from the chaos layer, which
	// must gate on i%2==0 before its hash test.
	s := NewSequencer(Params{Mode: ModePerfectBalance, Steps: PerfectBalanceSteps, Density: 0.9, Tension: 0.0, Rotation: 0})
	for i, trig := range s.Pattern() {
		if i%2 != 0 && i%3 != 0 && trig.Hat {
			t.Fatalf("step %d: unexpected chaos hat at odd, non-multiple-of-3 step", i)
		}
	}
}

func TestPerfectBalanceLowDensityScenario(t *testing.T) {
	s := NewSequencer(Params{Mode: ModePerfectBalance, Steps: PerfectBalanceSteps, Density: 0.2, Tension: 0.0})
	kicks := onsetIndices(s.Pattern(), func(t StepTrigger) bool { return t.Kick })
	want := []int{0, 12, 24, 36}
	if !intsEqual(kicks, want) {
		t.Fatalf("kicks = %v, want %v", kicks, want)
	}
	for _, trig := range s.Pattern() {
		if trig.Snare {
			t.Fatalf("expected no snare at low density/tension")
		}
		if trig.Hat {
			t.Fatalf("expected no hats at low density/tension")
		}
	}
}

func TestPulsesZeroAllOff(t *testing.T) {
	s := NewSequencer(Params{Mode: ModeEuclidean, Steps: 16, Pulses: 0})
	for i, trig := range s.Pattern() {
		if trig.IsAny() {
			t.Fatalf("step %d fired with pulses=0: %+v", i, trig)
		}
	}
}

func TestPulsesEqualStepsAllOn(t *testing.T) {
	s := NewSequencer(Params{Mode: ModeEuclidean, Steps: 16, Pulses: 16})
	for i, trig := range s.Pattern() {
		if !trig.Kick || !trig.Hat {
			t.Fatalf("step %d did not fire with pulses=steps: %+v", i, trig)
		}
	}
}

func TestRegeneratePatternIdempotent(t *testing.T) {
	p := Params{Mode: ModeEuclidean, Steps: 16, Pulses: 5, Rotation: 3}
	s := NewSequencer(p)
	first := append([]StepTrigger(nil), s.Pattern()...)
	s.RegeneratePattern()
	second := s.Pattern()
	if len(first) != len(second) {
		t.Fatalf("pattern length changed across regeneration")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("step %d differs across regeneration: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestUpgradeToStepsResetsCursor(t *testing.T) {
	s := NewSequencer(Params{Mode: ModeEuclidean, Steps: 16, Pulses: 4})
	s.Tick()
	s.Tick()
	s.UpgradeToSteps(32)
	if s.CurrentStep() != 0 {
		t.Errorf("CurrentStep after UpgradeToSteps = %d, want 0", s.CurrentStep())
	}
	if s.Steps() != 32 {
		t.Errorf("Steps() = %d, want 32", s.Steps())
	}
}

func TestPatternLengthMatchesSteps(t *testing.T) {
	for _, steps := range []int{8, 16, 32, 48} {
		s := NewSequencer(Params{Mode: ModeEuclidean, Steps: steps, Pulses: steps / 4})
		if len(s.Pattern()) != steps {
			t.Errorf("steps=%d: pattern length = %d", steps, len(s.Pattern()))
		}
	}
}

func TestSetRotationNormalizesModulo(t *testing.T) {
	s := NewSequencer(Params{Mode: ModeEuclidean, Steps: 16, Pulses: 4})
	s.SetRotation(18)
	if s.Rotation() != 2 {
		t.Errorf("Rotation() after SetRotation(18) on 16 steps = %d, want 2", s.Rotation())
	}
}
