package voicing

import "testing"

func TestBlockChordVoicingHasRequestedVoiceCount(t *testing.T) {
	v := NewBlockChordVoicer(4)
	notes := v.ProcessNote(79, 100, baseCtx())
	if len(notes) != 4 {
		t.Fatalf("got %d voices, want 4", len(notes))
	}
}

func TestBlockChordMelodyIsTopVoice(t *testing.T) {
	v := NewBlockChordVoicer(4)
	notes := v.ProcessNote(79, 100, baseCtx())
	if notes[0].MIDI != 79 {
		t.Fatalf("notes[0].MIDI = %d, want 79 (the melody note)", notes[0].MIDI)
	}
}

func TestBlockChordHarmonyNotesAreBelowMelody(t *testing.T) {
	v := NewBlockChordVoicer(4)
	notes := v.ProcessNote(79, 100, baseCtx())
	for _, n := range notes[1:] {
		if n.MIDI >= 79 {
			t.Errorf("harmony note %d should be below the melody note 79", n.MIDI)
		}
	}
}

func TestBlockChordVelocityDecreasesWithDepth(t *testing.T) {
	v := NewBlockChordVoicer(4)
	notes := v.ProcessNote(79, 100, baseCtx())
	for i := 2; i < len(notes); i++ {
		if notes[i].Velocity > notes[i-1].Velocity {
			t.Errorf("voice %d velocity %d should not exceed voice %d velocity %d", i, notes[i].Velocity, i-1, notes[i-1].Velocity)
		}
	}
}

func TestNewBlockChordVoicerClampsVoiceCount(t *testing.T) {
	v := NewBlockChordVoicer(10)
	if v.numVoices != 5 {
		t.Errorf("numVoices = %d, want clamped to 5", v.numVoices)
	}
	v2 := NewBlockChordVoicer(1)
	if v2.numVoices != 3 {
		t.Errorf("numVoices = %d, want clamped to 3", v2.numVoices)
	}
}

func TestBlockChordOnDensityChangeRebuildsComping(t *testing.T) {
	v := NewBlockChordVoicer(4)
	v.OnDensityChange(0.9, 16)
	active := 0
	for i := 0; i < 16; i++ {
		if v.ShouldVoice(Context{CurrentStep: i}) {
			active++
		}
	}
	if active == 0 {
		t.Error("high density should activate comping on at least one step")
	}
}
