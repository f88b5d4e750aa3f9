package visualize

import (
	"strings"
	"testing"

	"harmonium/internal/engine"
)

func TestNoteNameMiddleC(t *testing.T) {
	if got := noteName(60); got != "C4" {
		t.Errorf("noteName(60) = %q, want C4", got)
	}
}

func TestNoteNameA4(t *testing.T) {
	if got := noteName(69); got != "A4" {
		t.Errorf("noteName(69) = %q, want A4", got)
	}
}

func TestInstrumentNameMapsAllChannels(t *testing.T) {
	cases := map[uint8]string{0: "Bass", 1: "Lead", 2: "Snare", 3: "Hat"}
	for ch, want := range cases {
		if got := instrumentName(ch); got != want {
			t.Errorf("instrumentName(%d) = %q, want %q", ch, got, want)
		}
	}
}

func newTestDashboard() *Dashboard {
	return &Dashboard{
		viz:     engine.NewRingBuffer[engine.VisualizationEvent](16),
		harmony: engine.NewRingBuffer[engine.HarmonyState](16),
	}
}

func TestDrainAdoptsLatestHarmonyState(t *testing.T) {
	d := newTestDashboard()
	d.harmony.Push(engine.HarmonyState{CurrentChordName: "Cmaj7", MeasureNumber: 1})
	d.harmony.Push(engine.HarmonyState{CurrentChordName: "Dm7", MeasureNumber: 2})

	d.drain()

	if !d.haveData {
		t.Fatal("drain() did not mark haveData")
	}
	if d.current.CurrentChordName != "Dm7" {
		t.Errorf("current.CurrentChordName = %q, want Dm7 (latest)", d.current.CurrentChordName)
	}
}

func TestDrainCapsEventLogLength(t *testing.T) {
	d := newTestDashboard()
	for i := 0; i < maxEventLog+5; i++ {
		d.viz.Push(engine.VisualizationEvent{NoteMIDI: 60, Step: i})
	}
	d.drain()

	if len(d.events) != maxEventLog {
		t.Errorf("len(events) = %d, want %d", len(d.events), maxEventLog)
	}
	if d.events[len(d.events)-1].Step != maxEventLog+4 {
		t.Errorf("events did not keep the most recent entries: last step = %d", d.events[len(d.events)-1].Step)
	}
}

func TestViewBeforeDataShowsWaitingMessage(t *testing.T) {
	d := newTestDashboard()
	if got := d.View(); !strings.Contains(got, "waiting") {
		t.Errorf("View() before any data = %q, want a waiting message", got)
	}
}

func TestViewRendersChordAndPattern(t *testing.T) {
	d := newTestDashboard()
	d.harmony.Push(engine.HarmonyState{
		CurrentChordName: "G7",
		MeasureNumber:    3,
		CurrentStep:      2,
		PrimaryPattern:   []bool{true, false, true, false},
	})
	d.drain()

	view := d.View()
	if !strings.Contains(view, "G7") {
		t.Errorf("View() missing chord name: %q", view)
	}
	if !strings.Contains(view, "measure 3") {
		t.Errorf("View() missing measure number: %q", view)
	}
}

func TestQuittingRendersEmptyView(t *testing.T) {
	d := newTestDashboard()
	d.quitting = true
	if got := d.View(); got != "" {
		t.Errorf("View() while quitting = %q, want empty", got)
	}
}
