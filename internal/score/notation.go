// Package score buffers NoteOn/NoteOff events into notated ScoreNotes and
// exports them as MusicXML 4.0 partwise, for session review rather than
// sound.
package score

import (
	"sort"

	"harmonium/internal/engine"
)

// Channel numbering, shared with internal/engine: 0=Bass, 1=Lead, 2=Snare,
// 3=Hat.
const (
	ChannelBass  = 0
	ChannelLead  = 1
	ChannelSnare = 2
	ChannelHat   = 3
)

// Note is a note reconstructed from a matched NoteOn/NoteOff pair.
type Note struct {
	Pitch         uint8
	StartStep     int
	DurationSteps int
	Channel       uint8
	Velocity      uint8
}

// ChordSymbol annotates the Lead part with a harmony label at a given step.
type ChordSymbol struct {
	Step int
	Root uint8 // pitch class, 0=C
	Kind string
	Text string
}

// KeyMode is the key signature's major/minor flavor.
type KeyMode int

const (
	KeyMajor KeyMode = iota
	KeyMinor
)

// defaultPercussionDuration is used when a NoteOn on a percussion channel
// never receives a matching NoteOff.
const defaultPercussionDuration = 2

type pendingKey struct {
	channel uint8
	pitch   uint8
}

type pendingNote struct {
	start    int
	velocity uint8
}

// Buffer accumulates timestamped AudioEvents and reconstructs Notes from
// NoteOn/NoteOff pairs on demand.
type Buffer struct {
	events []timedEvent
}

type timedEvent struct {
	step int
	ev   engine.AudioEvent
}

// NewBuffer creates an empty score buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Record appends an event observed at the given step (fractional steps are
// not modeled; callers round to the nearest step before calling, matching
// how the visualization queue already reports whole steps).
func (b *Buffer) Record(step int, ev engine.AudioEvent) {
	b.events = append(b.events, timedEvent{step: step, ev: ev})
}

// Notes reconstructs every complete or still-sounding note from the
// recorded event stream, sorted by (start, channel, pitch). A NoteOn with
// velocity 0 is treated as a NoteOff, matching the MIDI convention the
// source also honors. Percussion channels (Snare, Hat) that never see an
// explicit NoteOff get a short fixed duration instead of running to the
// end of the buffer.
func (b *Buffer) Notes(totalSteps int) []Note {
	pending := map[pendingKey]pendingNote{}
	var notes []Note

	finalize := func(key pendingKey, end int) {
		p, ok := pending[key]
		if !ok {
			return
		}
		delete(pending, key)
		dur := end - p.start
		if dur < 1 {
			dur = 1
		}
		notes = append(notes, Note{
			Pitch:         key.pitch,
			StartStep:     p.start,
			DurationSteps: dur,
			Channel:       key.channel,
			Velocity:      p.velocity,
		})
	}

	for _, te := range b.events {
		switch te.ev.Kind {
		case engine.NoteOn:
			key := pendingKey{channel: te.ev.Channel, pitch: te.ev.Note}
			if te.ev.Velocity == 0 {
				finalize(key, te.step)
				continue
			}
			if _, already := pending[key]; already {
				finalize(key, te.step)
			}
			pending[key] = pendingNote{start: te.step, velocity: te.ev.Velocity}
		case engine.NoteOff:
			finalize(pendingKey{channel: te.ev.Channel, pitch: te.ev.Note}, te.step)
		}
	}

	for key, p := range pending {
		dur := defaultDurationFor(key.channel, totalSteps)
		notes = append(notes, Note{
			Pitch:         key.pitch,
			StartStep:     p.start,
			DurationSteps: dur,
			Channel:       key.channel,
			Velocity:      p.velocity,
		})
	}

	sortNotes(notes)
	return notes
}

func defaultDurationFor(channel uint8, totalSteps int) int {
	if channel == ChannelSnare || channel == ChannelHat {
		return defaultPercussionDuration
	}
	if totalSteps > 0 {
		return totalSteps
	}
	return 4
}

func sortNotes(notes []Note) {
	sort.Slice(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.StartStep != b.StartStep {
			return a.StartStep < b.StartStep
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		return a.Pitch < b.Pitch
	})
}
