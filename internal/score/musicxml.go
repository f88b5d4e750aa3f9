package score

import (
	"fmt"
	"strings"
)

// fifthsFromKey returns the MusicXML <fifths> value (-7..7) for a key root
// pitch class and major/minor mode. Db, Eb, Ab and Bb majors are spelled
// with flats, B and F# majors with sharps; a minor key uses its relative
// major.
func fifthsFromKey(keyRoot uint8, isMinor bool) int8 {
	majorFifths := [12]int8{0, -5, 2, -3, 4, -1, 6, 1, -4, 3, -2, 5}
	root := keyRoot % 12
	if isMinor {
		relativeMajor := (root + 3) % 12
		return majorFifths[relativeMajor]
	}
	return majorFifths[root]
}

// keyName renders a display string such as "G major" or "D minor".
func keyName(keyRoot uint8, isMinor bool) string {
	majorNames := [12]string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
	minorNames := [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B"}
	root := keyRoot % 12
	if isMinor {
		return minorNames[root] + " minor"
	}
	return majorNames[root] + " major"
}

// timeSignatureFromSteps infers (beats, beatType) from a measure's step
// count.
func timeSignatureFromSteps(steps int) (beats, beatType int) {
	switch steps {
	case 12:
		return 3, 4
	case 24:
		return 6, 8
	default:
		return 4, 4
	}
}

// stepsPerQuarter is the MusicXML <divisions> value: how many steps make
// up one quarter note.
func stepsPerQuarter(steps int) int {
	switch steps {
	case 12, 16:
		return 4
	case 24:
		return 8
	case 48:
		return 12
	case 96:
		return 24
	case 192:
		return 48
	default:
		return 4
	}
}

// midiToPitch converts a MIDI note number into MusicXML (step, alter,
// octave), choosing sharp or flat spelling from the key signature.
func midiToPitch(midi uint8, fifths int8) (step string, alter int8, octave uint8) {
	octave = midi/12 - 1
	pc := midi % 12
	useSharps := fifths >= 0

	table := map[uint8]struct {
		step      string
		alter     int8
		flatStep  string
		flatAlter int8
	}{
		0:  {"C", 0, "C", 0},
		1:  {"C", 1, "D", -1},
		2:  {"D", 0, "D", 0},
		3:  {"D", 1, "E", -1},
		4:  {"E", 0, "E", 0},
		5:  {"F", 0, "F", 0},
		6:  {"F", 1, "G", -1},
		7:  {"G", 0, "G", 0},
		8:  {"G", 1, "A", -1},
		9:  {"A", 0, "A", 0},
		10: {"A", 1, "B", -1},
		11: {"B", 0, "B", 0},
	}
	e := table[pc]
	if useSharps {
		return e.step, e.alter, octave
	}
	return e.flatStep, e.flatAlter, octave
}

// durationToType converts a duration in steps to a MusicXML note type plus
// a dot count, relative to divisions (steps per quarter note).
func durationToType(durationSteps, divisions int) (noteType string, dots int) {
	if divisions <= 0 {
		divisions = 4
	}
	quarters := float64(durationSteps) / float64(divisions)
	switch {
	case quarters >= 4.0:
		return "whole", 0
	case quarters >= 3.0:
		return "half", 1
	case quarters >= 2.0:
		return "half", 0
	case quarters >= 1.5:
		return "quarter", 1
	case quarters >= 1.0:
		return "quarter", 0
	case quarters >= 0.75:
		return "eighth", 1
	case quarters >= 0.5:
		return "eighth", 0
	case quarters >= 0.375:
		return "16th", 1
	case quarters >= 0.25:
		return "16th", 0
	default:
		return "32nd", 0
	}
}

// chordKindText maps a chord-symbol suffix (as produced by chord.Type's
// String method) to a MusicXML <kind> value and a display suffix.
func chordKindText(suffix string) (kind, display string) {
	switch suffix {
	case "":
		return "major", ""
	case "m":
		return "minor", "m"
	case "aug":
		return "augmented", "+"
	case "dim":
		return "diminished", "dim"
	case "7":
		return "dominant", "7"
	case "maj7":
		return "major-seventh", "maj7"
	case "m7":
		return "minor-seventh", "m7"
	case "m7b5":
		return "half-diminished", "m7b5"
	case "dim7":
		return "diminished-seventh", "dim7"
	case "sus2":
		return "suspended-second", "sus2"
	case "sus4":
		return "suspended-fourth", "sus4"
	case "mMaj7":
		return "major-minor", "mMaj7"
	case "aug7":
		return "augmented-seventh", "7#5"
	case "6":
		return "major-sixth", "6"
	case "m6":
		return "minor-sixth", "m6"
	case "7sus4":
		return "dominant-11th", "7sus4"
	default:
		return "major", ""
	}
}

var rootNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

func rootStepAlter(root uint8) (step string, alter int8) {
	table := [12]struct {
		step  string
		alter int8
	}{
		{"C", 0}, {"C", 1}, {"D", 0}, {"E", -1}, {"E", 0}, {"F", 0},
		{"F", 1}, {"G", 0}, {"A", -1}, {"A", 0}, {"B", -1}, {"B", 0},
	}
	e := table[root%12]
	return e.step, e.alter
}

// NewChordSymbol builds a ChordSymbol from a root pitch class and a chord
// suffix (such as chord.Type.String()).
func NewChordSymbol(step int, root uint8, suffix string) ChordSymbol {
	kind, display := chordKindText(suffix)
	return ChordSymbol{
		Step: step,
		Root: root % 12,
		Kind: kind,
		Text: rootNames[root%12] + display,
	}
}

// Exporter renders a Buffer's reconstructed notes into a MusicXML 4.0
// partwise document.
type Exporter struct {
	KeyRoot   uint8
	Mode      KeyMode
	Steps     int // sequencer steps per measure
	BPM       float32
	Chords    []ChordSymbol
	divisions int
	fifths    int8
	beats     int
	beatType  int
}

// NewExporter prepares derived values (fifths, divisions, time signature)
// from the session's key and step count.
func NewExporter(keyRoot uint8, mode KeyMode, steps int, bpm float32, chords []ChordSymbol) *Exporter {
	e := &Exporter{KeyRoot: keyRoot, Mode: mode, Steps: steps, BPM: bpm, Chords: chords}
	e.fifths = fifthsFromKey(keyRoot, mode == KeyMinor)
	e.divisions = stepsPerQuarter(steps)
	e.beats, e.beatType = timeSignatureFromSteps(steps)
	return e
}

// Build renders notes into a complete MusicXML 4.0 partwise document: a
// Lead part (treble, with chord symbols), a Bass part (bass clef), and a
// combined Snare+Hat percussion part.
func (ex *Exporter) Build(notes []Note) string {
	var xml strings.Builder

	xml.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	xml.WriteString(`<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">` + "\n")
	xml.WriteString(`<score-partwise version="4.0">` + "\n")

	fmt.Fprintf(&xml, "  <work>\n    <work-title>Harmonium session</work-title>\n  </work>\n")
	fmt.Fprintf(&xml, "  <identification>\n    <creator type=\"composer\">Harmonium</creator>\n  </identification>\n")

	xml.WriteString("  <part-list>\n")
	xml.WriteString(`    <score-part id="P1"><part-name>Lead</part-name></score-part>` + "\n")
	xml.WriteString(`    <score-part id="P2"><part-name>Bass</part-name></score-part>` + "\n")
	xml.WriteString(`    <score-part id="P3"><part-name>Drums</part-name></score-part>` + "\n")
	xml.WriteString("  </part-list>\n")

	ex.writePitchedPart(&xml, notes, "P1", ChannelLead, "G", 2, true)
	ex.writePitchedPart(&xml, notes, "P2", ChannelBass, "F", 4, false)
	ex.writeDrumPart(&xml, notes, "P3")

	xml.WriteString("</score-partwise>\n")
	return xml.String()
}

func (ex *Exporter) totalMeasures(notes []Note) int {
	steps := ex.Steps
	if steps <= 0 {
		steps = 16
	}
	maxStep := 0
	for _, n := range notes {
		if end := n.StartStep + n.DurationSteps; end > maxStep {
			maxStep = end
		}
	}
	measures := (maxStep + steps - 1) / steps
	if measures < 1 {
		measures = 1
	}
	return measures
}

func (ex *Exporter) writePitchedPart(xml *strings.Builder, notes []Note, partID string, channel uint8, clefSign string, clefLine int, showChords bool) {
	fmt.Fprintf(xml, "  <part id=\"%s\">\n", partID)

	var partNotes []Note
	for _, n := range notes {
		if n.Channel == channel {
			partNotes = append(partNotes, n)
		}
	}

	steps := ex.Steps
	if steps <= 0 {
		steps = 16
	}
	measures := ex.totalMeasures(notes)
	chordIdx := 0

	for m := 0; m < measures; m++ {
		fmt.Fprintf(xml, "    <measure number=\"%d\">\n", m+1)
		if m == 0 {
			ex.writeAttributes(xml, clefSign, clefLine)
		}

		measureStart, measureEnd := m*steps, (m+1)*steps
		pos := measureStart

		var chordsHere []ChordSymbol
		if showChords {
			for _, c := range ex.Chords {
				if c.Step >= measureStart && c.Step < measureEnd {
					chordsHere = append(chordsHere, c)
				}
			}
		}

		i := 0
		for i < len(partNotes) {
			n := partNotes[i]
			if n.StartStep < measureStart || n.StartStep >= measureEnd {
				i++
				continue
			}
			for chordIdx < len(chordsHere) && chordsHere[chordIdx].Step <= n.StartStep {
				ex.writeHarmony(xml, chordsHere[chordIdx])
				chordIdx++
			}
			if n.StartStep > pos {
				ex.writeRest(xml, min(n.StartStep-pos, measureEnd-pos))
				pos = n.StartStep
			}
			remaining := measureEnd - pos
			if remaining <= 0 {
				break
			}
			dur := min(n.DurationSteps, remaining)
			if dur <= 0 {
				i++
				continue
			}
			ex.writePitchedNote(xml, n, dur, false)
			pos += dur
			i++
		}
		for chordIdx < len(chordsHere) {
			ex.writeHarmony(xml, chordsHere[chordIdx])
			chordIdx++
		}
		if pos < measureEnd {
			ex.writeRest(xml, measureEnd-pos)
		}
		xml.WriteString("    </measure>\n")
	}
	xml.WriteString("  </part>\n")
}

func (ex *Exporter) writeDrumPart(xml *strings.Builder, notes []Note, partID string) {
	fmt.Fprintf(xml, "  <part id=\"%s\">\n", partID)

	var drumNotes []Note
	for _, n := range notes {
		if n.Channel == ChannelSnare || n.Channel == ChannelHat {
			drumNotes = append(drumNotes, n)
		}
	}

	steps := ex.Steps
	if steps <= 0 {
		steps = 16
	}
	measures := ex.totalMeasures(notes)

	for m := 0; m < measures; m++ {
		fmt.Fprintf(xml, "    <measure number=\"%d\">\n", m+1)
		if m == 0 {
			xml.WriteString("      <attributes>\n")
			fmt.Fprintf(xml, "        <divisions>%d</divisions>\n", ex.divisions)
			xml.WriteString("        <key><fifths>0</fifths></key>\n")
			fmt.Fprintf(xml, "        <time><beats>%d</beats><beat-type>%d</beat-type></time>\n", ex.beats, ex.beatType)
			xml.WriteString("        <clef><sign>percussion</sign><line>2</line></clef>\n")
			xml.WriteString("      </attributes>\n")
		}

		measureStart, measureEnd := m*steps, (m+1)*steps
		pos := measureStart
		for _, n := range drumNotes {
			if n.StartStep < measureStart || n.StartStep >= measureEnd {
				continue
			}
			if n.StartStep > pos {
				ex.writeRest(xml, min(n.StartStep-pos, measureEnd-pos))
				pos = n.StartStep
			}
			remaining := measureEnd - pos
			if remaining <= 0 {
				break
			}
			dur := min(n.DurationSteps, remaining)
			if dur <= 0 {
				continue
			}
			ex.writeDrumNote(xml, n, dur)
			pos += dur
		}
		if pos < measureEnd {
			ex.writeRest(xml, measureEnd-pos)
		}
		xml.WriteString("    </measure>\n")
	}
	xml.WriteString("  </part>\n")
}

func (ex *Exporter) writeAttributes(xml *strings.Builder, clefSign string, clefLine int) {
	xml.WriteString("      <attributes>\n")
	fmt.Fprintf(xml, "        <divisions>%d</divisions>\n", ex.divisions)
	modeStr := "major"
	if ex.Mode == KeyMinor {
		modeStr = "minor"
	}
	fmt.Fprintf(xml, "        <key><fifths>%d</fifths><mode>%s</mode></key>\n", ex.fifths, modeStr)
	fmt.Fprintf(xml, "        <time><beats>%d</beats><beat-type>%d</beat-type></time>\n", ex.beats, ex.beatType)
	fmt.Fprintf(xml, "        <clef><sign>%s</sign><line>%d</line></clef>\n", clefSign, clefLine)
	xml.WriteString("      </attributes>\n")
}

func (ex *Exporter) writeHarmony(xml *strings.Builder, c ChordSymbol) {
	step, alter := rootStepAlter(c.Root)
	xml.WriteString("      <harmony>\n")
	xml.WriteString("        <root>\n")
	fmt.Fprintf(xml, "          <root-step>%s</root-step>\n", step)
	if alter != 0 {
		fmt.Fprintf(xml, "          <root-alter>%d</root-alter>\n", alter)
	}
	xml.WriteString("        </root>\n")
	fmt.Fprintf(xml, "        <kind text=%q>%s</kind>\n", c.Text, c.Kind)
	xml.WriteString("      </harmony>\n")
}

func (ex *Exporter) writePitchedNote(xml *strings.Builder, n Note, duration int, isChord bool) {
	step, alter, octave := midiToPitch(n.Pitch, ex.fifths)
	noteType, dots := durationToType(duration, ex.divisions)

	xml.WriteString("      <note>\n")
	if isChord {
		xml.WriteString("        <chord/>\n")
	}
	xml.WriteString("        <pitch>\n")
	fmt.Fprintf(xml, "          <step>%s</step>\n", step)
	if alter != 0 {
		fmt.Fprintf(xml, "          <alter>%d</alter>\n", alter)
	}
	fmt.Fprintf(xml, "          <octave>%d</octave>\n", octave)
	xml.WriteString("        </pitch>\n")
	fmt.Fprintf(xml, "        <duration>%d</duration>\n", duration)
	fmt.Fprintf(xml, "        <type>%s</type>\n", noteType)
	for i := 0; i < dots; i++ {
		xml.WriteString("        <dot/>\n")
	}
	xml.WriteString("      </note>\n")
}

func (ex *Exporter) writeDrumNote(xml *strings.Builder, n Note, duration int) {
	displayStep, displayOctave := "F", 4
	if n.Channel == ChannelSnare {
		displayStep, displayOctave = "E", 4
	} else if n.Channel == ChannelHat {
		displayStep, displayOctave = "G", 5
	}
	noteType, dots := durationToType(duration, ex.divisions)

	xml.WriteString("      <note>\n")
	xml.WriteString("        <unpitched>\n")
	fmt.Fprintf(xml, "          <display-step>%s</display-step>\n", displayStep)
	fmt.Fprintf(xml, "          <display-octave>%d</display-octave>\n", displayOctave)
	xml.WriteString("        </unpitched>\n")
	fmt.Fprintf(xml, "        <duration>%d</duration>\n", duration)
	fmt.Fprintf(xml, "        <type>%s</type>\n", noteType)
	for i := 0; i < dots; i++ {
		xml.WriteString("        <dot/>\n")
	}
	xml.WriteString("      </note>\n")
}

func (ex *Exporter) writeRest(xml *strings.Builder, duration int) {
	if duration <= 0 {
		return
	}
	noteType, dots := durationToType(duration, ex.divisions)
	xml.WriteString("      <note>\n        <rest/>\n")
	fmt.Fprintf(xml, "        <duration>%d</duration>\n", duration)
	fmt.Fprintf(xml, "        <type>%s</type>\n", noteType)
	for i := 0; i < dots; i++ {
		xml.WriteString("        <dot/>\n")
	}
	xml.WriteString("      </note>\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
