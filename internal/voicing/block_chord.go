package voicing

// BlockChordVoicer builds a "locked hands" block: the melody on top, with
// N-1 scale degrees stacked below it, descending. Popularized by George
// Shearing and Milt Buckner.
type BlockChordVoicer struct {
	comping      compingPattern
	numVoices    int
	noteDuration uint8
}

// NewBlockChordVoicer builds a voicer with numVoices (clamped to 3..5) and
// a default comping density suited to jazz comping: chords on roughly a
// third of the steps, melody alone the rest of the time.
func NewBlockChordVoicer(numVoices int) *BlockChordVoicer {
	return &BlockChordVoicer{
		comping:      newCompingPattern(16, 0.4),
		numVoices:    clampVoices(numVoices, 3, 5),
		noteDuration: 2,
	}
}

func clampVoices(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// SetNumVoices adjusts the voice count at runtime.
func (b *BlockChordVoicer) SetNumVoices(n int) { b.numVoices = clampVoices(n, 3, 5) }

// SetNoteDuration sets the held duration, in steps, for every voice.
func (b *BlockChordVoicer) SetNoteDuration(d uint8) {
	if d < 1 {
		d = 1
	}
	b.noteDuration = d
}

func (b *BlockChordVoicer) Name() string { return "Block Chords" }

func (b *BlockChordVoicer) ProcessNote(melodyMIDI, baseVelocity uint8, ctx Context) []VoicedNote {
	notes := make([]VoicedNote, 0, b.numVoices)
	notes = append(notes, VoicedNote{MIDI: melodyMIDI, Velocity: baseVelocity, Duration: b.noteDuration})

	harmony := findScaleNotesBelow(melodyMIDI, ctx.LCCScale, b.numVoices-1)
	for i, note := range harmony {
		vel := subVelocity(baseVelocity, uint8(5+i*3), 40)
		notes = append(notes, VoicedNote{MIDI: note, Velocity: vel, Duration: b.noteDuration})
	}
	return notes
}

func (b *BlockChordVoicer) OnStep(ctx Context) {}

func (b *BlockChordVoicer) ShouldVoice(ctx Context) bool { return b.comping.isActive(ctx.CurrentStep) }

func (b *BlockChordVoicer) OnDensityChange(density float32, steps int) {
	b.comping = newCompingPattern(steps, density)
}
