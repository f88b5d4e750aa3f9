package voicing

// ShellVoicer plays melody plus the chord's guide tones (3rd and 7th),
// leaving space for busier melodic lines. A bebop comping staple.
type ShellVoicer struct {
	comping      compingPattern
	noteDuration uint8
}

// NewShellVoicer builds a voicer whose default comping uses the same 0.4
// density as block chords over an 8-step pattern, with longer-held notes.
func NewShellVoicer() *ShellVoicer {
	return &ShellVoicer{
		comping:      newCompingPattern(8, 0.4),
		noteDuration: 4,
	}
}

// SetNoteDuration sets the held duration, in steps.
func (s *ShellVoicer) SetNoteDuration(d uint8) {
	if d < 1 {
		d = 1
	}
	s.noteDuration = d
}

func (s *ShellVoicer) Name() string { return "Shell Voicings" }

func (s *ShellVoicer) ProcessNote(melodyMIDI, baseVelocity uint8, ctx Context) []VoicedNote {
	third, seventh := guideTones(ctx.ChordRootMIDI, ctx.ChordQuality, melodyMIDI)
	return []VoicedNote{
		{MIDI: melodyMIDI, Velocity: baseVelocity, Duration: s.noteDuration},
		{MIDI: third, Velocity: subVelocity(baseVelocity, 15, 0), Duration: s.noteDuration},
		{MIDI: seventh, Velocity: subVelocity(baseVelocity, 20, 0), Duration: s.noteDuration},
	}
}

func (s *ShellVoicer) OnStep(ctx Context) {}

func (s *ShellVoicer) ShouldVoice(ctx Context) bool { return s.comping.isActive(ctx.CurrentStep) }

// OnDensityChange dampens the incoming density by 0.7 before rebuilding the
// comping pattern: shell voicings are naturally sparser than block chords.
func (s *ShellVoicer) OnDensityChange(density float32, steps int) {
	s.comping = newCompingPattern(steps, density*0.7)
}
