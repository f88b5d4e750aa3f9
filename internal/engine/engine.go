// Package engine drives the generative loop: it owns the two rhythm
// sequencers, the harmony source (driver or fixed progression), the melody
// navigator and voicer, and renders their output into AudioEvents, while
// exchanging state with a separate control thread exclusively through
// TripleBuffer/RingBuffer primitives.
package engine

import (
	"harmonium/internal/chord"
	"harmonium/internal/harmony"
	"harmonium/internal/lcc"
	"harmonium/internal/melody"
	"harmonium/internal/rhythm"
	"harmonium/internal/voicing"
)

// Renderer turns AudioEvents into sound. Concrete implementations (a
// FluidSynth bridge, a sine-wave synth, a WAV/MIDI file sink) live in
// internal/render; Engine only depends on this interface so it never has
// to know which sink is attached.
type Renderer interface {
	HandleEvent(AudioEvent)
	ProcessBuffer(out []float32, channels int)
}

const (
	visualizationQueueCapacity = 4096
	harmonyStateQueueCapacity  = 256

	velBassArousalGain  = 25.0
	velSnareTensionGain = 20.0
	fillZoneLookback    = 4
	highTensionGate     = 0.6
)

// Engine is the audio-thread-owned generative core. ProcessBuffer runs on
// the audio callback; control-thread code talks to the engine through the
// queues returned by ParamsWriter, MusicalParamsWriter, VisualizationReader
// and HarmonyStateReader, and through SetControlMode.
type Engine struct {
	sampleRate float64

	targetParams *TripleBuffer[EngineParams]
	musicalQueue *TripleBuffer[MusicalParams]
	vizQueue     *RingBuffer[VisualizationEvent]
	harmonyQueue *RingBuffer[HarmonyState]

	rng RNG

	current CurrentState
	control ControlMode

	mutedChannels  [16]bool
	channelRouting [16]int32

	lcc    *lcc.LCC
	driver *harmony.Driver
	nav    *melody.Navigator
	voicer voicing.Voicer

	primary   *rhythm.Sequencer
	secondary *rhythm.Sequencer

	keyRoot chord.PitchClass

	progression      Progression
	progressionIndex int
	measureInChord   int

	currentChord chord.Chord
	measureNumber int

	sampleCounter  int
	samplesPerStep int

	activeBassNote *uint8

	renderer Renderer

	pendingEvents []AudioEvent
}

// NewEngine constructs an Engine at rest: default params, C major key,
// Euclidean primary sequencer, driver-mode harmony, shell voicer.
func NewEngine(sampleRate float64, seed int64, renderer Renderer) *Engine {
	tables := lcc.New()
	keyRoot := chord.PitchClass(0)

	driver := harmony.NewDriver(keyRoot, tables)
	scale := driver.GetCurrentScale(0.3)

	e := &Engine{
		sampleRate:   sampleRate,
		targetParams: NewTripleBuffer(DefaultEngineParams()),
		musicalQueue: NewTripleBuffer(DefaultMusicalParams()),
		vizQueue:     NewRingBuffer[VisualizationEvent](visualizationQueueCapacity),
		harmonyQueue: NewRingBuffer[HarmonyState](harmonyStateQueueCapacity),
		rng:          NewMathRandRNG(seed),
		current:      DefaultCurrentState(),
		control:      DefaultControlMode(),
		lcc:          tables,
		driver:       driver,
		nav:          melody.NewNavigator(scale, 4, keyRoot),
		voicer:       voicing.NewShellVoicer(),
		primary: rhythm.NewSequencer(rhythm.Params{
			Mode: rhythm.ModeEuclidean, Steps: 16, Pulses: 4,
		}),
		secondary: rhythm.NewSequencer(rhythm.Params{
			Mode: rhythm.ModeEuclidean, Steps: 12, Pulses: 3,
		}),
		keyRoot:      keyRoot,
		progression:  SelectPalette(0.3, 0.3),
		currentChord: chord.New(int(keyRoot), chord.Major),
		renderer:     renderer,
	}
	e.samplesPerStep = e.computeSamplesPerStep()
	// Force a tick on the very first ProcessBuffer call instead of waiting
	// a full step's worth of silence.
	e.sampleCounter = e.samplesPerStep
	for i := range e.channelRouting {
		e.channelRouting[i] = -1
	}
	return e
}

// ParamsWriter exposes the control-thread side of the emotional-parameter
// channel.
func (e *Engine) ParamsWriter() *TripleBuffer[EngineParams] { return e.targetParams }

// MusicalParamsWriter exposes the control-thread side of the direct-mode
// technical-parameter channel.
func (e *Engine) MusicalParamsWriter() *TripleBuffer[MusicalParams] { return e.musicalQueue }

// VisualizationReader exposes the control-thread side of the
// note-visualization queue.
func (e *Engine) VisualizationReader() *RingBuffer[VisualizationEvent] { return e.vizQueue }

// HarmonyStateReader exposes the control-thread side of the harmony-state
// snapshot queue.
func (e *Engine) HarmonyStateReader() *RingBuffer[HarmonyState] { return e.harmonyQueue }

// SetControlMode is called by the control thread (through whatever
// synchronization its own session layer uses) to flip emotion/direct mode
// or module enables. The audio thread only ever reads a consistent
// snapshot via updateControls, matching the source's Arc<Mutex<ControlMode>>
// but here the mode struct is small enough to copy wholesale instead of
// locking on the hot path.
func (e *Engine) SetControlMode(m ControlMode) { e.control = m }

func (e *Engine) computeSamplesPerStep() int {
	bpm := float64(e.current.BPM)
	if bpm <= 0 {
		bpm = 120
	}
	secondsPerBeat := 60.0 / bpm
	secondsPerStep := secondsPerBeat / 4.0
	return int(secondsPerStep * e.sampleRate)
}

// ProcessBuffer fills output (interleaved, channels-wide) one block at a
// time, calling updateControls once per call and tick() every time the
// step boundary is crossed, exactly mirroring the source's chunked block
// loop so the renderer never receives a partial step.
func (e *Engine) ProcessBuffer(output []float32, channels int) {
	e.updateControls()

	frames := len(output) / channels
	pos := 0
	for pos < frames {
		remainingInStep := e.samplesPerStep - e.sampleCounter
		if remainingInStep <= 0 {
			e.tick()
			e.sampleCounter = 0
			remainingInStep = e.samplesPerStep
		}
		chunk := frames - pos
		if chunk > remainingInStep {
			chunk = remainingInStep
		}
		if chunk <= 0 {
			chunk = 1
		}
		start := pos * channels
		end := (pos + chunk) * channels
		e.renderer.ProcessBuffer(output[start:end], channels)

		e.sampleCounter += chunk
		pos += chunk
	}
}

// updateControls reads the latest published EngineParams (if any), morphs
// CurrentState toward it at the documented per-parameter rates, and pushes
// any resulting TimingUpdate, SetMixerGains and SetChannelRoute events to
// the renderer; channel mutes are stored on the engine. Called once
// per ProcessBuffer, never from inside tick().
func (e *Engine) updateControls() {
	e.targetParams.Update()
	target := e.targetParams.Read()

	e.current.Arousal = lerp(e.current.Arousal, target.Arousal, smoothArousal)
	e.current.Valence = lerp(e.current.Valence, target.Valence, smoothValence)
	e.current.Density = lerp(e.current.Density, target.Density, smoothDensity)
	e.current.Tension = lerp(e.current.Tension, target.Tension, smoothTension)
	e.current.Smoothness = lerp(e.current.Smoothness, target.Smoothness, smoothSmoothness)
	e.current.BPM = lerp(e.current.BPM, target.ComputeBPM(), smoothBPM)

	e.nav.SetHurstFactor(e.current.Smoothness)

	newSamplesPerStep := e.computeSamplesPerStep()
	if newSamplesPerStep != e.samplesPerStep {
		e.samplesPerStep = newSamplesPerStep
		e.renderer.HandleEvent(AudioEvent{Kind: TimingUpdate, SamplesPerStep: e.samplesPerStep})
	}

	if target.GainLead != 0 || target.GainBass != 0 || target.GainSnare != 0 || target.GainHat != 0 {
		e.renderer.HandleEvent(AudioEvent{
			Kind:      SetMixerGains,
			GainLead:  target.GainLead,
			GainBass:  target.GainBass,
			GainSnare: target.GainSnare,
			GainHat:   target.GainHat,
		})
	}

	e.mutedChannels = target.MutedChannels

	for ch := range target.ChannelRouting {
		route := target.ChannelRouting[ch]
		if route == e.channelRouting[ch] {
			continue
		}
		e.channelRouting[ch] = route
		e.renderer.HandleEvent(AudioEvent{Kind: SetChannelRoute, Channel: uint8(ch), Bank: route})
	}

	if !e.control.EnableRhythm {
		return
	}

	density := e.current.Density
	tension := e.current.Tension
	pulses := int(4 + density*8)
	if pulses < 1 {
		pulses = 1
	}
	if pulses > e.primary.Steps() {
		pulses = e.primary.Steps()
	}
	// RegeneratePattern is idempotent for unchanged inputs, so calling
	// SetParams every block costs a little work but never drifts the
	// pattern out of sync with density/tension.
	e.primary.SetParams(rhythm.Params{
		Mode:     target.Algorithm,
		Steps:    e.primary.Steps(),
		Pulses:   pulses,
		Rotation: e.primary.Rotation(),
		Density:  density,
		Tension:  tension,
	})
}

// tick fires on every step boundary: it turns off the previous step's held
// bass note first, then advances harmony (on chord-boundary steps),
// rhythm, and melody, and emits events in the fixed kick -> melody ->
// snare -> hat order.
func (e *Engine) tick() {
	e.pendingEvents = e.pendingEvents[:0]

	if e.activeBassNote != nil {
		e.emit(AudioEvent{Kind: NoteOff, Note: *e.activeBassNote, Channel: channelBass})
		e.activeBassNote = nil
	}

	step := e.primary.CurrentStep()
	isNewMeasure := step == 0
	totalSteps := e.primary.Steps()

	if isNewMeasure {
		e.advanceHarmony()
	}

	primaryTrig := e.primary.Tick()
	var secondaryTrig rhythm.StepTrigger
	if e.secondary.Steps() > 0 {
		secondaryTrig = e.secondary.Tick()
	}

	isHighTension := e.current.Tension > highTensionGate
	fillZoneStart := totalSteps - fillZoneLookback
	if fillZoneStart < 0 {
		fillZoneStart = 0
	}
	inFillZone := step >= fillZoneStart

	if e.control.EnableRhythm && primaryTrig.Kick {
		e.emitKick(primaryTrig)
	}

	if e.control.EnableMelody && !(isHighTension && inFillZone) {
		e.emitMelody(step, primaryTrig.Kick, isNewMeasure)
	}

	if e.control.EnableRhythm && primaryTrig.Snare {
		e.emitSnare(primaryTrig, step, inFillZone)
	}

	if e.control.EnableRhythm && (primaryTrig.Hat || secondaryTrig.Hat) {
		e.emitHat(primaryTrig, step)
	}

	for _, ev := range e.pendingEvents {
		e.renderer.HandleEvent(ev)
	}

	e.pushHarmonyState(primaryTrig, secondaryTrig, step)
}

// Channel numbering follows the source's own convention
// (0=Bass, 1=Lead, 2=Snare, 3=Hat), not General MIDI drum-channel numbers —
// internal/render maps these onto whatever soundfont/MIDI channel scheme
// the sink actually needs.
const (
	channelBass  = 0
	channelLead  = 1
	channelSnare = 2
	channelHat   = 3
)

// emit queues ev for delivery to the renderer at the end of tick(), unless
// its channel is muted, in which case note and control output is dropped
// silently (NoteOff still passes through elsewhere to clear held notes).
func (e *Engine) emit(ev AudioEvent) {
	if int(ev.Channel) < len(e.mutedChannels) && e.mutedChannels[ev.Channel] &&
		(ev.Kind == NoteOn || ev.Kind == ControlChange) {
		return
	}
	e.pendingEvents = append(e.pendingEvents, ev)
}

func (e *Engine) emitKick(t rhythm.StepTrigger) {
	target := e.targetParams.Read()
	vel := clampVel(float32(target.VelBaseBass) + e.current.Arousal*velBassArousalGain)

	note := uint8(36)
	if !e.control.FixedKick {
		offset := int(e.currentChord.Root) % 12
		if offset < 0 {
			offset += 12
		}
		note = uint8(36 + offset)
	}

	e.emit(AudioEvent{Kind: NoteOn, Note: note, Velocity: vel, Channel: channelBass})
	e.activeBassNote = &note
	e.pushViz(note, channelBass)
}

func (e *Engine) emitMelody(step int, isStrongBeat, isNewMeasure bool) {
	event := e.nav.NextMelodicEvent(isStrongBeat, isNewMeasure, e.rng)
	if !event.IsNote() {
		return
	}
	midi := melody.FrequencyToMIDI(event.Frequency)
	if midi <= 0 || midi > 127 {
		return
	}
	note := uint8(midi)
	baseVel := clampVel(70 + e.current.Arousal*30)

	ctx := voicing.Context{
		ChordRootMIDI: int(e.currentChord.Root) + 48,
		ChordQuality:  e.currentChord.Quality,
		LCCScale:      e.currentScale(),
		Tension:       e.current.Tension,
		Density:       e.current.Density,
		CurrentStep:   step,
		TotalSteps:    e.primary.Steps(),
	}
	e.voicer.OnStep(ctx)

	if event.Kind == melody.NoteOn {
		e.emit(AudioEvent{Kind: NoteOn, Note: note, Velocity: baseVel, Channel: channelLead})
		e.pushViz(note, channelLead)
	} else {
		e.emit(AudioEvent{Kind: ControlChange, Controller: 123, Value: note, Channel: channelLead})
	}

	if e.control.EnableVoicing && e.voicer.ShouldVoice(ctx) {
		for _, v := range e.voicer.ProcessNote(note, baseVel, ctx) {
			e.emit(AudioEvent{Kind: NoteOn, Note: v.MIDI, Velocity: v.Velocity, Channel: channelLead})
			e.pushViz(v.MIDI, channelLead)
		}
	}
}

func (e *Engine) currentScale() []chord.PitchClass {
	return e.driver.GetCurrentScale(e.current.Tension)
}

func (e *Engine) emitSnare(t rhythm.StepTrigger, step int, inFillZone bool) {
	target := e.targetParams.Read()
	note := uint8(38)
	vel := clampVel(float32(target.VelBaseSnare) + e.current.Tension*velSnareTensionGain)

	if e.current.Tension > highTensionGate && inFillZone {
		fillNotes := [3]uint8{41, 45, 50}
		note = fillNotes[step%3]
		vel = clampVel(float32(vel) * 1.1)
	} else if e.current.Arousal < 0.2 && t.Velocity < 0.3 {
		note = 37
		vel = clampVel(float32(vel) * 0.65)
	}

	e.emit(AudioEvent{Kind: NoteOn, Note: note, Velocity: vel, Channel: channelSnare})
	e.pushViz(note, channelSnare)
}

func (e *Engine) emitHat(t rhythm.StepTrigger, step int) {
	note := uint8(42)
	vel := clampVel(60 + t.Velocity*40)

	switch {
	case e.current.Arousal > 0.7 && e.current.Density > 0.6:
		note = 49
	case e.current.Tension > 0.7:
		note = 51
	case e.current.Density > 0.5 && step%2 == 0:
		note = 46
	case e.current.Arousal < 0.25:
		note = 44
	}

	e.emit(AudioEvent{Kind: NoteOn, Note: note, Velocity: vel, Channel: channelHat})
	e.pushViz(note, channelHat)
}

func clampVel(v float32) uint8 {
	if v < 1 {
		v = 1
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}

func (e *Engine) pushViz(note uint8, channel uint8) {
	e.vizQueue.Push(VisualizationEvent{
		NoteMIDI:        note,
		Instrument:      channel,
		Step:            e.primary.CurrentStep(),
		DurationSamples: e.samplesPerStep,
	})
}

// advanceHarmony moves the harmony source forward by one chord, on measure
// boundaries only, honoring Basic vs Driver mode and the
// tension-dependent measures-per-chord cadence.
func (e *Engine) advanceHarmony() {
	e.measureInChord++
	e.measureNumber++
	mpc := measuresPerChord(e.current.Tension)
	if e.measureInChord < mpc {
		return
	}
	e.measureInChord = 0

	switch e.targetParams.Read().HarmonyMode {
	case HarmonyModeBasic:
		e.progressionIndex++
		e.currentChord = e.progression.ChordAt(e.progressionIndex, e.keyRoot)
	default:
		decision := e.driver.NextChord(e.current.Tension, e.current.Valence, e.rng)
		e.currentChord = decision.NextChord
		e.nav.SetScale(decision.SuggestedScale)
	}
	e.nav.SetChordContext(e.currentChord)
	e.voicer.OnDensityChange(e.current.Density, e.primary.Steps())
}

func (e *Engine) pushHarmonyState(primary, secondary rhythm.StepTrigger, step int) {
	e.harmonyQueue.Push(HarmonyState{
		CurrentChordName: e.currentChord.Name(),
		ChordRootOffset:  int32(e.currentChord.Root),
		ChordIsMinor:     e.currentChord.IsMinor(),
		MeasureNumber:    e.measureNumber,
		CurrentStep:      step,
		PrimaryPattern:   patternBools(e.primary.Pattern()),
		SecondaryPattern: patternBools(e.secondary.Pattern()),
		PrimarySteps:     e.primary.Steps(),
		PrimaryRotation:  e.primary.Rotation(),
		SecondarySteps:   e.secondary.Steps(),
		SecondaryRotation: e.secondary.Rotation(),
		HarmonyMode:      e.targetParams.Read().HarmonyMode,
	})
}

func patternBools(pattern []rhythm.StepTrigger) []bool {
	out := make([]bool, len(pattern))
	for i, t := range pattern {
		out[i] = t.IsAny()
	}
	return out
}
