package main

import (
	"fmt"
	"os"
	"time"

	"harmonium/internal/config"
	"harmonium/internal/engine"
	"harmonium/internal/midiio"
	"harmonium/internal/render"
	"harmonium/internal/score"
	"harmonium/internal/visualize"
)

const (
	sampleRate  = 48000.0
	blockFrames = 512
)

func runSession(path string) {
	sess, err := config.LoadSession(path)
	if err != nil {
		fmt.Printf("Error loading session: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(sess)

	rec := newRecorder(sess)
	voiceRenderer := buildVoiceRenderer(sess)
	eng := engine.NewEngine(sampleRate, time.Now().UnixNano(), rec.wrap(voiceRenderer))

	params := sess.EngineParams()
	if bpmOverride > 0 {
		params.Arousal = arousalForBPM(bpmOverride)
	}
	eng.ParamsWriter().Write(params)

	fmt.Printf("harmonium: key=%s mode=%s steps=%d\n", sess.Key, sess.Mode, sess.Steps)

	if offline {
		runOffline(eng, rec)
	} else {
		runLive(eng, rec)
	}

	rec.close(sess)
}

func applyFlagOverrides(sess *config.Session) {
	if stepsOverride > 0 {
		sess.Steps = stepsOverride
	}
	if pulsesOverride > 0 {
		sess.Rhythm.Pulses = pulsesOverride
	}
	if rotationOverride != 0 {
		sess.Rhythm.Rotation = rotationOverride
	}
	if recordWav != "" {
		sess.Record.Wav = recordWav
	}
	if recordMidi != "" {
		sess.Record.Midi = recordMidi
	}
	if recordMusicXML != "" {
		sess.Record.MusicXML = recordMusicXML
	}
	if soundFontPath != "" {
		sess.Record.SoundFont = soundFontPath
	}
}

// arousalForBPM inverts EngineParams.ComputeBPM (70 BPM at rest, 180 BPM at
// full arousal) so --bpm can request a tempo directly.
func arousalForBPM(bpm float64) float32 {
	a := (float32(bpm) - 70) / 110
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

func buildVoiceRenderer(sess *config.Session) engine.Renderer {
	if offline {
		return render.NewSineSynth(sampleRate)
	}
	if sf, err := render.FindSoundFont(sess.Record.SoundFont); err == nil {
		if sink, err := render.NewFluidSynthSink(sf); err == nil {
			return sink
		}
	}
	fmt.Println("FluidSynth unavailable, falling back to the built-in sine synth")
	return render.NewSineSynth(sampleRate)
}

func runOffline(eng *engine.Engine, rec *recorder) {
	totalFrames := int(duration * sampleRate)
	buf := make([]float32, blockFrames*2)
	for pos := 0; pos < totalFrames; pos += blockFrames {
		for i := range buf {
			buf[i] = 0
		}
		eng.ProcessBuffer(buf, 2)
		rec.observeAudio(buf)
	}
}

// runLive starts a real-time audio sink and hands control to the terminal
// dashboard, which owns the run's lifecycle until the user quits. Recorded
// sinks are driven by the tee renderer wrapped around eng, not by this loop.
func runLive(eng *engine.Engine, rec *recorder) {
	player, err := render.NewLiveAudioPlayer(eng, sampleRate)
	if err == nil {
		player.Start()
		defer player.Close()
	}

	dash := visualize.NewDashboard(eng)
	if err := dash.Run(); err != nil {
		fmt.Printf("Display error: %v\n", err)
	}
}

// recorder tees engine output toward whichever --record-* sinks were
// requested, tracking elapsed samples so NoteOn/NoteOff events can be
// stamped with the step they occurred on.
type recorder struct {
	wav   *render.WavWriter
	score *score.Buffer
	midi  []midiio.TimedEvent
	truth *os.File

	elapsedSamples  int
	samplesPerStep  int
	stepsPerQuarter int
}

func newRecorder(sess *config.Session) *recorder {
	r := &recorder{stepsPerQuarter: 4}
	if sess.Record.Wav != "" {
		r.wav = render.NewWavWriter(sess.Record.Wav, int(sampleRate), 2)
	}
	if sess.Record.Midi != "" {
		r.midi = []midiio.TimedEvent{}
	}
	if sess.Record.MusicXML != "" {
		r.score = score.NewBuffer()
	}
	if recordTruth != "" {
		if f, err := os.Create(recordTruth); err == nil {
			r.truth = f
		}
	}
	return r
}

func (r *recorder) currentStep() int {
	if r.samplesPerStep <= 0 {
		return 0
	}
	return r.elapsedSamples / r.samplesPerStep
}

// wrap returns a Renderer that forwards to voice for audio and note
// playback, while also capturing events for whichever sinks are active.
func (r *recorder) wrap(voice engine.Renderer) engine.Renderer {
	return &teeRenderer{voice: voice, rec: r}
}

type teeRenderer struct {
	voice engine.Renderer
	rec   *recorder
}

func (t *teeRenderer) HandleEvent(ev engine.AudioEvent) {
	t.voice.HandleEvent(ev)

	if ev.Kind == engine.TimingUpdate {
		t.rec.samplesPerStep = ev.SamplesPerStep
	}

	switch ev.Kind {
	case engine.NoteOn, engine.NoteOff:
		step := t.rec.currentStep()
		if t.rec.score != nil {
			t.rec.score.Record(step, ev)
		}
		if t.rec.midi != nil {
			t.rec.midi = append(t.rec.midi, midiio.TimedEvent{Step: step, Event: ev})
		}
		if t.rec.truth != nil {
			fmt.Fprintf(t.rec.truth, "step=%d kind=%v channel=%d note=%d velocity=%d\n",
				step, ev.Kind, ev.Channel, ev.Note, ev.Velocity)
		}
	}
}

func (t *teeRenderer) ProcessBuffer(out []float32, channels int) {
	t.voice.ProcessBuffer(out, channels)
}

func (r *recorder) observeAudio(buf []float32) {
	if r.wav != nil {
		r.wav.WriteSamples(buf)
	}
	r.elapsedSamples += len(buf) / 2
}

func (r *recorder) close(sess *config.Session) {
	if r.wav != nil {
		if err := r.wav.Close(); err != nil {
			fmt.Printf("Error writing WAV: %v\n", err)
		} else {
			fmt.Printf("Wrote %s\n", sess.Record.Wav)
		}
	}
	if r.midi != nil {
		w := midiio.NewWriter()
		if err := w.WriteFile(sess.Record.Midi, bpmFor(sess), r.stepsPerQuarter, r.midi); err != nil {
			fmt.Printf("Error writing MIDI: %v\n", err)
		} else {
			fmt.Printf("Wrote %s\n", sess.Record.Midi)
		}
	}
	if r.score != nil {
		notes := r.score.Notes(sess.Steps * 8)
		mode := score.KeyMajor
		if sess.IsMinor() {
			mode = score.KeyMinor
		}
		ex := score.NewExporter(uint8(sess.KeyRoot()), mode, sess.Steps, bpmFor(sess), nil)
		if err := os.WriteFile(sess.Record.MusicXML, []byte(ex.Build(notes)), 0o644); err != nil {
			fmt.Printf("Error writing MusicXML: %v\n", err)
		} else {
			fmt.Printf("Wrote %s\n", sess.Record.MusicXML)
		}
	}
	if r.truth != nil {
		r.truth.Close()
		fmt.Printf("Wrote %s\n", recordTruth)
	}
}

func bpmFor(sess *config.Session) float32 {
	if bpmOverride > 0 {
		return float32(bpmOverride)
	}
	return sess.EngineParams().ComputeBPM()
}

func listSoundFonts() {
	fmt.Println("Available SoundFonts:")
	fmt.Println()

	found := render.ListSoundFonts()
	if len(found) == 0 {
		fmt.Println("  No SoundFonts found!")
		fmt.Println()
		fmt.Println("Install the default SoundFont:")
		fmt.Println("  sudo apt install fluid-soundfont-gm")
		fmt.Println()
		fmt.Println("Or place .sf2 files in ./soundfonts/ or specify with --soundfont")
		return
	}
	for _, sf := range found {
		fmt.Printf("  %s\n", sf)
	}
	fmt.Println()
	fmt.Println("Use with: harmonium run --soundfont <path> <session.yaml>")
}
