package render

import (
	"math"
	"sync"

	"harmonium/internal/engine"
)

const (
	sineAttackSeconds  = 0.005
	sineReleaseSeconds = 0.08
)

type voiceKey struct {
	channel uint8
	note    uint8
}

type sineVoice struct {
	freq      float64
	phase     float64
	target    float32 // sustain amplitude, from note velocity
	env       float32 // current envelope value
	releasing bool
}

// SineSynth is a minimal additive sine synth: one oscillator per active
// note, linear attack/release envelopes, no filtering or detuning. It
// exists so the engine is audible without FluidSynth installed, not to
// sound good.
type SineSynth struct {
	sampleRate float64

	mu     sync.Mutex
	voices map[voiceKey]*sineVoice
	gain   [4]float32 // indexed by internal channel: Bass, Lead, Snare, Hat
}

// NewSineSynth creates a synth rendering at sampleRate with unity gain on
// every channel.
func NewSineSynth(sampleRate float64) *SineSynth {
	return &SineSynth{
		sampleRate: sampleRate,
		voices:     map[voiceKey]*sineVoice{},
		gain:       [4]float32{1, 1, 1, 1},
	}
}

func midiToFreq(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69)/12)
}

// HandleEvent implements engine.Renderer.
func (s *SineSynth) HandleEvent(ev engine.AudioEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case engine.NoteOn:
		key := voiceKey{channel: ev.Channel, note: ev.Note}
		if ev.Velocity == 0 {
			if v, ok := s.voices[key]; ok {
				v.releasing = true
			}
			return
		}
		s.voices[key] = &sineVoice{
			freq:   midiToFreq(ev.Note),
			target: float32(ev.Velocity) / 127,
		}
	case engine.NoteOff:
		key := voiceKey{channel: ev.Channel, note: ev.Note}
		if v, ok := s.voices[key]; ok {
			v.releasing = true
		}
	case engine.AllNotesOff:
		for _, v := range s.voices {
			v.releasing = true
		}
	case engine.SetMixerGains:
		s.gain[channelBass] = ev.GainBass
		s.gain[channelLead] = ev.GainLead
		s.gain[channelSnare] = ev.GainSnare
		s.gain[channelHat] = ev.GainHat
	}
}

// ProcessBuffer implements engine.Renderer, mixing every active voice into
// an interleaved buffer. All output channels receive the same mono mix.
func (s *SineSynth) ProcessBuffer(out []float32, channels int) {
	if channels <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	attackStep := float32(1.0 / (sineAttackSeconds * s.sampleRate))
	releaseStep := float32(1.0 / (sineReleaseSeconds * s.sampleRate))

	frames := len(out) / channels
	for i := 0; i < frames; i++ {
		var mix float32
		for key, v := range s.voices {
			if v.releasing {
				v.env -= releaseStep
				if v.env <= 0 {
					delete(s.voices, key)
					continue
				}
			} else if v.env < v.target {
				v.env += attackStep
				if v.env > v.target {
					v.env = v.target
				}
			}

			sample := float32(math.Sin(2 * math.Pi * v.phase))
			mix += sample * v.env * s.gain[key.channel&3]

			v.phase += v.freq / s.sampleRate
			if v.phase >= 1 {
				v.phase -= math.Trunc(v.phase)
			}
		}

		base := i * channels
		for ch := 0; ch < channels; ch++ {
			out[base+ch] += mix
		}
	}
}
