package render

import (
	"math"

	"github.com/ebitengine/oto/v3"

	"harmonium/internal/engine"
)

// liveAudioChannels is the interleaved output channel count oto plays back;
// the engine's own per-instrument channel routing is unrelated to this.
const liveAudioChannels = 2

// LiveAudioPlayer pulls audio straight from an *engine.Engine through oto,
// for headless or non-FluidSynth playback. It implements io.Reader the same
// way a pull-model audio backend expects: Read is called from oto's
// playback goroutine whenever it wants more samples.
type LiveAudioPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	engine *engine.Engine

	floatBuf []float32
}

// NewLiveAudioPlayer opens an oto context at sampleRate and wires it to
// pull from eng.
func NewLiveAudioPlayer(eng *engine.Engine, sampleRate int) (*LiveAudioPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: liveAudioChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4096,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &LiveAudioPlayer{ctx: ctx, engine: eng}
	p.player = ctx.NewPlayer(p)
	return p, nil
}

// Read implements io.Reader, filling p with engine-rendered float32 LE
// samples. Byte length must be a multiple of 4*liveAudioChannels.
func (p *LiveAudioPlayer) Read(b []byte) (int, error) {
	numFloats := len(b) / 4
	numFloats -= numFloats % liveAudioChannels
	if cap(p.floatBuf) < numFloats {
		p.floatBuf = make([]float32, numFloats)
	}
	out := p.floatBuf[:numFloats]
	for i := range out {
		out[i] = 0
	}

	p.engine.ProcessBuffer(out, liveAudioChannels)

	for i, v := range out {
		putFloat32LE(b[i*4:], v)
	}
	return numFloats * 4, nil
}

func putFloat32LE(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

// Start begins playback.
func (p *LiveAudioPlayer) Start() { p.player.Play() }

// Stop halts playback; the player can be restarted with Start.
func (p *LiveAudioPlayer) Stop() { p.player.Pause() }

// Close releases the oto player and context.
func (p *LiveAudioPlayer) Close() error {
	p.player.Close()
	return nil
}
