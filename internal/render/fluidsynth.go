// Package render provides engine.Renderer implementations: process-driven
// sample playback (FluidSynth), an in-process additive synth for headless
// runs, a WAV file writer, and a live speaker sink built on oto.
package render

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"harmonium/internal/engine"
)

// Internal instrument channel numbering, shared with internal/engine,
// internal/score and internal/midiio: 0=Bass, 1=Lead, 2=Snare, 3=Hat.
const (
	channelBass  = 0
	channelLead  = 1
	channelSnare = 2
	channelHat   = 3
)

// midiChannelFor maps an internal channel to the real MIDI channel
// FluidSynth should receive it on. Snare and Hat share channel 9, the GM
// percussion channel.
func midiChannelFor(internal uint8) uint8 {
	switch internal {
	case channelBass:
		return 1
	case channelSnare, channelHat:
		return 9
	default:
		return 0
	}
}

// FluidSynthSink drives a `fluidsynth -s` subprocess over its stdin shell,
// the same interactive-mode protocol used for real-time playback: `noteon`,
// `noteoff`, `prog`, and `cc` commands, one line at a time.
type FluidSynthSink struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu sync.Mutex
}

// NewFluidSynthSink starts FluidSynth in server mode against soundFont and
// sets initial programs: piano on the lead channel, fingered bass on the
// bass channel. The percussion channel needs no program change.
func NewFluidSynthSink(soundFont string) (*FluidSynthSink, error) {
	if _, err := exec.LookPath("fluidsynth"); err != nil {
		return nil, fmt.Errorf("fluidsynth not found: please install with 'sudo apt install fluidsynth'")
	}

	cmd := exec.Command("fluidsynth",
		"-a", "pulseaudio",
		"-q",
		"-s",
		"-g", "1.0",
		soundFont,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start fluidsynth: %w", err)
	}

	time.Sleep(200 * time.Millisecond)

	sink := &FluidSynthSink{cmd: cmd, stdin: stdin}
	sink.sendCommand("prog 0 0")  // Lead: Acoustic Grand Piano
	sink.sendCommand("prog 1 33") // Bass: Fingered Bass
	return sink, nil
}

func (f *FluidSynthSink) sendCommand(cmd string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := fmt.Fprintf(f.stdin, "%s\n", cmd)
	return err
}

// HandleEvent implements engine.Renderer.
func (f *FluidSynthSink) HandleEvent(ev engine.AudioEvent) {
	switch ev.Kind {
	case engine.NoteOn:
		ch := midiChannelFor(ev.Channel)
		f.sendCommand(fmt.Sprintf("noteon %d %d %d", ch, ev.Note, ev.Velocity))
	case engine.NoteOff:
		ch := midiChannelFor(ev.Channel)
		f.sendCommand(fmt.Sprintf("noteoff %d %d", ch, ev.Note))
	case engine.ControlChange:
		ch := midiChannelFor(ev.Channel)
		f.sendCommand(fmt.Sprintf("cc %d %d %d", ch, ev.Controller, ev.Value))
	case engine.AllNotesOff:
		for _, ch := range []uint8{0, 1, 9} {
			f.sendCommand(fmt.Sprintf("cc %d 123 0", ch))
		}
	case engine.SetMixerGains:
		f.sendCommand(fmt.Sprintf("cc 0 7 %d", volumeCC(ev.GainLead)))
		f.sendCommand(fmt.Sprintf("cc 1 7 %d", volumeCC(ev.GainBass)))
		f.sendCommand(fmt.Sprintf("cc 9 7 %d", volumeCC(ev.GainSnare)))
		f.sendCommand(fmt.Sprintf("cc 9 7 %d", volumeCC(ev.GainHat)))
	}
}

// volumeCC maps a linear gain in [0, 1] to a MIDI CC7 (channel volume) value.
func volumeCC(gain float32) uint8 {
	v := gain * 127
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// ProcessBuffer is a no-op: FluidSynth owns its own audio output device
// when run with `-s`, so nothing needs mixing into the engine's own buffer.
func (f *FluidSynthSink) ProcessBuffer(out []float32, channels int) {}

// Close stops FluidSynth and waits for it to exit.
func (f *FluidSynthSink) Close() error {
	f.sendCommand("quit")
	f.stdin.Close()
	return f.cmd.Wait()
}

// FindSoundFont locates a usable .sf2 file, preferring a caller-supplied
// path, then project-local and user directories, then common system
// locations.
func FindSoundFont(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("soundfont not found: %s", customPath)
	}

	for _, pattern := range []string{"./soundfonts/*.sf2", "./soundfonts/*.SF2"} {
		if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
			return matches[0], nil
		}
	}

	home, _ := os.UserHomeDir()
	for _, dir := range []string{
		filepath.Join(home, ".local/share/soundfonts"),
		filepath.Join(home, "soundfonts"),
	} {
		if matches, err := filepath.Glob(filepath.Join(dir, "*.sf2")); err == nil && len(matches) > 0 {
			return matches[0], nil
		}
	}

	systemLocations := []string{
		"/usr/share/sounds/sf2/FluidR3_GM.sf2",
		"/usr/share/sounds/sf2/default.sf2",
		"/usr/share/soundfonts/FluidR3_GM.sf2",
		"/usr/share/soundfonts/default.sf2",
		"/usr/share/soundfonts/default-GM.sf2",
		"/usr/share/sounds/sf2/TimGM6mb.sf2",
	}
	for _, loc := range systemLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}

	for _, pattern := range []string{"/usr/share/sounds/sf2/*.sf2", "/usr/share/soundfonts/*.sf2"} {
		if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
			return matches[0], nil
		}
	}

	return "", fmt.Errorf("no SoundFont (.sf2) file found; install fluid-soundfont-gm, " +
		"place one in ./soundfonts/, or pass --soundfont")
}

// ListSoundFonts returns every .sf2 file found across the same locations
// FindSoundFont searches, for the CLI's `soundfonts` subcommand.
func ListSoundFonts() []string {
	var found []string
	seen := map[string]bool{}
	add := func(matches []string) {
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}

	for _, pattern := range []string{"./soundfonts/*.sf2", "./soundfonts/*.SF2"} {
		if matches, err := filepath.Glob(pattern); err == nil {
			add(matches)
		}
	}

	systemLocations := []string{
		"/usr/share/sounds/sf2/FluidR3_GM.sf2",
		"/usr/share/sounds/sf2/default.sf2",
		"/usr/share/soundfonts/FluidR3_GM.sf2",
		"/usr/share/soundfonts/default.sf2",
		"/usr/share/soundfonts/default-GM.sf2",
		"/usr/share/sounds/sf2/TimGM6mb.sf2",
	}
	for _, loc := range systemLocations {
		if _, err := os.Stat(loc); err == nil {
			add([]string{loc})
		}
	}

	home, _ := os.UserHomeDir()
	for _, pattern := range []string{
		"/usr/share/sounds/sf2/*.sf2",
		"/usr/share/soundfonts/*.sf2",
		filepath.Join(home, ".local/share/soundfonts/*.sf2"),
	} {
		if matches, err := filepath.Glob(pattern); err == nil {
			add(matches)
		}
	}

	return found
}
