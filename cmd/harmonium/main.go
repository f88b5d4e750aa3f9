package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Global flag values, populated by parseArgs like the teacher's single
// --soundfont/-sf flag, just with more of them.
var (
	soundFontPath    string
	bpmOverride      float64
	stepsOverride    int
	pulsesOverride   int
	rotationOverride int
	duration         float64 = 30
	recordWav        string
	recordMidi       string
	recordMusicXML   string
	recordTruth      string
	offline          bool
)

func main() {
	args := parseArgs(os.Args[1:])

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		if len(args) < 2 {
			fmt.Println("Error: run requires a session file")
			printUsage()
			os.Exit(1)
		}
		runSession(args[1])
	case "soundfonts":
		listSoundFonts()
	default:
		printUsage()
		os.Exit(1)
	}
}

// parseArgs extracts flags (in --flag value, --flag=value, or bare-bool
// form) and returns the remaining positional arguments, the same
// structure the teacher's CLI entry point uses for --soundfont/-sf.
func parseArgs(args []string) []string {
	var remaining []string

	floatFlag := func(v *float64, i *int) {
		if *i+1 < len(args) {
			*i++
			f, err := strconv.ParseFloat(args[*i], 64)
			if err != nil {
				fmt.Printf("Error: invalid number %q\n", args[*i])
				os.Exit(1)
			}
			*v = f
		}
	}
	intFlag := func(v *int, i *int) {
		if *i+1 < len(args) {
			*i++
			n, err := strconv.Atoi(args[*i])
			if err != nil {
				fmt.Printf("Error: invalid integer %q\n", args[*i])
				os.Exit(1)
			}
			*v = n
		}
	}
	stringFlag := func(v *string, i *int) {
		if *i+1 < len(args) {
			*i++
			*v = args[*i]
		}
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--soundfont" || arg == "-sf":
			stringFlag(&soundFontPath, &i)
		case strings.HasPrefix(arg, "--soundfont="):
			soundFontPath = strings.TrimPrefix(arg, "--soundfont=")
		case arg == "--bpm":
			floatFlag(&bpmOverride, &i)
		case arg == "--steps":
			intFlag(&stepsOverride, &i)
		case arg == "--pulses":
			intFlag(&pulsesOverride, &i)
		case arg == "--rotation":
			intFlag(&rotationOverride, &i)
		case arg == "--duration":
			floatFlag(&duration, &i)
		case arg == "--record-wav":
			stringFlag(&recordWav, &i)
		case arg == "--record-midi":
			stringFlag(&recordMidi, &i)
		case arg == "--record-musicxml":
			stringFlag(&recordMusicXML, &i)
		case arg == "--record-truth":
			stringFlag(&recordTruth, &i)
		case arg == "--offline":
			offline = true
		case arg == "--help" || arg == "-h":
			printUsage()
			os.Exit(0)
		default:
			remaining = append(remaining, arg)
		}
	}

	if soundFontPath == "" {
		soundFontPath = os.Getenv("SOUNDFONT")
	}
	return remaining
}

func printUsage() {
	fmt.Println("Harmonium v0.1")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  harmonium run <session.yaml> [flags]   Run the generative engine")
	fmt.Println("  harmonium soundfonts                   List available SoundFonts")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --soundfont, -sf <path>   Use a specific SoundFont (.sf2) for playback")
	fmt.Println("  --bpm <n>                 Force a fixed tempo, overriding arousal-derived BPM")
	fmt.Println("  --steps <n>               Override primary sequencer step count")
	fmt.Println("  --pulses <n>              Override primary sequencer pulse count")
	fmt.Println("  --rotation <n>            Override primary sequencer rotation")
	fmt.Println("  --duration <seconds>      Session length for --offline rendering (default 30)")
	fmt.Println("  --record-wav <path>       Write a 16-bit PCM WAV file")
	fmt.Println("  --record-midi <path>     Write a Standard MIDI File")
	fmt.Println("  --record-musicxml <path>  Write a MusicXML score")
	fmt.Println("  --record-truth <path>     Write a plain-text event trace")
	fmt.Println("  --offline                 Render without opening a live audio device")
	fmt.Println("  --help, -h                Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SOUNDFONT                 Default SoundFont path")
}
