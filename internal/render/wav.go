package render

import (
	"encoding/binary"
	"io"
	"os"
)

// WavWriter accumulates interleaved float32 samples and writes them out as
// a 16-bit PCM RIFF/WAVE file on Close. No pack dependency covers WAV
// encoding, and the format itself is a fixed, well-documented 44-byte
// header plus raw samples, so this is hand-rolled with encoding/binary
// rather than reaching for a third-party muxer.
type WavWriter struct {
	path       string
	sampleRate int
	channels   int
	samples    []int16
}

// NewWavWriter prepares a writer for path; samples accumulate in memory
// until Close, since session lengths here are seconds, not hours.
func NewWavWriter(path string, sampleRate, channels int) *WavWriter {
	return &WavWriter{path: path, sampleRate: sampleRate, channels: channels}
}

// WriteSamples appends an interleaved float32 buffer, clamping to the
// 16-bit PCM range.
func (w *WavWriter) WriteSamples(buf []float32) {
	for _, s := range buf {
		w.samples = append(w.samples, floatToPCM16(s))
	}
}

func floatToPCM16(s float32) int16 {
	v := s * 32767
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

// Close writes the RIFF header and sample data to disk.
func (w *WavWriter) Close() error {
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeWav(f, w.sampleRate, w.channels, w.samples)
}

func writeWav(f io.Writer, sampleRate, channels int, samples []int16) error {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(samples) * 2
	riffSize := 36 + dataSize

	write := func(v any) error { return binary.Write(f, binary.LittleEndian, v) }

	if _, err := f.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := write(uint32(riffSize)); err != nil {
		return err
	}
	if _, err := f.Write([]byte("WAVE")); err != nil {
		return err
	}

	if _, err := f.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := write(uint32(16)); err != nil { // fmt chunk size
		return err
	}
	if err := write(uint16(1)); err != nil { // PCM
		return err
	}
	if err := write(uint16(channels)); err != nil {
		return err
	}
	if err := write(uint32(sampleRate)); err != nil {
		return err
	}
	if err := write(uint32(byteRate)); err != nil {
		return err
	}
	if err := write(uint16(blockAlign)); err != nil {
		return err
	}
	if err := write(uint16(bitsPerSample)); err != nil {
		return err
	}

	if _, err := f.Write([]byte("data")); err != nil {
		return err
	}
	if err := write(uint32(dataSize)); err != nil {
		return err
	}
	return write(samples)
}
