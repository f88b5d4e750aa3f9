package config

import (
	"os"
	"path/filepath"
	"testing"

	"harmonium/internal/engine"
	"harmonium/internal/rhythm"
)

func TestParseKeySharpAndFlat(t *testing.T) {
	cases := map[string]uint8{"C": 0, "F#": 6, "Gb": 6, "Bb": 10, "a": 9}
	for name, want := range cases {
		pc, err := ParseKey(name)
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", name, err)
		}
		if uint8(pc) != want {
			t.Errorf("ParseKey(%q) = %d, want %d", name, pc, want)
		}
	}
}

func TestParseKeyRejectsUnknown(t *testing.T) {
	if _, err := ParseKey("H"); err == nil {
		t.Error("ParseKey(\"H\") expected error, got nil")
	}
}

func TestLoadSessionAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	if err := os.WriteFile(path, []byte("key: D\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if s.Steps != 16 {
		t.Errorf("Steps = %d, want default 16", s.Steps)
	}
	if s.Rhythm == nil || s.Rhythm.Algorithm != "euclidean" {
		t.Errorf("Rhythm defaults not applied: %+v", s.Rhythm)
	}
	if s.Harmony == nil || s.Harmony.Mode != "basic" {
		t.Errorf("Harmony defaults not applied: %+v", s.Harmony)
	}
	if s.Mix == nil || s.Mix.GainLead != 1 {
		t.Errorf("Mix defaults not applied: %+v", s.Mix)
	}
}

func TestLoadSessionParsesFullDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	yamlDoc := `
title: test session
key: Bb
mode: minor
steps: 12
emotion:
  arousal: 0.8
  tension: 0.7
rhythm:
  algorithm: perfect_balance
  pulses: 5
harmony:
  mode: driver
mix:
  mute: ["hat", "snare"]
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if s.Title != "test session" || s.Steps != 12 {
		t.Errorf("basic fields not parsed: %+v", s)
	}
	if !s.IsMinor() {
		t.Error("IsMinor() = false, want true")
	}
	if s.KeyRoot() != 10 {
		t.Errorf("KeyRoot() = %d, want 10 (Bb)", s.KeyRoot())
	}
	if s.Rhythm.Algorithm != "perfect_balance" || s.Rhythm.Pulses != 5 {
		t.Errorf("rhythm block not parsed: %+v", s.Rhythm)
	}
}

func TestEngineParamsTranslatesEmotionAndAlgorithm(t *testing.T) {
	s := &Session{
		Key: "C",
		Emotion: &EmotionConfig{Arousal: 0.9, Tension: 0.6},
		Rhythm:  &RhythmConfig{Algorithm: "perfect_balance"},
		Harmony: &HarmonyConfig{Mode: "driver"},
		Mix:     &MixConfig{GainLead: 1, GainBass: 1, GainSnare: 1, GainHat: 1, Mute: []string{"hat"}},
	}

	p := s.EngineParams()
	if p.Arousal != 0.9 || p.Tension != 0.6 {
		t.Errorf("emotion fields not translated: %+v", p)
	}
	if p.Algorithm != rhythm.ModePerfectBalance {
		t.Errorf("Algorithm = %v, want ModePerfectBalance", p.Algorithm)
	}
	if p.HarmonyMode != engine.HarmonyModeDriver {
		t.Errorf("HarmonyMode = %v, want HarmonyModeDriver", p.HarmonyMode)
	}
	if !p.MutedChannels[3] {
		t.Error("expected hat channel (3) to be muted")
	}
}
