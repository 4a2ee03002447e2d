package settings

import (
	"math"
	"reflect"
	"testing"
)

func TestDefaultIsAlreadyNormal(t *testing.T) {
	def := Default()
	if got := def.Normalize(); !reflect.DeepEqual(got, def) {
		t.Fatalf("expected default to survive normalize, got %#v", got)
	}
	if def.Accent != "#7c3aed" {
		t.Fatalf("expected nebula accent, got %q", def.Accent)
	}
}

func TestNormalizeRepairsFields(t *testing.T) {
	got := Settings{
		Preset:            " Forest ",
		Accent:            "green",
		Glow:              math.Inf(1),
		Rounded:           -3,
		MicOptIn:          true,
		PrivacyKillSwitch: true,
		WorkspaceRoots:    []string{"~/src", " ", "~/src", "/tmp"},
	}.Normalize()

	if got.Preset != "forest" || got.Accent != "#22c55e" {
		t.Fatalf("expected forest preset accent, got %q %q", got.Preset, got.Accent)
	}
	if got.Glow != DefaultGlow {
		t.Fatalf("expected default glow, got %v", got.Glow)
	}
	if got.Rounded != 0 {
		t.Fatalf("expected rounded floor at 0, got %d", got.Rounded)
	}
	if got.MicOptIn {
		t.Fatalf("kill-switch must force mic opt-in off")
	}
	if got.Mode != DefaultMode {
		t.Fatalf("expected default mode, got %q", got.Mode)
	}
	if !reflect.DeepEqual(got.WorkspaceRoots, []string{"~/src", "/tmp"}) {
		t.Fatalf("unexpected roots: %#v", got.WorkspaceRoots)
	}
}

func TestClampGlow(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.3: 0.3, 2: 1}
	for in, want := range cases {
		if got := ClampGlow(in); got != want {
			t.Fatalf("ClampGlow(%v) = %v, want %v", in, got, want)
		}
	}
	if got := ClampGlow(math.NaN()); got != DefaultGlow {
		t.Fatalf("expected NaN to fall back, got %v", got)
	}
}

func TestAccentFor(t *testing.T) {
	if accent, ok := AccentFor("SUNSET"); !ok || accent != "#f97316" {
		t.Fatalf("expected sunset accent, got %q ok=%v", accent, ok)
	}
	if _, ok := AccentFor("vaporwave"); ok {
		t.Fatalf("unknown preset should not resolve")
	}
	if len(Presets()) != len(PresetAccents) || Presets()[0] != "cotton-candy" {
		t.Fatalf("unexpected preset order: %v", Presets())
	}
}

func TestCloneDetachesRoots(t *testing.T) {
	original := Settings{WorkspaceRoots: []string{"a"}}
	clone := original.Clone()
	clone.WorkspaceRoots[0] = "b"
	if original.WorkspaceRoots[0] != "a" {
		t.Fatalf("clone shares backing array")
	}
}
