package settings

import (
	"math"
	"regexp"
	"slices"
	"strings"
)

const (
	DefaultPreset  = "nebula"
	DefaultGlow    = 0.55
	DefaultRounded = 14
	DefaultMode    = "professional"
)

// PresetAccents maps every known theme preset to its accent color.
var PresetAccents = map[string]string{
	"nebula":       "#7c3aed",
	"cotton-candy": "#ec4899",
	"forest":       "#22c55e",
	"sunset":       "#f97316",
	"midnight":     "#38bdf8",
}

var accentPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Settings is the user-facing state the executor reads and merges into.
type Settings struct {
	Preset             string   `toml:"preset" json:"preset"`
	Accent             string   `toml:"accent" json:"accent"`
	Glow               float64  `toml:"glow" json:"glow"`
	Rounded            int      `toml:"rounded" json:"rounded"`
	ReducedMotion      bool     `toml:"reduced_motion" json:"reducedMotion"`
	MicOptIn           bool     `toml:"mic_opt_in" json:"micOptIn"`
	PrivacyKillSwitch  bool     `toml:"privacy_kill_switch" json:"privacyKillSwitch"`
	VoiceOutputEnabled bool     `toml:"voice_output_enabled" json:"voiceOutputEnabled"`
	Mode               string   `toml:"mode" json:"mode"`
	WorkspaceRoots     []string `toml:"workspace_roots" json:"workspaceRoots"`
}

func Default() Settings {
	return Settings{
		Preset:  DefaultPreset,
		Accent:  PresetAccents[DefaultPreset],
		Glow:    DefaultGlow,
		Rounded: DefaultRounded,
		Mode:    DefaultMode,
	}
}

// Presets returns the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(PresetAccents))
	for name := range PresetAccents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AccentFor resolves a preset to its accent. Unknown presets report false.
func AccentFor(preset string) (string, bool) {
	accent, ok := PresetAccents[strings.ToLower(strings.TrimSpace(preset))]
	return accent, ok
}

func ValidAccent(accent string) bool {
	return accentPattern.MatchString(accent)
}

func ClampGlow(glow float64) float64 {
	if math.IsNaN(glow) || math.IsInf(glow, 0) {
		return DefaultGlow
	}
	return math.Max(0, math.Min(1, glow))
}

// Normalize repairs out-of-range values. The kill-switch always wins over
// mic opt-in.
func (s Settings) Normalize() Settings {
	defaults := Default()
	s.Preset = strings.ToLower(strings.TrimSpace(s.Preset))
	if s.Preset == "" {
		s.Preset = defaults.Preset
	}
	s.Accent = strings.ToLower(strings.TrimSpace(s.Accent))
	if !ValidAccent(s.Accent) {
		if accent, ok := AccentFor(s.Preset); ok {
			s.Accent = accent
		} else {
			s.Accent = defaults.Accent
		}
	}
	s.Glow = ClampGlow(s.Glow)
	if s.Rounded < 0 {
		s.Rounded = 0
	}
	s.Mode = strings.TrimSpace(s.Mode)
	if s.Mode == "" {
		s.Mode = defaults.Mode
	}
	if s.PrivacyKillSwitch {
		s.MicOptIn = false
	}
	s.WorkspaceRoots = dedupe(s.WorkspaceRoots)
	return s
}

// Clone copies the settings so slice fields are not shared.
func (s Settings) Clone() Settings {
	if s.WorkspaceRoots != nil {
		s.WorkspaceRoots = slices.Clone(s.WorkspaceRoots)
	}
	return s
}

func (s Settings) HasWorkspaceRoot(root string) bool {
	return slices.Contains(s.WorkspaceRoots, root)
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
