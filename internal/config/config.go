package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ashwch/etherea/internal/appdirs"
	"github.com/ashwch/etherea/internal/settings"
)

const currentVersion = 1

const (
	WorkspaceSQLite = "sqlite"
	WorkspaceKV     = "kv"
	WorkspaceMemory = "memory"
)

type BrainConfig struct {
	BankPath      string   `toml:"bank_path" json:"bank_path"`
	BankURL       string   `toml:"bank_url" json:"bank_url"`
	BannedPhrases []string `toml:"banned_phrases" json:"banned_phrases"`
	MicroLines    bool     `toml:"micro_lines" json:"micro_lines"`
}

type WorkspaceConfig struct {
	Backend string `toml:"backend" json:"backend"`
	// Path overrides the backend file location. Empty uses the state dir.
	Path string `toml:"path" json:"path"`
}

type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type MemoryConfig struct {
	Journal bool `toml:"journal" json:"journal"`
	Redact  bool `toml:"redact" json:"redact"`
}

type Config struct {
	Version   int               `toml:"version" json:"version"`
	Settings  settings.Settings `toml:"settings" json:"settings"`
	Brain     BrainConfig       `toml:"brain" json:"brain"`
	Workspace WorkspaceConfig   `toml:"workspace" json:"workspace"`
	Log       LogConfig         `toml:"log" json:"log"`
	UI        UIConfig          `toml:"ui" json:"ui"`
	Memory    MemoryConfig      `toml:"memory" json:"memory"`
}

func Default() Config {
	return Config{
		Version:  currentVersion,
		Settings: settings.Default(),
		Brain: BrainConfig{
			MicroLines: true,
		},
		Workspace: WorkspaceConfig{
			Backend: WorkspaceSQLite,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		UI: UIConfig{
			Backend: "auto",
		},
		Memory: MemoryConfig{
			Journal: true,
			Redact:  true,
		},
	}
}

// Keys lists every dotted key accepted by Set and Get.
func Keys() []string {
	return []string{
		"settings.preset",
		"settings.accent",
		"settings.glow",
		"settings.rounded",
		"settings.reduced_motion",
		"settings.mic_opt_in",
		"settings.privacy_kill_switch",
		"settings.voice_output_enabled",
		"settings.mode",
		"settings.workspace_roots",
		"brain.bank_path",
		"brain.bank_url",
		"brain.banned_phrases",
		"brain.micro_lines",
		"workspace.backend",
		"workspace.path",
		"log.level",
		"log.format",
		"ui.backend",
		"memory.journal",
		"memory.redact",
	}
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, err := appdirs.EnsureConfigDir(); err != nil {
			return Config{}, "", err
		}
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	cfg, err = Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// Load reads an existing config file. Missing keys keep their defaults.
func Load(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, ".etherea-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp config file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp config file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	return nil
}

// FileSaver persists the settings section back into a config file.
type FileSaver struct {
	Path string
	Base Config
}

func (s *FileSaver) SaveSettings(next settings.Settings) error {
	s.Base.Settings = next.Clone()
	return Save(s.Path, s.Base)
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	c.Settings = c.Settings.Normalize()

	c.Brain.BankPath = strings.TrimSpace(c.Brain.BankPath)
	c.Brain.BankURL = strings.TrimSpace(c.Brain.BankURL)
	c.Brain.BannedPhrases = cleanList(c.Brain.BannedPhrases)

	c.Workspace.Backend = normalizeChoice(c.Workspace.Backend, defaults.Workspace.Backend, WorkspaceSQLite, WorkspaceKV, WorkspaceMemory)
	c.Workspace.Path = strings.TrimSpace(c.Workspace.Path)

	c.Log.Level = normalizeChoice(c.Log.Level, defaults.Log.Level, "debug", "info", "warn", "error")
	c.Log.Format = normalizeChoice(c.Log.Format, defaults.Log.Format, "console", "json")
	c.UI.Backend = normalizeChoice(c.UI.Backend, defaults.UI.Backend, "auto", "bubbletea", "huh", "tview", "plain")
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	switch key {
	case "settings.preset":
		accent, ok := settings.AccentFor(value)
		if !ok {
			return fmt.Errorf("settings.preset must be one of %s", strings.Join(settings.Presets(), "|"))
		}
		c.Settings.Preset = strings.ToLower(value)
		c.Settings.Accent = accent
	case "settings.accent":
		if !settings.ValidAccent(value) {
			return fmt.Errorf("settings.accent must look like #rrggbb")
		}
		c.Settings.Accent = strings.ToLower(value)
	case "settings.glow":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < 0 || n > 1 {
			return fmt.Errorf("settings.glow must be between 0 and 1")
		}
		c.Settings.Glow = n
	case "settings.rounded":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("settings.rounded must be a non-negative number")
		}
		c.Settings.Rounded = n
	case "settings.reduced_motion":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("settings.reduced_motion must be boolean")
		}
		c.Settings.ReducedMotion = b
	case "settings.mic_opt_in":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("settings.mic_opt_in must be boolean")
		}
		if b && c.Settings.PrivacyKillSwitch {
			return fmt.Errorf("settings.mic_opt_in cannot be enabled while the privacy kill-switch is on")
		}
		c.Settings.MicOptIn = b
	case "settings.privacy_kill_switch":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("settings.privacy_kill_switch must be boolean")
		}
		c.Settings.PrivacyKillSwitch = b
	case "settings.voice_output_enabled":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("settings.voice_output_enabled must be boolean")
		}
		c.Settings.VoiceOutputEnabled = b
	case "settings.mode":
		if value == "" {
			return fmt.Errorf("settings.mode cannot be empty")
		}
		c.Settings.Mode = value
	case "settings.workspace_roots":
		c.Settings.WorkspaceRoots = splitCommaList(value)
	case "brain.bank_path":
		c.Brain.BankPath = value
	case "brain.bank_url":
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("brain.bank_url must be an http(s) URL")
		}
		c.Brain.BankURL = value
	case "brain.banned_phrases":
		c.Brain.BannedPhrases = splitCommaList(value)
	case "brain.micro_lines":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("brain.micro_lines must be boolean")
		}
		c.Brain.MicroLines = b
	case "workspace.backend":
		c.Workspace.Backend = normalizeChoice(value, "", WorkspaceSQLite, WorkspaceKV, WorkspaceMemory)
		if c.Workspace.Backend == "" {
			return fmt.Errorf("workspace.backend must be one of sqlite|kv|memory")
		}
	case "workspace.path":
		c.Workspace.Path = value
	case "log.level":
		c.Log.Level = normalizeChoice(value, "", "debug", "info", "warn", "error")
		if c.Log.Level == "" {
			return fmt.Errorf("log.level must be one of debug|info|warn|error")
		}
	case "log.format":
		c.Log.Format = normalizeChoice(value, "", "console", "json")
		if c.Log.Format == "" {
			return fmt.Errorf("log.format must be one of console|json")
		}
	case "ui.backend":
		c.UI.Backend = normalizeChoice(value, "", "auto", "bubbletea", "huh", "tview", "plain")
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of auto|bubbletea|huh|tview|plain")
		}
	case "memory.journal":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("memory.journal must be boolean")
		}
		c.Memory.Journal = b
	case "memory.redact":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("memory.redact must be boolean")
		}
		c.Memory.Redact = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c Config) Get(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	switch key {
	case "settings.preset":
		return c.Settings.Preset, nil
	case "settings.accent":
		return c.Settings.Accent, nil
	case "settings.glow":
		return strconv.FormatFloat(c.Settings.Glow, 'g', -1, 64), nil
	case "settings.rounded":
		return strconv.Itoa(c.Settings.Rounded), nil
	case "settings.reduced_motion":
		return strconv.FormatBool(c.Settings.ReducedMotion), nil
	case "settings.mic_opt_in":
		return strconv.FormatBool(c.Settings.MicOptIn), nil
	case "settings.privacy_kill_switch":
		return strconv.FormatBool(c.Settings.PrivacyKillSwitch), nil
	case "settings.voice_output_enabled":
		return strconv.FormatBool(c.Settings.VoiceOutputEnabled), nil
	case "settings.mode":
		return c.Settings.Mode, nil
	case "settings.workspace_roots":
		return strings.Join(c.Settings.WorkspaceRoots, ","), nil
	case "brain.bank_path":
		return c.Brain.BankPath, nil
	case "brain.bank_url":
		return c.Brain.BankURL, nil
	case "brain.banned_phrases":
		return strings.Join(c.Brain.BannedPhrases, ","), nil
	case "brain.micro_lines":
		return strconv.FormatBool(c.Brain.MicroLines), nil
	case "workspace.backend":
		return c.Workspace.Backend, nil
	case "workspace.path":
		return c.Workspace.Path, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.format":
		return c.Log.Format, nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "memory.journal":
		return strconv.FormatBool(c.Memory.Journal), nil
	case "memory.redact":
		return strconv.FormatBool(c.Memory.Redact), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// WorkspacePath resolves the backend file, defaulting into the state dir.
func (c Config) WorkspacePath() (string, error) {
	if c.Workspace.Path != "" {
		return c.Workspace.Path, nil
	}
	switch c.Workspace.Backend {
	case WorkspaceKV:
		return appdirs.StateFilePath(appdirs.KVFileName)
	case WorkspaceSQLite:
		return appdirs.StateFilePath(appdirs.WorkspaceDBFileName)
	default:
		return "", nil
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean")
	}
}

func splitCommaList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return cleanList(strings.Split(value, ","))
}

func cleanList(values []string) []string {
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

func normalizeChoice(value, fallback string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return fallback
}
