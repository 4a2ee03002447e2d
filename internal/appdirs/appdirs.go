package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const AppName = "etherea"

// EnvHome, when set, roots both config and state under one directory.
const EnvHome = "ETHEREA_HOME"

const (
	ConfigFileName      = "config.toml"
	WorkspaceDBFileName = "workspace.db"
	KVFileName          = "kv.json"
	JournalFileName     = "memory.jsonl"
)

type kind int

const (
	kindConfig kind = iota
	kindState
)

func baseDir(k kind) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		env, fallback := "APPDATA", filepath.Join(home, "AppData", "Roaming")
		if k == kindState {
			env, fallback = "LOCALAPPDATA", filepath.Join(home, "AppData", "Local")
		}
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
		return fallback, nil
	default:
		env, fallback := "XDG_CONFIG_HOME", filepath.Join(home, ".config")
		if k == kindState {
			env, fallback = "XDG_STATE_HOME", filepath.Join(home, ".local", "state")
		}
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
		return fallback, nil
	}
}

func dir(k kind) (string, error) {
	if root := os.Getenv(EnvHome); root != "" {
		if k == kindState {
			return filepath.Join(root, "state"), nil
		}
		return root, nil
	}
	base, err := baseDir(k)
	if err != nil {
		return "", err
	}
	if k == kindState {
		return filepath.Join(base, AppName, "state"), nil
	}
	return filepath.Join(base, AppName), nil
}

func ensure(k kind, label string) (string, error) {
	d, err := dir(k)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o700); err != nil {
		return "", fmt.Errorf("could not create %s dir: %w", label, err)
	}
	if err := os.Chmod(d, 0o700); err != nil {
		return "", fmt.Errorf("could not secure %s dir permissions: %w", label, err)
	}
	return d, nil
}

func ConfigDir() (string, error) {
	return dir(kindConfig)
}

func EnsureConfigDir() (string, error) {
	return ensure(kindConfig, "config")
}

func ConfigFilePath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, ConfigFileName), nil
}

func StateDir() (string, error) {
	return dir(kindState)
}

func EnsureStateDir() (string, error) {
	return ensure(kindState, "state")
}

// StateFilePath names a file in the state dir without creating anything.
func StateFilePath(name string) (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}
