package appdirs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestEnsureDirsUsePrivatePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvHome, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")

	for name, ensureFn := range map[string]func() (string, error){
		"config": EnsureConfigDir,
		"state":  EnsureStateDir,
	} {
		dir, err := ensureFn()
		if err != nil {
			t.Fatalf("ensure %s dir failed: %v", name, err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s dir failed: %v", name, err)
		}
		if perms := info.Mode().Perm(); perms&0o077 != 0 {
			t.Fatalf("expected private %s dir permissions, got %o", name, perms)
		}
	}
}

func TestHomeOverrideRootsBothDirs(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvHome, root)

	cfg, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath failed: %v", err)
	}
	if cfg != filepath.Join(root, ConfigFileName) {
		t.Fatalf("unexpected config path %q", cfg)
	}
	journal, err := StateFilePath(JournalFileName)
	if err != nil {
		t.Fatalf("StateFilePath failed: %v", err)
	}
	if journal != filepath.Join(root, "state", JournalFileName) {
		t.Fatalf("unexpected journal path %q", journal)
	}
}

func TestXDGStateHomeIsHonored(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("xdg only applies on unix-like systems")
	}
	state := t.TempDir()
	t.Setenv(EnvHome, "")
	t.Setenv("XDG_STATE_HOME", state)

	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir failed: %v", err)
	}
	if dir != filepath.Join(state, AppName, "state") {
		t.Fatalf("unexpected state dir %q", dir)
	}
}
