// Package paths resolves where vtabs keeps its config and state files.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/vtabs/config.yaml   (override: VTABS_CONFIG_DIR)
//	State:   ~/.local/state/vtabs/         (override: VTABS_STATE_DIR)
//
// The state directory holds the log file, the saved theme preference and the bridge
// token.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const appName = "vtabs"

var (
	configDirOnce   sync.Once
	configDirCached string

	stateDirOnce   sync.Once
	stateDirCached string
)

func resolve(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// ConfigDir resolves the config directory.
// Priority: VTABS_CONFIG_DIR env > ~/.config/vtabs/
func ConfigDir() string {
	configDirOnce.Do(func() {
		configDirCached = resolve("VTABS_CONFIG_DIR", ".config", appName)
	})
	return configDirCached
}

// StateDir resolves the state directory.
// Priority: VTABS_STATE_DIR env > ~/.local/state/vtabs/
func StateDir() string {
	stateDirOnce.Do(func() {
		stateDirCached = resolve("VTABS_STATE_DIR", ".local", "state", appName)
	})
	return stateDirCached
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StatePath returns the full path to a state file (e.g. "prefs.yaml").
func StatePath(filename string) string {
	return filepath.Join(StateDir(), filename)
}

// EnsureConfigDir creates the config directory if it doesn't exist and returns its path.
func EnsureConfigDir() (string, error) {
	return ensure(ConfigDir(), "config")
}

// EnsureStateDir creates the state directory if it doesn't exist and returns its path.
func EnsureStateDir() (string, error) {
	return ensure(StateDir(), "state")
}

func ensure(dir, kind string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s dir %s: %w", kind, dir, err)
	}
	return dir, nil
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	stateDirOnce = sync.Once{}
	stateDirCached = ""
}
