// Package config holds the vtabs settings read from config.yaml.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/b/vertical-tabs/pkg/colors"
)

// Tab sources.
const (
	SourceBridge = "bridge"
	SourceCDP    = "cdp"
	SourceDemo   = "demo"
)

// Panel sides.
const (
	SideLeft  = "left"
	SideRight = "right"
)

var (
	ErrUnknownSource = errors.New("unknown tab source")
	ErrInvalidValue  = errors.New("invalid config value")
)

// Config is the full settings tree.
type Config struct {
	Source string `mapstructure:"source" yaml:"source"`
	Bridge Bridge `mapstructure:"bridge" yaml:"bridge"`
	CDP    CDP    `mapstructure:"cdp" yaml:"cdp"`
	Search Search `mapstructure:"search" yaml:"search"`
	Panel  Panel  `mapstructure:"panel" yaml:"panel"`
	Theme  Theme  `mapstructure:"theme" yaml:"theme"`
	Icons  Icons  `mapstructure:"icons" yaml:"icons"`
	Log    Log    `mapstructure:"log" yaml:"log"`
}

// Bridge is where the extension bridge listens.
type Bridge struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// CDP points at a browser started with --remote-debugging-port.
type CDP struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type Search struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Panel sizes the side pane opened by "vtabs attach".
type Panel struct {
	Width int    `mapstructure:"width" yaml:"width"`
	Side  string `mapstructure:"side" yaml:"side"`
}

// Theme is the selection used until the user picks one in the panel.
type Theme struct {
	Preset string `mapstructure:"preset" yaml:"preset"`
	Mode   string `mapstructure:"mode" yaml:"mode"`
}

type Icons struct {
	ExtensionID string        `mapstructure:"extension_id" yaml:"extension_id"`
	FailureTTL  time.Duration `mapstructure:"failure_ttl" yaml:"failure_ttl"`
}

type Log struct {
	Level      string `mapstructure:"level" yaml:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// Defaults returns the settings used for every key the file leaves out.
func Defaults() Config {
	return Config{
		Source: SourceBridge,
		Bridge: Bridge{Host: "127.0.0.1", Port: 7685},
		CDP:    CDP{URL: "ws://127.0.0.1:9222"},
		Search: Search{Debounce: 150 * time.Millisecond},
		Panel:  Panel{Width: 40, Side: SideLeft},
		Theme:  Theme{Preset: colors.DefaultPresetID, Mode: string(colors.ThemeModeAuto)},
		Icons:  Icons{FailureTTL: 10 * time.Minute},
		Log:    Log{Level: "info", MaxSizeMB: 5, MaxBackups: 3},
	}
}

// Validate rejects settings the panel cannot start with.
func (c Config) Validate() error {
	switch c.Source {
	case SourceBridge, SourceCDP, SourceDemo:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source)
	}
	if c.Bridge.Port <= 0 || c.Bridge.Port > 65535 {
		return fmt.Errorf("%w: bridge.port %d", ErrInvalidValue, c.Bridge.Port)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("%w: search.debounce %s", ErrInvalidValue, c.Search.Debounce)
	}
	if c.Panel.Width <= 0 {
		return fmt.Errorf("%w: panel.width %d", ErrInvalidValue, c.Panel.Width)
	}
	if c.Panel.Side != SideLeft && c.Panel.Side != SideRight {
		return fmt.Errorf("%w: panel.side %q", ErrInvalidValue, c.Panel.Side)
	}
	if _, err := colors.ParseThemeMode(c.Theme.Mode); err != nil {
		return fmt.Errorf("%w: theme.mode: %w", ErrInvalidValue, err)
	}
	return nil
}
