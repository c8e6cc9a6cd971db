package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/vertical-tabs/pkg/logx"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, used, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `source: demo
search:
  debounce: 300ms
panel:
  width: 32
  side: right
theme:
  preset: nord
icons:
  failure_ttl: 1m
`)

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, SourceDemo, cfg.Source)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, Panel{Width: 32, Side: SideRight}, cfg.Panel)
	assert.Equal(t, "nord", cfg.Theme.Preset)
	assert.Equal(t, time.Minute, cfg.Icons.FailureTTL)
	// untouched keys keep their defaults
	assert.Equal(t, Defaults().Bridge, cfg.Bridge)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VTABS_BRIDGE_PORT", "9000")
	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Bridge.Port)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "source: carrier-pigeon\n")

	_, _, err := Load(path)
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "panel: [oops\n")

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Bridge.Port = 0 }},
		{"debounce", func(c *Config) { c.Search.Debounce = -time.Second }},
		{"width", func(c *Config) { c.Panel.Width = 0 }},
		{"side", func(c *Config) { c.Panel.Side = "top" }},
		{"mode", func(c *Config) { c.Theme.Mode = "sepia" }},
	}
	require.NoError(t, Defaults().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)
		})
	}
}

func TestWriteRoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Source = SourceCDP
	cfg.Search.Debounce = 75 * time.Millisecond
	require.NoError(t, Write(path, cfg, false))

	got, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	require.ErrorIs(t, Write(path, cfg, false), ErrConfigExists)
	require.NoError(t, Write(path, cfg, true))
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "source: demo\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	require.NoError(t, Watch(ctx, path, logx.Discard(), func() { changes.Add(1) }))

	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	writeFile(t, path, "source: bridge\n")

	assert.Eventually(t, func() bool { return changes.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}
