package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/b/vertical-tabs/pkg/paths"
)

// EnvPrefix prefixes environment overrides, e.g. VTABS_BRIDGE_PORT.
const EnvPrefix = "VTABS"

// Load reads path, or config.yaml in the config directory when path is empty, over the
// defaults. A missing file is not an error. It returns the file actually read, if any.
func Load(path string) (Config, string, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(paths.ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, "", fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, used, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, used, err
	}
	return cfg, used, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("source", d.Source)
	v.SetDefault("bridge.host", d.Bridge.Host)
	v.SetDefault("bridge.port", d.Bridge.Port)
	v.SetDefault("cdp.url", d.CDP.URL)
	v.SetDefault("search.debounce", d.Search.Debounce)
	v.SetDefault("panel.width", d.Panel.Width)
	v.SetDefault("panel.side", d.Panel.Side)
	v.SetDefault("theme.preset", d.Theme.Preset)
	v.SetDefault("theme.mode", d.Theme.Mode)
	v.SetDefault("icons.extension_id", d.Icons.ExtensionID)
	v.SetDefault("icons.failure_ttl", d.Icons.FailureTTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
}

// ErrConfigExists is returned by Write when the file is already there and force is off.
var ErrConfigExists = errors.New("config file already exists")

// Write saves cfg as yaml at path, creating the parent directory.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
