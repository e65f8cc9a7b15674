package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	MergeAppend = "append"
	MergeUpsert = "upsert"

	DefaultSendTimeout = 30 * time.Second
	DefaultTick        = 250 * time.Millisecond
)

type Config struct {
	DataPath   string `yaml:"-"`
	StateDir   string `yaml:"-"`
	DBPath     string `yaml:"-"`
	ConfigPath string `yaml:"-"`

	Log      LogConfig      `yaml:"log"`
	Sync     SyncConfig     `yaml:"sync"`
	Playback PlaybackConfig `yaml:"playback"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SyncConfig struct {
	SendTimeout time.Duration `yaml:"send_timeout"`
	Merge       string        `yaml:"merge"`
	ListenAddrs []string      `yaml:"listen_addrs"`
}

type PlaybackConfig struct {
	Tick  time.Duration `yaml:"tick"`
	Sound bool          `yaml:"sound"`
	Bell  bool          `yaml:"bell"`
}

// New builds the configuration for a data directory. Values are resolved in
// order: defaults, the YAML file at configPath (or <data>/.intervals/config.yaml
// when empty), then environment overrides:
//
//	INTERVALS_LOG_LEVEL, INTERVALS_SYNC_SEND_TIMEOUT, INTERVALS_SYNC_MERGE,
//	INTERVALS_SYNC_LISTEN_ADDRS, INTERVALS_PLAYBACK_TICK,
//	INTERVALS_PLAYBACK_SOUND, INTERVALS_PLAYBACK_BELL
func New(dataPath, configPath string) (Config, error) {
	if strings.TrimSpace(dataPath) == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	stateDir := filepath.Join(dataPath, ".intervals")
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(stateDir, "config.yaml")
	}

	cfg := Config{
		DataPath:   dataPath,
		StateDir:   stateDir,
		DBPath:     filepath.Join(stateDir, "intervals.db"),
		ConfigPath: configPath,
		Log:        LogConfig{Level: "info"},
		Sync: SyncConfig{
			SendTimeout: DefaultSendTimeout,
			Merge:       MergeUpsert,
			ListenAddrs: []string{"/ip4/0.0.0.0/tcp/0", "/ip6/::/tcp/0"},
		},
		Playback: PlaybackConfig{Tick: DefaultTick, Bell: true},
	}

	raw, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("INTERVALS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("INTERVALS_SYNC_SEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INTERVALS_SYNC_SEND_TIMEOUT: %w", err)
		}
		cfg.Sync.SendTimeout = d
	}
	if v := os.Getenv("INTERVALS_SYNC_MERGE"); v != "" {
		cfg.Sync.Merge = v
	}
	if v := os.Getenv("INTERVALS_SYNC_LISTEN_ADDRS"); v != "" {
		cfg.Sync.ListenAddrs = strings.Split(v, ",")
	}
	if v := os.Getenv("INTERVALS_PLAYBACK_TICK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INTERVALS_PLAYBACK_TICK: %w", err)
		}
		cfg.Playback.Tick = d
	}
	if v := os.Getenv("INTERVALS_PLAYBACK_SOUND"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INTERVALS_PLAYBACK_SOUND: %w", err)
		}
		cfg.Playback.Sound = b
	}
	if v := os.Getenv("INTERVALS_PLAYBACK_BELL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INTERVALS_PLAYBACK_BELL: %w", err)
		}
		cfg.Playback.Bell = b
	}
	return nil
}

// WithLogLevel returns a copy using level, validated like a configured value.
func (c Config) WithLogLevel(level string) (Config, error) {
	c.Log.Level = level
	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Sync.SendTimeout <= 0 {
		return fmt.Errorf("sync.send_timeout must be positive")
	}
	switch c.Sync.Merge {
	case MergeAppend, MergeUpsert:
	default:
		return fmt.Errorf("sync.merge must be %q or %q, got %q", MergeAppend, MergeUpsert, c.Sync.Merge)
	}
	if len(c.Sync.ListenAddrs) == 0 {
		return fmt.Errorf("sync.listen_addrs is required")
	}
	if c.Playback.Tick <= 0 || c.Playback.Tick > time.Second {
		return fmt.Errorf("playback.tick must be in (0, 1s], got %s", c.Playback.Tick)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("log.level %q is not supported", c.Log.Level)
	}
	return nil
}
