package config

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RollupConfig tunes the daily analytics rollup worker.
type RollupConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	BatchSize    int           `mapstructure:"batchSize"`
	RunTimeout   time.Duration `mapstructure:"runTimeout"`
}

func DefaultRollupConfig() RollupConfig {
	return RollupConfig{
		Enabled:      true,
		PollInterval: time.Hour,
		BatchSize:    200,
		RunTimeout:   2 * time.Minute,
	}
}

// RollupConfigHolder serves the current rollup config and hot-reloads it
// when the config file changes on disk.
type RollupConfigHolder struct {
	current atomic.Value // holds RollupConfig
}

func NewRollupConfigHolder() (*RollupConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("analytics")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/scene/config")
	v.AddConfigPath("/etc/scene")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SCENE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRollupConfig()
	v.SetDefault("rollup.enabled", defaults.Enabled)
	v.SetDefault("rollup.pollInterval", defaults.PollInterval)
	v.SetDefault("rollup.batchSize", defaults.BatchSize)
	v.SetDefault("rollup.runTimeout", defaults.RunTimeout)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	holder := &RollupConfigHolder{}
	if err := holder.reload(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(fsnotify.Event) {
		_ = holder.reload(v)
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticRollupConfigHolder pins the holder to the given config with
// no file watching. Useful where hot reload is not wanted.
func NewStaticRollupConfigHolder(cfg RollupConfig) *RollupConfigHolder {
	h := &RollupConfigHolder{}
	h.current.Store(cfg.withDefaults())
	return h
}

// Current returns the most recently loaded config.
func (h *RollupConfigHolder) Current() RollupConfig {
	if h == nil {
		return DefaultRollupConfig()
	}
	if cfg, ok := h.current.Load().(RollupConfig); ok {
		return cfg.withDefaults()
	}
	return DefaultRollupConfig()
}

func (h *RollupConfigHolder) reload(v *viper.Viper) error {
	var cfg RollupConfig
	if err := v.UnmarshalKey("rollup", &cfg); err != nil {
		return err
	}
	h.current.Store(cfg.withDefaults())
	return nil
}

func (c RollupConfig) withDefaults() RollupConfig {
	defaults := DefaultRollupConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
