package config

import (
	"strings"

	"codeberg.org/rwein/barpoll/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	// Heuristic defaults. These mirror the behavior the status-bar host was
	// tuned against but carry no measured derivation, hence configurable.
	defaultLoadThreshold  = 0.75
	defaultMinElapsedSec  = 1e-6
	defaultMaxElapsedSec  = 1e2
	defaultListInitial    = 1024
	defaultListCeiling    = 16384
	defaultHistoryDB      = "/var/lib/barpoll/history.db"
	defaultHistoryBatch   = 16
	defaultHistoryTimeout = 30
)

// Config holds the tunables shared by all event-provider daemons. Positional
// arguments (event name, poll frequency, interface name, update interval)
// stay on the command line; everything here is an optional override.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
	BarName  string `mapstructure:"bar_name"`

	// Package-update sampler: defer refreshes while the 1-minute load
	// average exceeds this fraction of the core count.
	LoadThreshold float64 `mapstructure:"load_threshold"`

	// Network sampler: elapsed wall-clock bounds outside which a sample
	// is discarded (seconds).
	MinElapsed float64 `mapstructure:"min_elapsed"`
	MaxElapsed float64 `mapstructure:"max_elapsed"`

	// Package list buffer sizing (bytes).
	ListInitial int `mapstructure:"list_initial"`
	ListCeiling int `mapstructure:"list_ceiling"`

	// Optional local sample history.
	History             bool   `mapstructure:"history"`
	HistoryDB           string `mapstructure:"history_db"`
	HistoryBatchSize    int    `mapstructure:"history_batch_size"`
	HistoryBatchTimeout int    `mapstructure:"history_batch_timeout"`
}

// Load reads configuration from the optional TOML file, the environment and
// command-line flags, in increasing order of precedence. Flag parsing is
// done here so callers pick up positional arguments via pflag.Args().
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("load_threshold", defaultLoadThreshold)
	v.SetDefault("min_elapsed", defaultMinElapsedSec)
	v.SetDefault("max_elapsed", defaultMaxElapsedSec)
	v.SetDefault("list_initial", defaultListInitial)
	v.SetDefault("list_ceiling", defaultListCeiling)
	v.SetDefault("history", false)
	v.SetDefault("history_db", defaultHistoryDB)
	v.SetDefault("history_batch_size", defaultHistoryBatch)
	v.SetDefault("history_batch_timeout", defaultHistoryTimeout)

	v.SetEnvPrefix("BARPOLL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	} else {
		v.SetConfigName("barpoll")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err).
					WithMessage("Failed to read config file")
			}
		}
	}

	if !pflag.Parsed() {
		pflag.Bool("debug", false, "Enable debug logging")
		pflag.Bool("verbose", false, "Enable verbose logging")
		pflag.String("log-level", "", "Log level (debug, info, warning, error)")
		pflag.Parse()
	}

	if err := v.BindPFlag("debug", pflag.Lookup("debug")); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if err := v.BindPFlag("verbose", pflag.Lookup("verbose")); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}
	if lvl := pflag.Lookup("log-level"); lvl != nil && lvl.Changed {
		v.Set("log_level", lvl.Value.String())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants that would otherwise surface deep in a sampler.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.LoadThreshold <= 0 || c.LoadThreshold > 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "load_threshold must be in (0, 1]")
	}

	if c.MinElapsed <= 0 || c.MaxElapsed <= c.MinElapsed {
		return errFactory.WithData(errors.ErrInvalidConfig, "elapsed bounds must satisfy 0 < min < max")
	}

	if c.ListInitial <= 0 || c.ListCeiling < c.ListInitial {
		return errFactory.WithData(errors.ErrInvalidConfig, "list buffer sizes must satisfy 0 < initial <= ceiling")
	}

	return nil
}
