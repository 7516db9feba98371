// Package config defines application configuration and its loading order:
// defaults, then an optional YAML file, then MOVIERANKER_-prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Error types for configuration validation
var (
	ErrInvalidKFactor   = errors.New("k_factor must be positive")
	ErrInvalidRounds    = errors.New("max_rounds must be positive")
	ErrInvalidWindow    = errors.New("trend window_days must be positive")
	ErrUnknownStore     = errors.New("unknown store backend")
	ErrInvalidLogLevel  = errors.New("unknown log level")
	ErrConfigFileFailed = errors.New("failed to load configuration file")
)

// Store backends selectable via configuration.
const (
	StoreBadger  = "badger"
	StoreJournal = "journal"
	StoreMemory  = "memory"
)

// Config is the process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects json or console output.
	LogFormat string `koanf:"log_format"`

	// DataDir is where durable stores keep their files.
	DataDir string `koanf:"data_dir"`

	// Store selects the persistence backend: badger, journal, or memory.
	// The journal backend keeps scores in memory and snapshots in a JSONL
	// file; memory keeps everything in-process.
	Store string `koanf:"store"`

	// KFactor is the rating step per comparison outcome.
	KFactor float64 `koanf:"k_factor"`

	// MaxRounds bounds each comparison session.
	MaxRounds int `koanf:"max_rounds"`

	// WindowDays is the default trailing window for mover queries.
	WindowDays int `koanf:"window_days"`

	// TopN is the default result count for mover queries.
	TopN int `koanf:"top_n"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "console",
		DataDir:    defaultDataDir(),
		Store:      StoreBadger,
		KFactor:    28,
		MaxRounds:  7,
		WindowDays: 7,
		TopN:       6,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".movieranker"
	}
	return home + "/.movieranker"
}

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) when path is non-empty
//  3. env (prefix MOVIERANKER_, e.g. MOVIERANKER_K_FACTOR)
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrConfigFileFailed, err)
		}
	}

	envProvider := env.Provider("MOVIERANKER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "MOVIERANKER_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.KFactor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidKFactor, c.KFactor)
	}
	if c.MaxRounds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRounds, c.MaxRounds)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, c.WindowDays)
	}

	switch c.Store {
	case StoreBadger, StoreJournal, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
