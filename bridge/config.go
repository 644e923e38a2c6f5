package bridge

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// LibraryEnv names the environment variable consulted for the library path.
const LibraryEnv = "POLARS_BRIDGE_LIB"

// Config is the on-disk bridge configuration.
type Config struct {
	// Library is the path of the native binding. Empty means POLARS_BRIDGE_LIB,
	// then the executable directory.
	Library string `yaml:"library"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// StrictFingerprint rejects libraries that do not report a codec fingerprint.
	StrictFingerprint bool `yaml:"strict_fingerprint"`
}

// LoadConfig reads a YAML config file. A missing library falls back to the
// environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Library == "" {
		cfg.Library = os.Getenv(LibraryEnv)
	}
	return cfg, nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Options builds the load options the config implies.
func (c Config) Options() []Option {
	var opts []Option
	if c.StrictFingerprint {
		opts = append(opts, WithStrictFingerprint())
	}
	return opts
}

// Option configures a Bridge.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	fingerprint uint64
	strict      bool
}

// WithLogger sets the logger used for load and call records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFingerprint makes LoadBridge verify the native codec fingerprint.
func WithFingerprint(fp uint64) Option {
	return func(o *options) { o.fingerprint = fp }
}

// WithStrictFingerprint fails the load when the library reports no fingerprint.
func WithStrictFingerprint() Option {
	return func(o *options) { o.strict = true }
}
