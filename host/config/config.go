// Package config loads host tool settings. Precedence, highest first:
// command line flags, UNILED_* environment variables, the config file,
// built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"uniled/boards"
	"uniled/host/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "UNILED_"

// Config holds every host setting
type Config struct {
	Device    string         `toml:"device" yaml:"device"`
	Baud      int            `toml:"baud" yaml:"baud"`
	TimeoutMs int            `toml:"timeout_ms" yaml:"timeout_ms"`
	Logging   logging.Config `toml:"logging" yaml:"logging"`
	Sim       SimConfig      `toml:"sim" yaml:"sim"`
}

// SimConfig configures the simulator
type SimConfig struct {
	Board      string `toml:"board" yaml:"board"`
	BoardsFile string `toml:"boards_file" yaml:"boards_file"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Device:    "/dev/ttyACM0",
		Baud:      boards.DefaultBaud,
		TimeoutMs: 2000,
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
		},
		Sim: SimConfig{
			Board: "xiao-rp2040",
		},
	}
}

// Timeout returns the response timeout
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Validate checks the merged configuration
func (c Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeout must be positive, got %dms", c.TimeoutMs)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		return fmt.Errorf("unknown log format %q", f)
	}
	return nil
}

// Load reads path over the defaults. The format follows the extension:
// .toml, or .yaml/.yml. Unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from UNILED_* variables found by lookup
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		*dst = n
	}

	str("DEVICE", &cfg.Device)
	num("BAUD", &cfg.Baud)
	num("TIMEOUT_MS", &cfg.TimeoutMs)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	str("BOARD", &cfg.Sim.Board)

	return errors.Join(errs...)
}

// Flag names understood by ApplyFlags
const (
	FlagDevice     = "device"
	FlagBaud       = "baud"
	FlagTimeout    = "timeout"
	FlagLogLevel   = "log-level"
	FlagLogFormat  = "log-format"
	FlagBoard      = "board"
	FlagBoardsFile = "boards-file"
)

// ApplyFlags copies every flag the user actually set into cfg. Flags that
// were left at their defaults do not override the file or environment.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagDevice:
			cfg.Device, err = fs.GetString(f.Name)
		case FlagBaud:
			cfg.Baud, err = fs.GetInt(f.Name)
		case FlagTimeout:
			var d time.Duration
			d, err = fs.GetDuration(f.Name)
			cfg.TimeoutMs = int(d / time.Millisecond)
		case FlagLogLevel:
			cfg.Logging.Level, err = fs.GetString(f.Name)
		case FlagLogFormat:
			cfg.Logging.Format, err = fs.GetString(f.Name)
		case FlagBoard:
			cfg.Sim.Board, err = fs.GetString(f.Name)
		case FlagBoardsFile:
			cfg.Sim.BoardsFile, err = fs.GetString(f.Name)
		}
	})
	return err
}

// Resolve builds the effective configuration: defaults, then the file at
// path (skipped when empty), then the environment, then changed flags.
func Resolve(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if fs != nil {
		if err := ApplyFlags(&cfg, fs); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}
