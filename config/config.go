// Package config loads the segparse configuration from a YAML file with
// SEGPARSE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EngineRule    = "rule"
	EngineProcess = "process"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the top-level configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Render  RenderConfig  `yaml:"render"`

	// Workers is the number of docs parsed in parallel.
	Workers int `yaml:"workers"`
}

type EngineConfig struct {
	// Kind is "rule" for the built-in engine or "process" for an external
	// command.
	Kind string `yaml:"kind"`

	// Command is the external engine command line, program first.
	Command []string `yaml:"command"`

	// RuneOffsets is set when the external engine counts offsets in code
	// points instead of bytes.
	RuneOffsets bool `yaml:"runeOffsets"`
}

// StorageConfig.Path ending in ".db" is a SQLite file; any other path is a
// directory of JSON docs.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// IsSQLite reports whether the storage path names a SQLite database.
func (s StorageConfig) IsSQLite() bool {
	return strings.HasSuffix(s.Path, ".db")
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RenderConfig struct {
	Color bool `yaml:"color"`
}

// Load reads a YAML config file (if path is not empty) over the defaults and
// applies the environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment value
// is given.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Kind: EngineRule,
		},
		Storage: StorageConfig{
			Path: "segparse.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: FormatConsole,
		},
		Render: RenderConfig{
			Color: true,
		},
		Workers: runtime.NumCPU(),
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Engine.Kind {
	case EngineRule:
	case EngineProcess:
		if len(c.Engine.Command) == 0 {
			errs = append(errs, errors.New("engine.command is required for the process engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown engine.kind %q", c.Engine.Kind))
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if c.Log.Format != FormatJSON && c.Log.Format != FormatConsole {
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides reads SEGPARSE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEGPARSE_ENGINE_KIND"); v != "" {
		cfg.Engine.Kind = v
	}
	if v := os.Getenv("SEGPARSE_ENGINE_COMMAND"); v != "" {
		cfg.Engine.Command = strings.Fields(v)
	}
	if v := os.Getenv("SEGPARSE_ENGINE_RUNE_OFFSETS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.RuneOffsets = b
		}
	}
	if v := os.Getenv("SEGPARSE_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("SEGPARSE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SEGPARSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SEGPARSE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SEGPARSE_RENDER_COLOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Render.Color = b
		}
	}
}

// NewLogger builds the zap logger for the log config: JSON lines in the
// production encoding or the development console encoding, on stderr.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.Format == FormatJSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
