// Package config loads the nodefs tool configuration from layered JSONC
// files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/nodefs/pkg/fs"
	"github.com/calvinalkan/nodefs/pkg/nodefs"
)

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config")
)

// FileName is the project config file name.
const FileName = ".nodefs.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	PollIntervalMs int          `json:"poll_interval_ms"`
	HighWaterMark  int          `json:"high_water_mark"`
	Encoding       string       `json:"encoding,omitempty"`
	LogLevel       string       `json:"log_level"`
	AtomicWrites   bool         `json:"atomic_writes"`
	Chaos          *ChaosConfig `json:"chaos,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string  `json:"-"`
	Sources      Sources `json:"-"`
}

// ChaosConfig enables fault injection. The rates mirror [fs.ChaosConfig].
type ChaosConfig struct {
	Seed             int64   `json:"seed"`
	OpenFailRate     float64 `json:"open_fail_rate,omitempty"`
	ReadFailRate     float64 `json:"read_fail_rate,omitempty"`
	PartialReadRate  float64 `json:"partial_read_rate,omitempty"`
	WriteFailRate    float64 `json:"write_fail_rate,omitempty"`
	PartialWriteRate float64 `json:"partial_write_rate,omitempty"`
	StatFailRate     float64 `json:"stat_fail_rate,omitempty"`
	ReadDirFailRate  float64 `json:"readdir_fail_rate,omitempty"`
	SyncFailRate     float64 `json:"sync_fail_rate,omitempty"`
	CloseFailRate    float64 `json:"close_fail_rate,omitempty"`
	MutateFailRate   float64 `json:"mutate_fail_rate,omitempty"`

	// TraceCapacity keeps the last n provider calls for --verbose output.
	TraceCapacity int `json:"trace_capacity,omitempty"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		PollIntervalMs: int(nodefs.DefaultPollInterval / time.Millisecond),
		HighWaterMark:  nodefs.DefaultHighWaterMark,
		LogLevel:       "warning",
	}
}

// PollInterval returns the default watchFile interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Level returns the parsed log level. Load already validated it.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}

	return lvl
}

// FSChaos converts the chaos section for [fs.NewChaos].
func (c ChaosConfig) FSChaos() fs.ChaosConfig {
	return fs.ChaosConfig{
		OpenFailRate:     c.OpenFailRate,
		ReadFailRate:     c.ReadFailRate,
		PartialReadRate:  c.PartialReadRate,
		WriteFailRate:    c.WriteFailRate,
		PartialWriteRate: c.PartialWriteRate,
		StatFailRate:     c.StatFailRate,
		ReadDirFailRate:  c.ReadDirFailRate,
		SyncFailRate:     c.SyncFailRate,
		CloseFailRate:    c.CloseFailRate,
		MutateFailRate:   c.MutateFailRate,
		TraceCapacity:    c.TraceCapacity,
	}
}

// Overrides are CLI flag values applied after all files. Empty fields do
// not override.
type Overrides struct {
	LogLevel string
	Encoding string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Overrides         // flag overrides
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/nodefs/config.json or $XDG_CONFIG_HOME/nodefs/config.json)
// 3. Project config file (.nodefs.json in the working directory, if it exists)
// 4. Explicit config file via ConfigPath (replaces the project file)
// 5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	if path := globalPath(input.Env); path != "" {
		overlay, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = overlay.merge(cfg)
			cfg.Sources.Global = path
		}
	}

	projectFile, mustExist := filepath.Join(workDir, FileName), false

	if input.ConfigPath != "" {
		projectFile, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectFile) {
			projectFile = filepath.Join(workDir, projectFile)
		}

		if _, err := os.Stat(projectFile); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}
	}

	overlay, loaded, err := loadFile(projectFile, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = overlay.merge(cfg)
		cfg.Sources.Project = projectFile
	}

	if input.Overrides.LogLevel != "" {
		cfg.LogLevel = input.Overrides.LogLevel
	}

	if input.Overrides.Encoding != "" {
		cfg.Encoding = input.Overrides.Encoding
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	cfg.EffectiveCwd = workDir

	return cfg, nil
}

// globalPath returns the global config file path, or "" when neither
// XDG_CONFIG_HOME nor HOME is set.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "nodefs", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "nodefs", "config.json")
	}

	return ""
}

// fileConfig is one config file. Pointer fields distinguish an explicit
// zero from an absent key.
type fileConfig struct {
	PollIntervalMs *int         `json:"poll_interval_ms"`
	HighWaterMark  *int         `json:"high_water_mark"`
	Encoding       *string      `json:"encoding"`
	LogLevel       *string      `json:"log_level"`
	AtomicWrites   *bool        `json:"atomic_writes"`
	Chaos          *ChaosConfig `json:"chaos"`
}

func (f fileConfig) merge(base Config) Config {
	if f.PollIntervalMs != nil {
		base.PollIntervalMs = *f.PollIntervalMs
	}

	if f.HighWaterMark != nil {
		base.HighWaterMark = *f.HighWaterMark
	}

	if f.Encoding != nil {
		base.Encoding = *f.Encoding
	}

	if f.LogLevel != nil {
		base.LogLevel = *f.LogLevel
	}

	if f.AtomicWrites != nil {
		base.AtomicWrites = *f.AtomicWrites
	}

	if f.Chaos != nil {
		base.Chaos = f.Chaos
	}

	return base
}

// loadFile reads one config file. A missing file is not an error unless
// mustExist is set.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var cfg fileConfig
	if err := dec.Decode(&cfg); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func validate(cfg Config) error {
	var errs []error

	if cfg.PollIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval_ms must be > 0, got %d", cfg.PollIntervalMs))
	}

	if cfg.HighWaterMark <= 0 {
		errs = append(errs, fmt.Errorf("high_water_mark must be > 0, got %d", cfg.HighWaterMark))
	}

	if cfg.Encoding != "" && cfg.Encoding != "buffer" && !nodefs.IsEncoding(cfg.Encoding) {
		errs = append(errs, fmt.Errorf("unknown encoding %q", cfg.Encoding))
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if c := cfg.Chaos; c != nil {
		for name, rate := range map[string]float64{
			"open_fail_rate":     c.OpenFailRate,
			"read_fail_rate":     c.ReadFailRate,
			"partial_read_rate":  c.PartialReadRate,
			"write_fail_rate":    c.WriteFailRate,
			"partial_write_rate": c.PartialWriteRate,
			"stat_fail_rate":     c.StatFailRate,
			"readdir_fail_rate":  c.ReadDirFailRate,
			"sync_fail_rate":     c.SyncFailRate,
			"close_fail_rate":    c.CloseFailRate,
			"mutate_fail_rate":   c.MutateFailRate,
		} {
			if rate < 0 || rate > 1 {
				errs = append(errs, fmt.Errorf("chaos.%s must be within [0, 1], got %v", name, rate))
			}
		}

		if c.TraceCapacity < 0 {
			errs = append(errs, fmt.Errorf("chaos.trace_capacity must be >= 0, got %d", c.TraceCapacity))
		}
	}

	return errors.Join(errs...)
}

// Format returns the config as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
