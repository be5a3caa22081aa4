// Package config loads hrplot settings.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file,
// a .env file in the working directory, then process environment variables.
// Command-line flags in cmd/ are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Sources for input records.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// Input
	Source      string `yaml:"source"`       // "csv" or "sqlite"
	InputPath   string `yaml:"input_path"`   // CSV file
	SQLitePath  string `yaml:"sqlite_path"`  // recording store
	RecordingID string `yaml:"recording_id"` // empty = latest import

	// Pipeline
	SmoothWindow   int           `yaml:"smooth_window"`
	SpikeWindow    int           `yaml:"spike_window"`
	SpikeThreshold float64       `yaml:"spike_threshold_bpm"`
	Horizon        time.Duration `yaml:"horizon"`

	// Output
	ShowDrops   bool   `yaml:"show_drops"`
	ListenAddr  string `yaml:"listen_addr"`
	OpenBrowser bool   `yaml:"open_browser"`
	Once        bool   `yaml:"once"` // exit after the chart has been served once
	PNGPath     string `yaml:"png_path"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the stock configuration: read heartrate.csv, 5-sample
// smoothing, 10-sample spike window, 5 bpm threshold, first hour only.
func Default() *Config {
	return &Config{
		Source:         SourceCSV,
		InputPath:      "heartrate.csv",
		SQLitePath:     "data/heartrate.db",
		SmoothWindow:   5,
		SpikeWindow:    10,
		SpikeThreshold: 5,
		Horizon:        time.Hour,
		ListenAddr:     "127.0.0.1:0",
		OpenBrowser:    true,
		Once:           true,
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// HRPLOT_CONFIG (if any), a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("HRPLOT_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Source = getEnv("HRPLOT_SOURCE", c.Source)
	c.InputPath = getEnv("HRPLOT_INPUT", c.InputPath)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RecordingID = getEnv("HRPLOT_RECORDING", c.RecordingID)
	c.ListenAddr = getEnv("HRPLOT_LISTEN_ADDR", c.ListenAddr)
	c.PNGPath = getEnv("HRPLOT_PNG", c.PNGPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var err error
	if c.SmoothWindow, err = getEnvInt("HRPLOT_SMOOTH_WINDOW", c.SmoothWindow); err != nil {
		return err
	}
	if c.SpikeWindow, err = getEnvInt("HRPLOT_SPIKE_WINDOW", c.SpikeWindow); err != nil {
		return err
	}
	if c.SpikeThreshold, err = getEnvFloat("HRPLOT_SPIKE_THRESHOLD", c.SpikeThreshold); err != nil {
		return err
	}
	if c.Horizon, err = getEnvDuration("HRPLOT_HORIZON", c.Horizon); err != nil {
		return err
	}
	if c.ShowDrops, err = getEnvBool("HRPLOT_SHOW_DROPS", c.ShowDrops); err != nil {
		return err
	}
	if c.OpenBrowser, err = getEnvBool("HRPLOT_OPEN_BROWSER", c.OpenBrowser); err != nil {
		return err
	}
	if c.Once, err = getEnvBool("HRPLOT_ONCE", c.Once); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source {
	case SourceCSV:
		if c.InputPath == "" {
			errs = append(errs, errors.New("input path is required for csv source"))
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite path is required for sqlite source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceCSV, SourceSQLite))
	}
	if c.SmoothWindow < 1 {
		errs = append(errs, fmt.Errorf("smooth window must be >= 1, got %d", c.SmoothWindow))
	}
	if c.SpikeWindow < 1 {
		errs = append(errs, fmt.Errorf("spike window must be >= 1, got %d", c.SpikeWindow))
	}
	if c.Horizon <= 0 {
		errs = append(errs, fmt.Errorf("horizon must be positive, got %s", c.Horizon))
	}
	return errors.Join(errs...)
}

// LogAttrs returns the settings worth logging at startup.
func (c *Config) LogAttrs() []any {
	return []any{
		slog.String("source", c.Source),
		slog.String("input", c.input()),
		slog.Int("smooth_window", c.SmoothWindow),
		slog.Int("spike_window", c.SpikeWindow),
		slog.Float64("spike_threshold", c.SpikeThreshold),
		slog.Duration("horizon", c.Horizon),
	}
}

func (c *Config) input() string {
	if c.Source == SourceSQLite {
		if c.RecordingID == "" {
			return c.SQLitePath + "#latest"
		}
		return c.SQLitePath + "#" + c.RecordingID
	}
	return c.InputPath
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("env %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", key, err)
	}
	return d, nil
}
