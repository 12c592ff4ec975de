package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // timezone names resolve without a system database

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/holdings/internal/importer"
	"github.com/cleared-dev/holdings/internal/logger"
)

// FileName is the default config file name.
const FileName = "holdings.yaml"

// Environment variables that override the file.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvLogLevel    = "HOLDINGS_LOG_LEVEL"
)

// Config represents the top-level holdings.yaml configuration.
type Config struct {
	ImportsDir  string       `yaml:"imports_dir"`
	DatabaseURL string       `yaml:"database_url,omitempty"`
	Log         LogConfig    `yaml:"log"`
	Import      ImportConfig `yaml:"import"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ImportConfig controls engine policies.
type ImportConfig struct {
	RowErrors         string `yaml:"row_errors"`         // "abort" or "skip"
	DuplicateAccounts string `yaml:"duplicate_accounts"` // "error", "first" or "last"
	Timezone          string `yaml:"timezone"`           // IANA name; workbook wall clocks are read in it
	ArchiveProcessed  bool   `yaml:"archive_processed"`
	HistoryFile       string `yaml:"history_file"`
}

// Load reads a holdings.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		ImportsDir: "imports",
		Log: LogConfig{
			Level:  "info",
			Format: logger.FormatConsole,
		},
		Import: ImportConfig{
			RowErrors:         string(importer.RowErrorsAbort),
			DuplicateAccounts: string(importer.DuplicatesError),
			Timezone:          "UTC",
			HistoryFile:       "imports/history.csv",
		},
	}
}

// ApplyEnv overrides settings from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks policy names and the timezone.
func (c *Config) Validate() error {
	_, err := c.EngineOptions()
	return err
}

// EngineOptions converts the import settings into engine options.
func (c *Config) EngineOptions() (importer.Options, error) {
	rowErrors, err := importer.ParseRowErrorPolicy(c.Import.RowErrors)
	if err != nil {
		return importer.Options{}, fmt.Errorf("import.row_errors: %w", err)
	}
	duplicates, err := importer.ParseDuplicatePolicy(c.Import.DuplicateAccounts)
	if err != nil {
		return importer.Options{}, fmt.Errorf("import.duplicate_accounts: %w", err)
	}
	tz := c.Import.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return importer.Options{}, fmt.Errorf("import.timezone: %w", err)
	}
	return importer.Options{
		RowErrors:  rowErrors,
		Duplicates: duplicates,
		Location:   loc,
	}, nil
}
