// Package config loads the audit settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "AUDIT"

// Config represents the complete application configuration
type Config struct {
	Input   InputConfig   `envconfig:"INPUT"`
	Report  ReportConfig  `envconfig:"REPORT"`
	Logging LoggingConfig `envconfig:"LOG"`
	Metrics MetricsConfig `envconfig:"METRICS"`
	Tracing TracingConfig `envconfig:"TRACE"`
}

// InputConfig selects the spreadsheet and the column under audit
type InputConfig struct {
	File         string `envconfig:"FILE" default:"amostra_dados.xlsx" validate:"required"`
	Column       string `envconfig:"COLUMN" default:"Diferença" validate:"required"`
	Sheet        string `envconfig:"SHEET"`
	CSVDelimiter string `envconfig:"CSV_DELIMITER" validate:"omitempty,max=1"`
}

// ReportConfig contains report rendering configuration
type ReportConfig struct {
	Locale string `envconfig:"LOCALE" default:"pt-BR"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"warn" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	TextfilePath string `envconfig:"TEXTFILE"`
}

// TracingConfig controls span export
type TracingConfig struct {
	Stdout bool `envconfig:"STDOUT" default:"false"`
}

// Load reads an optional .env file, then the AUDIT_* environment variables.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// Delimiter returns the forced CSV delimiter, or zero to detect it.
func (c InputConfig) Delimiter() rune {
	if c.CSVDelimiter == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// SlogLevel maps the configured level name to a slog level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
