// Package config loads kmetija's settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
}

// DatabaseConfig selects and locates the store.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres" (default: sqlite)
	Driver string `env:"KMETIJA_DB_DRIVER" default:"sqlite"`

	// Path is the SQLite database file (default: kmetija.sqlite3)
	Path string `env:"KMETIJA_DB_PATH" default:"kmetija.sqlite3"`

	// URL is the PostgreSQL connection string, required for the postgres driver
	URL string `env:"KMETIJA_DATABASE_URL" envAlt:"DATABASE_URL"`
}

// Source returns what the driver opens: a file path or a connection URL.
func (c *DatabaseConfig) Source() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"KMETIJA_LOG_LEVEL" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"KMETIJA_LOG_FORMAT" default:"text"`

	// File additionally receives every log line when set
	File string `env:"KMETIJA_LOG_FILE"`
}

// Validate checks that the configuration is usable.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("KMETIJA_DB_PATH must not be empty for the sqlite driver"))
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("KMETIJA_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("KMETIJA_DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("KMETIJA_LOG_LEVEL must be debug, info, warn or error, got %q", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("KMETIJA_LOG_FORMAT must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
