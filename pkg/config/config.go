// Package config loads run configuration: environment defaults plus
// the optional YAML policy file, schema-validated before use.
package config

import (
	"os"
	"strconv"
)

// Config holds the environment-derived defaults for a run. CLI flags
// override every field.
type Config struct {
	LogLevel   string
	Format     string
	SnapshotDB string
	Workers    int
}

// Load reads configuration from environment variables, applying
// defaults for anything unset.
func Load() *Config {
	logLevel := os.Getenv("LICENSEGATE_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	format := os.Getenv("LICENSEGATE_FORMAT")
	if format == "" {
		format = "plain"
	}

	workers := 0
	if raw := os.Getenv("LICENSEGATE_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			workers = n
		}
	}

	return &Config{
		LogLevel:   logLevel,
		Format:     format,
		SnapshotDB: os.Getenv("LICENSEGATE_SNAPSHOT_DB"),
		Workers:    workers,
	}
}
