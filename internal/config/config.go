// Package config holds the settings shared by every minirdb command.
package config

import (
	"fmt"

	"minirdb/internal/logging"
)

// DefaultDataDir is used when neither a flag nor MINIRDB_DATA_DIR is set.
const DefaultDataDir = "data"

// Config is embedded into the CLI root; the tags are read by kong.
type Config struct {
	DataDir   string `name:"data-dir" short:"d" help:"Directory holding table files." default:"data" env:"MINIRDB_DATA_DIR" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)." default:"warn" env:"MINIRDB_LOG_LEVEL" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (text, json)." default:"text" env:"MINIRDB_LOG_FORMAT" enum:"text,json"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		DataDir:   DefaultDataDir,
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Validate checks the configuration and returns the parsed log settings.
func (c Config) Validate() (logging.Level, logging.Format, error) {
	if c.DataDir == "" {
		return 0, 0, fmt.Errorf("config: data directory must not be empty")
	}
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, 0, fmt.Errorf("config: %w", err)
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return 0, 0, fmt.Errorf("config: %w", err)
	}
	return level, format, nil
}
