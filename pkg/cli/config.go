package cli

import (
	"github.com/baldr/baldr/internal/engine"
)

// Config holds all CLI flag values.
type Config struct {
	ConfigFile string
	Verbosity  string
	LogFile    string
	Version    string

	Build engine.Options
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig(version string) *Config {
	return &Config{
		Verbosity: "info",
		Version:   version,
		Build:     engine.DefaultOptions(),
	}
}
