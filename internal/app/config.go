package app

import (
	"muster/internal/config"
)

// Config holds the bootstrap-time application configuration: the flags the
// CLI parses before any routing config is loaded.
type Config struct {
	// Debug raises the log level to debug.
	Debug bool

	// Silent discards all log output (used by the MCP front-end, which
	// must keep stdout clean for the protocol).
	Silent bool

	// ConfigPath, when set, disables layered user/project configuration
	// loading and reads a single directory instead (--config-path).
	ConfigPath string

	// Loaded holds the routing configuration once NewApplication has run.
	Loaded *config.Config
}

// NewConfig constructs a bootstrap Config.
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
