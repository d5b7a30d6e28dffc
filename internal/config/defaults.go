package config

import "muster/internal/router"

// DefaultConfig returns the configuration applied when no config.yaml is
// present, or to fill in fields a present file leaves zero.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Execution: ExecutionConfig{
			TimeoutSeconds: router.DefaultTimeoutSeconds,
			MaxRetries:     1,
			RetryOnFailure: false,
		},
		Backends: map[string]BackendConfig{},
		Rules:    map[string]RuleConfig{},
	}
}

const (
	defaultBackendMaxRetries     = 2
	defaultBackendRetryDelaySecs = 2
)

func boolPtr(b bool) *bool { return &b }
