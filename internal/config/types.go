package config

// Config is the top-level configuration structure for the orchestrator:
// logging and execution defaults from config.yaml, the backend descriptor
// table from backends.yaml, and the routing rule table from
// routing_rules.yaml.
type Config struct {
	Logging   LoggingConfig            `yaml:"logging"`
	Execution ExecutionConfig          `yaml:"execution"`
	Backends  map[string]BackendConfig `yaml:"backends"`
	Rules     map[string]RuleConfig    `yaml:"routing_rules"`
}

// LoggingConfig controls the leveled logger's verbosity.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warning, error
}

// ExecutionConfig carries the ambient execution{} settings: the global
// timeout default and the outer candidate-retry budget.
type ExecutionConfig struct {
	TimeoutSeconds int  `yaml:"timeout_seconds,omitempty"`
	MaxRetries     int  `yaml:"max_retries,omitempty"`
	RetryOnFailure bool `yaml:"retry_on_failure,omitempty"`
}

// BackendConfig is the YAML shape of one backend descriptor entry.
type BackendConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Type            string   `yaml:"type"` // cli, http
	Executable      string   `yaml:"executable,omitempty"`
	BaseURL         string   `yaml:"base_url,omitempty"`
	APIType         string   `yaml:"api_type,omitempty"` // ndjson, sse
	DefaultModel    string   `yaml:"default_model,omitempty"`
	PreferredModels []string `yaml:"preferred_models,omitempty"`
	AutoStart       *bool    `yaml:"auto_start,omitempty"`
	AutoDetectModel *bool    `yaml:"auto_detect_model,omitempty"`
	MaxRetries      int      `yaml:"max_retries,omitempty"`
	RetryDelaySecs  int      `yaml:"retry_delay,omitempty"`
}

// RuleConfig is the YAML shape of one routing rule entry, keyed by task
// type tag in the surrounding map.
type RuleConfig struct {
	Primary           string   `yaml:"primary"`
	Fallback          []string `yaml:"fallback,omitempty"`
	TimeoutSeconds    int      `yaml:"timeout_seconds,omitempty"`
	ParallelThreshold int      `yaml:"parallel_threshold,omitempty"`
}
