package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"muster/internal/backend"
	"muster/internal/errs"
	"muster/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir   = ".config/oxide"
	projectConfigDir = ".oxide"
	configFileName  = "config.yaml"
	backendsFile    = "backends.yaml"
	rulesFile       = "routing_rules.yaml"
)

// GetUserConfigDir returns ~/.config/oxide.
func GetUserConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(home, userConfigDir), nil
}

// LoadConfig loads configuration using the layered convention: defaults,
// then the user directory (~/.config/oxide), then the project directory
// (./.oxide) overriding anything the user layer set. Each layer is
// optional; a missing file is logged at info level and skipped.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	userDir, err := GetUserConfigDir()
	if err == nil {
		if err := mergeLayer(&cfg, userDir, "user"); err != nil {
			return Config{}, err
		}
	}

	if err := mergeLayer(&cfg, projectConfigDir, "project"); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFromPath loads configuration from a single directory only,
// bypassing the layered user/project convention — the `--config-path`
// override.
func LoadConfigFromPath(configPath string) (Config, error) {
	cfg := DefaultConfig()
	if err := mergeLayer(&cfg, configPath, "override"); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeLayer(cfg *Config, dir, source string) error {
	if err := mergeConfigFile(cfg, filepath.Join(dir, configFileName), source); err != nil {
		return err
	}
	if err := mergeBackendsFile(cfg, filepath.Join(dir, backendsFile), source); err != nil {
		return err
	}
	return mergeRulesFile(cfg, filepath.Join(dir, rulesFile), source)
}

func mergeConfigFile(cfg *Config, path, source string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "no %s config.yaml at %s, keeping previous layer", source, path)
			return nil
		}
		return errs.NewConfigError("reading %s: %v", path, err)
	}
	var layer struct {
		Logging   LoggingConfig   `yaml:"logging"`
		Execution ExecutionConfig `yaml:"execution"`
	}
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return errs.NewConfigError("parsing %s: %v", path, err)
	}
	if layer.Logging.Level != "" {
		cfg.Logging.Level = layer.Logging.Level
	}
	if layer.Execution.TimeoutSeconds != 0 {
		cfg.Execution.TimeoutSeconds = layer.Execution.TimeoutSeconds
	}
	if layer.Execution.MaxRetries != 0 {
		cfg.Execution.MaxRetries = layer.Execution.MaxRetries
	}
	cfg.Execution.RetryOnFailure = layer.Execution.RetryOnFailure || cfg.Execution.RetryOnFailure
	logging.Info("ConfigLoader", "loaded %s configuration from %s", source, path)
	return nil
}

func mergeBackendsFile(cfg *Config, path, source string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "no %s %s at %s, keeping previous layer", source, backendsFile, path)
			return nil
		}
		return errs.NewConfigError("reading %s: %v", path, err)
	}
	var layer map[string]BackendConfig
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return errs.NewConfigError("parsing %s: %v", path, err)
	}
	if cfg.Backends == nil {
		cfg.Backends = map[string]BackendConfig{}
	}
	for name, b := range layer {
		cfg.Backends[name] = b
	}
	logging.Info("ConfigLoader", "loaded %d backend descriptor(s) from %s", len(layer), path)
	return nil
}

func mergeRulesFile(cfg *Config, path, source string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "no %s %s at %s, keeping previous layer", source, rulesFile, path)
			return nil
		}
		return errs.NewConfigError("reading %s: %v", path, err)
	}
	var layer map[string]RuleConfig
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return errs.NewConfigError("parsing %s: %v", path, err)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
	for taskType, r := range layer {
		cfg.Rules[taskType] = r
	}
	logging.Info("ConfigLoader", "loaded %d routing rule(s) from %s", len(layer), path)
	return nil
}

// BuildBackendTable converts the loaded backend descriptor map into an
// immutable backend.Table, applying the documented defaults for absent
// HTTP-only fields.
func BuildBackendTable(cfg Config) (*backend.Table, error) {
	descriptors := make([]backend.Descriptor, 0, len(cfg.Backends))
	for name, b := range cfg.Backends {
		d := backend.Descriptor{
			Name:            name,
			Enabled:         b.Enabled,
			Executable:      b.Executable,
			BaseURL:         b.BaseURL,
			DefaultModel:    b.DefaultModel,
			PreferredModels: b.PreferredModels,
			MaxRetries:      b.MaxRetries,
			RetryDelaySecs:  b.RetryDelaySecs,
		}
		switch b.Type {
		case "cli":
			d.Kind = backend.KindCLI
		case "http":
			d.Kind = backend.KindHTTP
		default:
			return nil, errs.NewConfigError("backend %q: unknown type %q (must be cli or http)", name, b.Type)
		}
		switch b.APIType {
		case "", "ndjson":
			d.Dialect = backend.DialectNDJSON
		case "sse":
			d.Dialect = backend.DialectSSE
		default:
			return nil, errs.NewConfigError("backend %q: unknown api_type %q (must be ndjson or sse)", name, b.APIType)
		}
		d.AutoStart = b.AutoStart == nil || *b.AutoStart
		d.AutoDetectModel = b.AutoDetectModel == nil || *b.AutoDetectModel
		if d.MaxRetries == 0 {
			d.MaxRetries = defaultBackendMaxRetries
		}
		if d.RetryDelaySecs == 0 {
			d.RetryDelaySecs = defaultBackendRetryDelaySecs
		}
		descriptors = append(descriptors, d)
	}

	tbl, err := backend.NewTable(descriptors)
	if err != nil {
		return nil, errs.NewConfigError("%v", err)
	}
	return tbl, nil
}

// BuildRules converts the loaded rule map into the router's keyed rule
// table.
func BuildRules(cfg Config) map[backend.TaskType]backend.Rule {
	rules := make(map[backend.TaskType]backend.Rule, len(cfg.Rules))
	for taskType, r := range cfg.Rules {
		rules[backend.TaskType(taskType)] = backend.Rule{
			TaskType:          backend.TaskType(taskType),
			Primary:           r.Primary,
			Fallback:          r.Fallback,
			TimeoutSeconds:    r.TimeoutSeconds,
			ParallelThreshold: r.ParallelThreshold,
		}
	}
	return rules
}
