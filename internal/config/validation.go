package config

import (
	"fmt"
	"strings"

	"muster/internal/errs"
)

// ValidationError represents a single configuration violation.
type ValidationError struct {
	Field   string
	Message string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationErrors collects every violation found in one validation pass,
// rather than stopping at the first.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	var messages []string
	for _, e := range ve {
		messages = append(messages, e.Error())
	}
	return strings.Join(messages, "; ")
}

func (ve ValidationErrors) HasErrors() bool { return len(ve) > 0 }

// validate checks every routing rule's primary and fallback names against
// the loaded backend descriptor map, and returns a single *errs.ConfigError
// listing every violation found. Duplicate backend names are rejected by
// backend.NewTable itself, downstream of this pass.
func validate(cfg Config) error {
	var errsFound ValidationErrors

	for taskType, rule := range cfg.Rules {
		if rule.Primary == "" {
			errsFound = append(errsFound, ValidationError{
				Field:   fmt.Sprintf("routing_rules.%s.primary", taskType),
				Message: "must be set",
			})
			continue
		}
		checkBackendRef(&errsFound, cfg, taskType, "primary", rule.Primary)
		for _, fb := range rule.Fallback {
			checkBackendRef(&errsFound, cfg, taskType, "fallback", fb)
		}
	}

	if errsFound.HasErrors() {
		return errs.NewConfigError("invalid configuration: %s", errsFound.Error())
	}
	return nil
}

func checkBackendRef(errsFound *ValidationErrors, cfg Config, taskType, field, name string) {
	if _, ok := cfg.Backends[name]; !ok {
		*errsFound = append(*errsFound, ValidationError{
			Field:   fmt.Sprintf("routing_rules.%s.%s", taskType, field),
			Message: fmt.Sprintf("references unknown backend %q", name),
		})
	}
}
