// Package errs defines the closed error taxonomy shared by every component
// in the request-routing pipeline: adapters raise specific kinds, and the
// orchestrator is the only place that collapses them into execution-error.
package errs

import (
	"errors"
	"fmt"
)

// ConfigError indicates a descriptor or routing-rule load fault. Never
// retryable; always a startup failure.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// AdapterError is a backend-side failure not otherwise classified. Generic
// adapter errors are retryable once; semantic ones (authentication, payment,
// model-not-found) are not — callers distinguish via Semantic.
type AdapterError struct {
	Backend string
	Message string
	// Semantic marks authentication/payment/model-not-found failures that
	// must never be retried, even once.
	Semantic bool
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter %q: %s", e.Backend, e.Message)
}

// NewAdapterError builds a generic, retryable-once AdapterError.
func NewAdapterError(backend, format string, args ...interface{}) *AdapterError {
	return &AdapterError{Backend: backend, Message: fmt.Sprintf(format, args...)}
}

// NewSemanticAdapterError builds a non-retryable AdapterError for
// authentication, payment, or model-not-found failures.
func NewSemanticAdapterError(backend, format string, args ...interface{}) *AdapterError {
	return &AdapterError{Backend: backend, Message: fmt.Sprintf(format, args...), Semantic: true}
}

// ServiceUnavailableError means the backend is unreachable, disabled, or
// failed its health check. Retryable against the next candidate, never the
// same one.
type ServiceUnavailableError struct {
	Backend string
	Reason  string
}

func (e *ServiceUnavailableError) Error() string {
	msg := fmt.Sprintf("backend %q unavailable", e.Backend)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// NewServiceUnavailableError builds a ServiceUnavailableError.
func NewServiceUnavailableError(backend, reason string) *ServiceUnavailableError {
	return &ServiceUnavailableError{Backend: backend, Reason: reason}
}

// TimeoutError means a read or total deadline was exceeded. Not retryable on
// the same candidate; the orchestrator moves to the next one.
type TimeoutError struct {
	Backend string
	Seconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend %q timed out after %ds", e.Backend, e.Seconds)
}

// NewTimeoutError builds a TimeoutError.
func NewTimeoutError(backend string, seconds int) *TimeoutError {
	return &TimeoutError{Backend: backend, Seconds: seconds}
}

// RoutingError is the base for routing-layer faults.
type RoutingError struct {
	Message string
}

func (e *RoutingError) Error() string { return e.Message }

// NoServiceAvailableError means every candidate for a task type reported
// unhealthy or none exist. Surfaced to the caller as-is, never wrapped.
type NoServiceAvailableError struct {
	TaskType string
}

func (e *NoServiceAvailableError) Error() string {
	return fmt.Sprintf("no backend available for task type %q", e.TaskType)
}

// ExecutionError is the catch-all after the candidate list is exhausted, or
// after an unexpected panic is recovered at the orchestrator boundary. It
// carries the last error's message for diagnostics but never its type.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string { return e.Message }

// NewExecutionError wraps the last observed error into an ExecutionError,
// preserving its message but not its concrete type, per the propagation
// policy in the error handling design.
func NewExecutionError(last error) *ExecutionError {
	if last == nil {
		return &ExecutionError{Message: "execution failed with no further detail"}
	}
	return &ExecutionError{Message: fmt.Sprintf("all candidates failed: %s", last.Error())}
}

// Retryable reports whether err should be retried against the same
// candidate (within attempt budget) per the taxonomy in the error handling
// design. ServiceUnavailableError and semantic AdapterErrors are never
// retried on the same candidate; generic AdapterErrors are retryable once;
// TimeoutError and every other kind are not retried on the same candidate.
func Retryable(err error) bool {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return !adapterErr.Semantic
	}
	return false
}

// SkipsToNextCandidate reports whether err should abandon the current
// candidate immediately (no further attempts) and move to the next one,
// as opposed to being a terminal failure for the whole request.
func SkipsToNextCandidate(err error) bool {
	var unavailable *ServiceUnavailableError
	if errors.As(err, &unavailable) {
		return true
	}
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return true
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) && adapterErr.Semantic {
		return true
	}
	return false
}

// IsConfigError reports whether err (or anything it wraps) is a
// ConfigError, signaling the orchestrator binary's "configuration invalid"
// exit code.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
