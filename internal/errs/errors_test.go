package errs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NewAdapterError("qwen", "boom")))
	assert.False(t, Retryable(NewSemanticAdapterError("qwen", "auth failed")))
	assert.False(t, Retryable(NewServiceUnavailableError("qwen", "down")))
	assert.False(t, Retryable(NewTimeoutError("qwen", 5)))
	assert.False(t, Retryable(nil))
}

func TestSkipsToNextCandidate(t *testing.T) {
	assert.True(t, SkipsToNextCandidate(NewServiceUnavailableError("qwen", "down")))
	assert.True(t, SkipsToNextCandidate(NewTimeoutError("qwen", 5)))
	assert.True(t, SkipsToNextCandidate(NewSemanticAdapterError("qwen", "401")))
	assert.False(t, SkipsToNextCandidate(NewAdapterError("qwen", "generic")))
}

func TestNewExecutionErrorWrapsMessageNotType(t *testing.T) {
	inner := NewServiceUnavailableError("qwen", "connection refused")
	wrapped := NewExecutionError(inner)
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "connection refused")

	// The wrapped error is an *ExecutionError, not the original concrete type.
	_, isUnavailable := error(wrapped).(*ServiceUnavailableError)
	assert.False(t, isUnavailable)
}

func TestNewExecutionErrorNilLast(t *testing.T) {
	err := NewExecutionError(nil)
	assert.Equal(t, "execution failed with no further detail", err.Error())
}
