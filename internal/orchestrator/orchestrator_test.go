package orchestrator

import (
	"context"
	"testing"
	"time"

	"muster/internal/adapter"
	"muster/internal/backend"
	"muster/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter emits a scripted sequence of chunks, then closes.
type fakeAdapter struct {
	name   string
	chunks []adapter.Chunk
	calls  int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Execute(ctx context.Context, prompt string, files []string) <-chan adapter.Chunk {
	f.calls++
	out := make(chan adapter.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out
}

func (f *fakeAdapter) HealthCheck(ctx context.Context) bool   { return true }
func (f *fakeAdapter) ListModels(ctx context.Context) []string { return nil }

type fakeRouter struct {
	decision backend.Decision
	err      error
}

func (r *fakeRouter) Route(ctx context.Context, c backend.Classification) (backend.Decision, error) {
	return r.decision, r.err
}
func (r *fakeRouter) RouteBroadcast(ctx context.Context) (backend.Decision, error) {
	return r.decision, r.err
}

func TestExecuteTaskSuccessOnPrimary(t *testing.T) {
	primary := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Text: "hello "}, {Text: "world"}}}
	o := New(
		map[string]adapter.Adapter{"qwen": primary},
		&fakeRouter{decision: backend.Decision{Primary: "qwen", Mode: backend.ModeSingle, TimeoutSeconds: 5}},
		ExecutionConfig{TimeoutSeconds: 5, MaxRetries: 1, RetryOnFailure: false},
	)

	var texts []string
	for r := range o.ExecuteTask(context.Background(), "hi", nil) {
		require.NoError(t, r.Err)
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{"hello ", "world"}, texts)
	assert.Equal(t, 1, primary.calls)
}

func TestExecuteTaskSkipsUnavailableToFallback(t *testing.T) {
	primary := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Err: errs.NewServiceUnavailableError("qwen", "down")}}}
	fallback := &fakeAdapter{name: "ollama_local", chunks: []adapter.Chunk{{Text: "ok"}}}

	o := New(
		map[string]adapter.Adapter{"qwen": primary, "ollama_local": fallback},
		&fakeRouter{decision: backend.Decision{Primary: "qwen", Fallback: []string{"ollama_local"}, Mode: backend.ModeSingle, TimeoutSeconds: 5}},
		ExecutionConfig{TimeoutSeconds: 5, MaxRetries: 3, RetryOnFailure: true},
	)

	var texts []string
	for r := range o.ExecuteTask(context.Background(), "hi", nil) {
		require.NoError(t, r.Err)
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{"ok"}, texts)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestExecuteTaskRetriesRetryableError(t *testing.T) {
	primary := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Err: errs.NewAdapterError("qwen", "flaky: %s", "boom")}}}
	o := New(
		map[string]adapter.Adapter{"qwen": primary},
		&fakeRouter{decision: backend.Decision{Primary: "qwen", Mode: backend.ModeSingle, TimeoutSeconds: 5}},
		ExecutionConfig{TimeoutSeconds: 5, MaxRetries: 3, RetryOnFailure: true},
	)

	var lastErr error
	for r := range o.ExecuteTask(context.Background(), "hi", nil) {
		if r.Err != nil {
			lastErr = r.Err
		}
	}
	require.Error(t, lastErr)
	assert.Equal(t, 3, primary.calls)
}

func TestExecuteTaskTerminalAfterChunkYielded(t *testing.T) {
	primary := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{
		{Text: "partial"},
		{Err: errs.NewAdapterError("qwen", "mid-stream failure")},
	}}
	fallback := &fakeAdapter{name: "ollama_local", chunks: []adapter.Chunk{{Text: "should not run"}}}

	o := New(
		map[string]adapter.Adapter{"qwen": primary, "ollama_local": fallback},
		&fakeRouter{decision: backend.Decision{Primary: "qwen", Fallback: []string{"ollama_local"}, Mode: backend.ModeSingle, TimeoutSeconds: 5}},
		ExecutionConfig{TimeoutSeconds: 5, MaxRetries: 3, RetryOnFailure: true},
	)

	var texts []string
	var lastErr error
	for r := range o.ExecuteTask(context.Background(), "hi", nil) {
		if r.Err != nil {
			lastErr = r.Err
			continue
		}
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{"partial"}, texts)
	require.Error(t, lastErr)
	assert.Equal(t, 0, fallback.calls)
}

func TestExecuteTaskNoServiceAvailablePropagatesAsIs(t *testing.T) {
	o := New(
		map[string]adapter.Adapter{},
		&fakeRouter{err: &errs.NoServiceAvailableError{TaskType: "quick-query"}},
		ExecutionConfig{TimeoutSeconds: 5, MaxRetries: 1},
	)

	var lastErr error
	for r := range o.ExecuteTask(context.Background(), "hi", nil) {
		lastErr = r.Err
	}
	require.Error(t, lastErr)
	var noService *errs.NoServiceAvailableError
	assert.ErrorAs(t, lastErr, &noService)
}

func TestExecuteBroadcastFansOutToAllBackends(t *testing.T) {
	a1 := &fakeAdapter{name: "gemini", chunks: []adapter.Chunk{{Text: "g1"}}}
	a2 := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Text: "q1"}}}

	o := New(
		map[string]adapter.Adapter{"gemini": a1, "qwen": a2},
		&fakeRouter{decision: backend.Decision{Primary: "gemini", Fallback: []string{"qwen"}, Mode: backend.ModeBroadcast}},
		ExecutionConfig{TimeoutSeconds: 5},
	)

	seen := map[string]string{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for r := range o.ExecuteBroadcast(ctx, "hi", nil) {
		require.NoError(t, r.Err)
		seen[r.Backend] += r.Text
	}
	assert.Equal(t, "g1", seen["gemini"])
	assert.Equal(t, "q1", seen["qwen"])
}
