package orchestrator

import (
	"context"
	"errors"
	"testing"

	"muster/internal/adapter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFilesDistributesRemainderToFirstChunks(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e", "f", "g"}
	chunks := splitFiles(files, 3)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b", "c"}, chunks[0])
	assert.Equal(t, []string{"d", "e"}, chunks[1])
	assert.Equal(t, []string{"f", "g"}, chunks[2])
}

func TestSplitFilesSingleChunkReturnsAllFiles(t *testing.T) {
	files := []string{"a", "b"}
	chunks := splitFiles(files, 1)
	require.Len(t, chunks, 1)
	assert.Equal(t, files, chunks[0])
}

func TestSplitFilesMoreChunksThanFiles(t *testing.T) {
	files := []string{"a"}
	chunks := splitFiles(files, 3)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a"}, chunks[0])
	assert.Empty(t, chunks[1])
	assert.Empty(t, chunks[2])
}

func TestParallelExecutorSplitAggregatesAllSuccesses(t *testing.T) {
	a1 := &fakeAdapter{name: "gemini", chunks: []adapter.Chunk{{Text: "result-a"}}}
	a2 := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Text: "result-b"}}}

	p := NewParallelExecutor(map[string]adapter.Adapter{"gemini": a1, "qwen": a2}, 3)
	result, err := p.Execute(context.Background(), "analyze", []string{"x.go", "y.go"}, []string{"gemini", "qwen"}, StrategySplit)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Contains(t, result.AggregatedText, "result-a")
	assert.Contains(t, result.AggregatedText, "result-b")
	assert.Contains(t, result.AggregatedText, "## gemini")
	assert.Contains(t, result.AggregatedText, "## qwen")
}

func TestParallelExecutorSplitAllFailedProducesFallbackMessage(t *testing.T) {
	a1 := &fakeAdapter{name: "gemini", chunks: []adapter.Chunk{{Err: errors.New("boom")}}}

	p := NewParallelExecutor(map[string]adapter.Adapter{"gemini": a1}, 3)
	result, err := p.Execute(context.Background(), "analyze", []string{"x.go"}, []string{"gemini"}, StrategySplit)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "All parallel tasks failed.", result.AggregatedText)
}

func TestParallelExecutorDuplicateIncludesErrorsInAggregate(t *testing.T) {
	a1 := &fakeAdapter{name: "gemini", chunks: []adapter.Chunk{{Text: "good"}}}
	a2 := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Err: errors.New("down")}}}

	p := NewParallelExecutor(map[string]adapter.Adapter{"gemini": a1, "qwen": a2}, 3)
	result, err := p.Execute(context.Background(), "compare", []string{"x.go"}, []string{"gemini", "qwen"}, StrategyDuplicate)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.AggregatedText, "# Comparison of Results from Multiple Models")
	assert.Contains(t, result.AggregatedText, "good")
	assert.Contains(t, result.AggregatedText, "**Error:** down")
}

func TestParallelExecutorCapsToMaxWorkers(t *testing.T) {
	a1 := &fakeAdapter{name: "gemini", chunks: []adapter.Chunk{{Text: "g"}}}
	a2 := &fakeAdapter{name: "qwen", chunks: []adapter.Chunk{{Text: "q"}}}
	a3 := &fakeAdapter{name: "ollama_local", chunks: []adapter.Chunk{{Text: "o"}}}

	p := NewParallelExecutor(map[string]adapter.Adapter{"gemini": a1, "qwen": a2, "ollama_local": a3}, 2)
	result, err := p.Execute(context.Background(), "compare", []string{"x.go"}, []string{"gemini", "qwen", "ollama_local"}, StrategyDuplicate)
	require.NoError(t, err)

	assert.Len(t, result.BackendsUsed, 2)
}
