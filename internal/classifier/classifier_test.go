package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"muster/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyQuickQuery(t *testing.T) {
	c := Classify("what is 2 + 2?", nil)
	assert.Equal(t, backend.TaskQuickQuery, c.TaskType)
	assert.Equal(t, backend.LatencyLow, c.LatencyEstimate)
	assert.False(t, c.ParallelHint)
}

func TestClassifyCodebaseAnalysisByFileCount(t *testing.T) {
	c := Classify("look at this", make([]string, 25))
	assert.Equal(t, backend.TaskCodebaseAnalysis, c.TaskType)
	assert.True(t, c.ParallelHint)
	assert.Equal(t, backend.LatencyHigh, c.LatencyEstimate)
}

func TestClassifyCodebaseAnalysisByTotalSize(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(f, make([]byte, 600_000), 0o644))

	c := Classify("review", []string{f})
	assert.Equal(t, backend.TaskCodebaseAnalysis, c.TaskType)
}

func TestClassifyKeywordOrder(t *testing.T) {
	cases := map[string]backend.TaskType{
		"please review this function":  backend.TaskCodeReview,
		"write a new handler":          backend.TaskCodeGeneration,
		"debug this failing test":      backend.TaskDebugging,
		"refactor the parser":          backend.TaskRefactoring,
		"document the public API":      backend.TaskDocumentation,
		"design the system architecture": backend.TaskArchitectureDesign,
	}
	dir := t.TempDir()
	f := filepath.Join(dir, "x.go")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	for prompt, want := range cases {
		c := Classify(prompt, []string{f})
		assert.Equal(t, want, c.TaskType, "prompt=%q", prompt)
	}
}

func TestClassifyDefaultsToCodeReviewWithFiles(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "x.go")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	c := Classify("look at this please", []string{f})
	assert.Equal(t, backend.TaskCodeReview, c.TaskType)
}

func TestClassifyMissingFileContributesZeroBytes(t *testing.T) {
	c := Classify("hello world "+strings.Repeat("x", 250), []string{"/nonexistent/file.go"})
	assert.Equal(t, int64(0), c.TotalFileBytes)
}

func TestComplexityScoreRounding(t *testing.T) {
	c := Classify(strings.Repeat("a", 1000), nil)
	assert.Equal(t, 0.2, c.ComplexityScore)
}
