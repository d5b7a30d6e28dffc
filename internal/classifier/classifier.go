// Package classifier turns a prompt and file list into a task
// classification: a pure, deterministic function with no I/O other than
// stat-ing the given files. Grounded on
// original_source/oxide/core/classifier.py.
package classifier

import (
	"math"
	"os"
	"strings"

	"muster/internal/backend"
	"muster/pkg/logging"
)

const (
	largeCodebaseFiles       = 20
	largeCodebaseSize  int64 = 500_000
	quickQueryMaxPromptLen   = 200
)

var (
	reviewKeywords       = set("review", "analyze", "check", "audit", "inspect", "examine")
	generationKeywords   = set("write", "create", "generate", "implement", "build", "add", "make")
	debugKeywords        = set("debug", "fix", "bug", "error", "issue", "problem", "broken")
	refactorKeywords     = set("refactor", "improve", "optimize", "clean", "restructure")
	documentationKeywords = set("document", "docs", "readme", "comment", "explain", "describe")
	architectureKeywords = set("architecture", "design", "structure", "pattern", "system")
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func intersects(words map[string]struct{}, keywords map[string]struct{}) bool {
	for w := range words {
		if _, ok := keywords[w]; ok {
			return true
		}
	}
	return false
}

// recommendedBackends is the fixed task-type → ordered-backend-name lookup.
// The router looks each name up literally in the configured backend table;
// a name with no configured backend of that name counts as unavailable.
var recommendedBackends = map[backend.TaskType][]string{
	backend.TaskCodebaseAnalysis:   {"gemini", "qwen"},
	backend.TaskCodeReview:         {"qwen", "ollama_local"},
	backend.TaskCodeGeneration:     {"qwen", "ollama_local"},
	backend.TaskQuickQuery:         {"ollama_local", "ollama_remote"},
	backend.TaskArchitectureDesign: {"gemini", "qwen"},
	backend.TaskDebugging:          {"qwen", "ollama_local"},
	backend.TaskDocumentation:      {"ollama_local", "qwen"},
	backend.TaskRefactoring:        {"qwen", "ollama_local"},
}

// Classify is a pure, deterministic function of (prompt, files). Missing
// files contribute zero bytes to the total, logged at debug level.
func Classify(prompt string, files []string) backend.Classification {
	fileCount := len(files)
	totalBytes := totalSize(files)

	taskType := determineTaskType(prompt, fileCount, totalBytes)
	complexity := complexityScore(fileCount, totalBytes, len(prompt))
	parallelHint := taskType == backend.TaskCodebaseAnalysis && fileCount > largeCodebaseFiles

	c := backend.Classification{
		TaskType:            taskType,
		FileCount:           fileCount,
		TotalFileBytes:      totalBytes,
		ComplexityScore:     complexity,
		RecommendedBackends: recommendedBackends[taskType],
		ParallelHint:        parallelHint,
		LatencyEstimate:     estimateLatency(taskType, fileCount),
	}

	logging.Info("classifier", "classified task: type=%s files=%d size=%d complexity=%.2f parallel=%v",
		taskType, fileCount, totalBytes, complexity, parallelHint)

	return c
}

func determineTaskType(prompt string, fileCount int, totalBytes int64) backend.TaskType {
	if fileCount > largeCodebaseFiles || totalBytes > largeCodebaseSize {
		return backend.TaskCodebaseAnalysis
	}

	lower := strings.ToLower(prompt)
	if fileCount == 0 && len(lower) < quickQueryMaxPromptLen {
		return backend.TaskQuickQuery
	}

	words := set(strings.Fields(lower)...)
	switch {
	case intersects(words, reviewKeywords):
		return backend.TaskCodeReview
	case intersects(words, generationKeywords):
		return backend.TaskCodeGeneration
	case intersects(words, debugKeywords):
		return backend.TaskDebugging
	case intersects(words, refactorKeywords):
		return backend.TaskRefactoring
	case intersects(words, documentationKeywords):
		return backend.TaskDocumentation
	case intersects(words, architectureKeywords):
		return backend.TaskArchitectureDesign
	}

	if fileCount > 0 {
		return backend.TaskCodeReview
	}
	return backend.TaskQuickQuery
}

func complexityScore(fileCount int, totalBytes int64, promptLen int) float64 {
	fileFactor := math.Min(float64(fileCount)/100, 1.0)
	sizeFactor := math.Min(float64(totalBytes)/(5*1024*1024), 1.0)
	promptFactor := math.Min(float64(promptLen)/1000, 1.0)

	score := 0.4*fileFactor + 0.4*sizeFactor + 0.2*promptFactor
	return math.Round(score*100) / 100
}

func estimateLatency(taskType backend.TaskType, fileCount int) backend.LatencyEstimate {
	if taskType == backend.TaskQuickQuery {
		return backend.LatencyLow
	}
	if taskType == backend.TaskCodebaseAnalysis || fileCount > 50 {
		return backend.LatencyHigh
	}
	return backend.LatencyMedium
}

func totalSize(files []string) int64 {
	var total int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			logging.Debug("classifier", "cannot stat %s: %v", path, err)
			continue
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
	}
	return total
}
