package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"muster/internal/adapter"
	"muster/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// Strategy selects how ParallelExecutor divides work across backends.
// Grounded on original_source/oxide/execution/parallel.py.
type Strategy string

const (
	// StrategySplit partitions the file list into roughly-equal chunks,
	// one per backend.
	StrategySplit Strategy = "split"
	// StrategyDuplicate sends the same (prompt, files) to every backend,
	// for side-by-side comparison.
	StrategyDuplicate Strategy = "duplicate"
)

// BackendOutcome is one backend's contribution to a ParallelResult.
type BackendOutcome struct {
	Backend string
	Success bool
	Text    string
	Err     error
}

// ParallelResult is the aggregated outcome of a parallel execution.
type ParallelResult struct {
	AggregatedText string
	Outcomes       []BackendOutcome
	BackendsUsed   []string
	Duration       time.Duration
	Successful     int
	Failed         int
}

// ParallelExecutor runs a task across multiple backends concurrently,
// either splitting the file list among them or duplicating the whole
// request to each for comparison.
type ParallelExecutor struct {
	adapters   map[string]adapter.Adapter
	maxWorkers int
}

// NewParallelExecutor constructs a ParallelExecutor bounded to maxWorkers
// concurrent backends.
func NewParallelExecutor(adapters map[string]adapter.Adapter, maxWorkers int) *ParallelExecutor {
	if maxWorkers <= 0 {
		maxWorkers = 3
	}
	return &ParallelExecutor{adapters: adapters, maxWorkers: maxWorkers}
}

// Execute runs prompt/files across backends using strategy, never waiting
// longer than the slowest backend; per-backend errors do not abort
// siblings.
func (p *ParallelExecutor) Execute(ctx context.Context, prompt string, files []string, backends []string, strategy Strategy) (ParallelResult, error) {
	start := time.Now()

	logging.Info("parallel", "starting parallel execution: %d files, %d backends, strategy=%s", len(files), len(backends), strategy)

	var result ParallelResult
	switch strategy {
	case StrategyDuplicate:
		result = p.executeDuplicate(ctx, prompt, files, backends)
	default:
		result = p.executeSplit(ctx, prompt, files, backends)
	}

	result.Duration = time.Since(start)
	logging.Info("parallel", "parallel execution completed in %s: %d successful, %d failed", result.Duration, result.Successful, result.Failed)
	return result, nil
}

func (p *ParallelExecutor) executeSplit(ctx context.Context, prompt string, files []string, backends []string) ParallelResult {
	used := backends
	if len(used) > p.maxWorkers {
		used = used[:p.maxWorkers]
	}
	chunks := splitFiles(files, len(used))

	outcomes := make([]BackendOutcome, len(used))
	var g errgroup.Group
	for i, name := range used {
		i, name := i, name
		a, ok := p.adapters[name]
		if !ok {
			outcomes[i] = BackendOutcome{Backend: name, Success: false, Err: fmt.Errorf("adapter not found: %s", name)}
			continue
		}
		var chunk []string
		if i < len(chunks) {
			chunk = chunks[i]
		}
		g.Go(func() error {
			text, err := runToCompletion(ctx, a, prompt, chunk)
			if err != nil {
				outcomes[i] = BackendOutcome{Backend: name, Success: false, Err: err}
			} else {
				outcomes[i] = BackendOutcome{Backend: name, Success: true, Text: text}
			}
			return nil
		})
	}
	_ = g.Wait()

	return aggregate(outcomes, used, false)
}

func (p *ParallelExecutor) executeDuplicate(ctx context.Context, prompt string, files []string, backends []string) ParallelResult {
	used := backends
	if len(used) > p.maxWorkers {
		used = used[:p.maxWorkers]
	}

	outcomes := make([]BackendOutcome, len(used))
	var g errgroup.Group
	for i, name := range used {
		i, name := i, name
		a, ok := p.adapters[name]
		if !ok {
			outcomes[i] = BackendOutcome{Backend: name, Success: false, Err: fmt.Errorf("adapter not found: %s", name)}
			continue
		}
		g.Go(func() error {
			text, err := runToCompletion(ctx, a, prompt, files)
			if err != nil {
				outcomes[i] = BackendOutcome{Backend: name, Success: false, Err: err}
			} else {
				outcomes[i] = BackendOutcome{Backend: name, Success: true, Text: text}
			}
			return nil
		})
	}
	_ = g.Wait()

	return aggregate(outcomes, used, true)
}

// runToCompletion drains an adapter's stream fully, concatenating chunks
// into one string — the parallel executor aggregates whole responses, not
// incremental ones.
func runToCompletion(ctx context.Context, a adapter.Adapter, prompt string, files []string) (string, error) {
	var b strings.Builder
	for chunk := range a.Execute(ctx, prompt, files) {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		b.WriteString(chunk.Text)
	}
	return b.String(), nil
}

// splitFiles partitions files into numChunks roughly-equal slices, giving
// the first (len(files) % numChunks) chunks one extra file.
func splitFiles(files []string, numChunks int) [][]string {
	if numChunks <= 0 {
		return nil
	}
	if numChunks == 1 {
		return [][]string{files}
	}

	chunkSize := len(files) / numChunks
	remainder := len(files) % numChunks

	chunks := make([][]string, 0, numChunks)
	start := 0
	for i := 0; i < numChunks; i++ {
		extra := 0
		if i < remainder {
			extra = 1
		}
		end := start + chunkSize + extra
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[start:end])
		start = end
	}
	return chunks
}

func aggregate(outcomes []BackendOutcome, used []string, duplicate bool) ParallelResult {
	var successful, failed int
	for _, o := range outcomes {
		if o.Success {
			successful++
		} else {
			failed++
		}
	}

	var b strings.Builder
	if duplicate {
		b.WriteString("# Comparison of Results from Multiple Models\n")
	}
	var parts []string
	for _, o := range outcomes {
		switch {
		case o.Success:
			parts = append(parts, fmt.Sprintf("## %s\n\n%s\n", o.Backend, o.Text))
		case duplicate:
			parts = append(parts, fmt.Sprintf("## %s\n\n**Error:** %v\n", o.Backend, o.Err))
		}
	}

	aggregated := b.String()
	if len(parts) == 0 && !duplicate {
		aggregated = "All parallel tasks failed."
	} else {
		aggregated += strings.Join(parts, "\n---\n\n")
	}

	return ParallelResult{
		AggregatedText: aggregated,
		Outcomes:       outcomes,
		BackendsUsed:   used,
		Successful:     successful,
		Failed:         failed,
	}
}
