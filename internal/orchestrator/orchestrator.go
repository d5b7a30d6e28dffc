package orchestrator

import (
	"context"
	"fmt"
	"time"

	"muster/internal/adapter"
	"muster/internal/backend"
	"muster/internal/classifier"
	"muster/internal/errs"
	"muster/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExecutionConfig carries the ambient execution{} settings from config: the
// global timeout default, outer retry budget, and whether retries are
// enabled at all.
type ExecutionConfig struct {
	TimeoutSeconds int
	MaxRetries     int
	RetryOnFailure bool
}

// Router is the slice of internal/router's Router the orchestrator
// depends on, declared here so tests can substitute a fake without
// standing up real backends and health probes.
type Router interface {
	Route(ctx context.Context, c backend.Classification) (backend.Decision, error)
	RouteBroadcast(ctx context.Context) (backend.Decision, error)
}

// Orchestrator is the coordination state machine for a single request: it
// classifies, routes, and executes with retry/fallback, forwarding chunks
// to the caller as they arrive. Grounded on
// original_source/oxide/core/orchestrator.py::Orchestrator, with the
// streaming-commitment redesign documented in the package doc comment.
type Orchestrator struct {
	adapters map[string]adapter.Adapter
	router   Router
	exec     ExecutionConfig
}

// New constructs an Orchestrator over adapters (keyed by backend name).
func New(adapters map[string]adapter.Adapter, r Router, exec ExecutionConfig) *Orchestrator {
	return &Orchestrator{adapters: adapters, router: r, exec: exec}
}

// Result is one item of an ExecuteTask stream: either a text chunk, or a
// terminal error (after which the channel closes).
type Result struct {
	Text string
	Err  error
}

// ExecuteTask classifies prompt+files, routes the resulting classification,
// and streams the response from the selected backend with retry/fallback.
// The returned channel is always closed when the request ends.
func (o *Orchestrator) ExecuteTask(ctx context.Context, prompt string, files []string) <-chan Result {
	out := make(chan Result)
	requestID := logging.TruncateSessionID(uuid.NewString())

	go func() {
		defer close(out)

		logging.Info("orchestrator", "[%s] executing task with %d files", requestID, len(files))

		c := classifier.Classify(prompt, files)

		decision, err := o.router.Route(ctx, c)
		if err != nil {
			logging.Error("orchestrator", err, "[%s] no service available", requestID)
			out <- Result{Err: err}
			return
		}

		timeout := decision.TimeoutSeconds
		if timeout <= 0 {
			timeout = o.exec.TimeoutSeconds
		}
		execCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			execCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
			defer cancel()
		}

		candidates := append([]string{decision.Primary}, decision.Fallback...)
		lastErr := o.executeWithRetry(execCtx, requestID, candidates, prompt, files, out)
		if lastErr == nil {
			logging.Info("orchestrator", "[%s] task completed on candidate chain %v", requestID, candidates)
			return
		}

		if _, ok := lastErr.(*errs.NoServiceAvailableError); ok {
			out <- Result{Err: lastErr}
			return
		}
		out <- Result{Err: errs.NewExecutionError(lastErr)}
	}()

	return out
}

// executeWithRetry walks candidates in order, retrying a retryable failure
// against the same candidate up to the configured attempt budget before
// moving to the next. It returns nil on success, or the last observed
// error if every candidate was exhausted (or a sentinel
// *errs.NoServiceAvailableError if no candidate was ever tried).
func (o *Orchestrator) executeWithRetry(ctx context.Context, requestID string, candidates []string, prompt string, files []string, out chan<- Result) error {
	maxRetries := 1
	if o.exec.RetryOnFailure && o.exec.MaxRetries > 0 {
		maxRetries = o.exec.MaxRetries
	}

	var lastErr error
	triedAny := false

	for _, name := range candidates {
		a, ok := o.adapters[name]
		if !ok {
			logging.Warn("orchestrator", "[%s] adapter not found: %s", requestID, name)
			continue
		}
		triedAny = true

		for attempt := 1; attempt <= maxRetries; attempt++ {
			logging.Debug("orchestrator", "[%s] attempting %s (attempt %d/%d)", requestID, name, attempt, maxRetries)

			yielded := false
			err := o.streamCandidate(ctx, a, prompt, files, out, &yielded)

			if err == nil {
				return nil
			}

			lastErr = err

			if yielded {
				// Streaming commitment: once a chunk reached the caller on
				// this candidate, any failure is terminal.
				return lastErr
			}

			if errs.SkipsToNextCandidate(err) {
				logging.Warn("orchestrator", "[%s] %s unavailable, skipping to next candidate: %v", requestID, name, err)
				break
			}
			if errs.Retryable(err) && attempt < maxRetries {
				logging.Warn("orchestrator", "[%s] attempt %d on %s failed, retrying: %v", requestID, attempt, name, err)
				continue
			}
			break
		}
	}

	if !triedAny {
		return &errs.NoServiceAvailableError{TaskType: "unknown"}
	}
	return lastErr
}

// streamCandidate drains one adapter's stream, forwarding every chunk to
// out and setting *yielded true as soon as the first one is forwarded.
func (o *Orchestrator) streamCandidate(ctx context.Context, a adapter.Adapter, prompt string, files []string, out chan<- Result, yielded *bool) error {
	for chunk := range a.Execute(ctx, prompt, files) {
		if chunk.Err != nil {
			return chunk.Err
		}
		select {
		case out <- Result{Text: chunk.Text}:
			*yielded = true
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while streaming from %s: %w", a.Name(), ctx.Err())
		}
	}
	return nil
}

// BroadcastResult is one backend's outcome from ExecuteBroadcast.
type BroadcastResult struct {
	Backend string
	Text    string
	Err     error
}

// ExecuteBroadcast fans out prompt+files to every backend the router
// selects in broadcast mode, concurrently, tagging each chunk with its
// originating backend. The channel closes once every backend has
// completed or terminally failed (§4.10 Broadcast mode). Uses errgroup to
// wait on the fan-out without letting one backend's failure cancel its
// siblings — each goroutine always returns nil to the group and reports
// its own error on the output channel instead.
func (o *Orchestrator) ExecuteBroadcast(ctx context.Context, prompt string, files []string) <-chan BroadcastResult {
	out := make(chan BroadcastResult)

	go func() {
		defer close(out)

		decision, err := o.router.RouteBroadcast(ctx)
		if err != nil {
			out <- BroadcastResult{Err: err}
			return
		}

		backends := append([]string{decision.Primary}, decision.Fallback...)
		var g errgroup.Group

		for _, name := range backends {
			name := name
			a, ok := o.adapters[name]
			if !ok {
				continue
			}
			g.Go(func() error {
				for chunk := range a.Execute(ctx, prompt, files) {
					if chunk.Err != nil {
						out <- BroadcastResult{Backend: name, Err: chunk.Err}
						continue
					}
					select {
					case out <- BroadcastResult{Backend: name, Text: chunk.Text}:
					case <-ctx.Done():
						return nil
					}
				}
				return nil
			})
		}

		_ = g.Wait()
	}()

	return out
}
