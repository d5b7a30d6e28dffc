package adapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"muster/internal/backend"
	"muster/internal/errs"
	"muster/internal/procmgr"
	"muster/internal/promptasm"
	"muster/internal/security"
	"muster/pkg/logging"
)

// CLIAdapter runs a child process whose prompt slot is a single `-p`
// argument. Grounded on original_source/oxide/adapters/cli_adapter.py.
type CLIAdapter struct {
	descriptor backend.Descriptor
	procs      *procmgr.Manager
}

// NewCLIAdapter constructs a CLIAdapter for descriptor, registering spawned
// children with procs.
func NewCLIAdapter(descriptor backend.Descriptor, procs *procmgr.Manager) *CLIAdapter {
	return &CLIAdapter{descriptor: descriptor, procs: procs}
}

func (a *CLIAdapter) Name() string { return a.descriptor.Name }

// Execute builds the command line, spawns the child, registers it with the
// process manager, and streams stdout line by line until EOF or ctx
// cancellation. The per-operation read timeout is whatever deadline the
// caller (the orchestrator) has already set on ctx; Execute itself applies
// no additional timeout. See package doc and §4.5 for the failure taxonomy.
func (a *CLIAdapter) Execute(ctx context.Context, prompt string, files []string) <-chan Chunk {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		cmd, err := a.buildCommand(ctx, prompt, files)
		if err != nil {
			send(ctx, out, Chunk{Err: err})
			return
		}

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			send(ctx, out, Chunk{Err: errs.NewAdapterError(a.descriptor.Name, "failed to open stdout pipe: %v", err)})
			return
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			send(ctx, out, Chunk{Err: errs.NewAdapterError(a.descriptor.Name, "failed to open stderr pipe: %v", err)})
			return
		}

		if err := cmd.Start(); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				send(ctx, out, Chunk{Err: errs.NewServiceUnavailableError(a.descriptor.Name, fmt.Sprintf("executable %q not found in PATH", a.descriptor.Executable))})
				return
			}
			send(ctx, out, Chunk{Err: errs.NewAdapterError(a.descriptor.Name, "process spawn error: %v", err)})
			return
		}

		handle := &procmgr.Handle{Process: cmd.Process, Kind: procmgr.KindAsync, Label: a.descriptor.Name}
		a.procs.Register(handle)
		defer a.procs.Unregister(handle)

		scanErrCh := make(chan error, 1)
		go func() {
			scanErrCh <- a.streamLines(ctx, stdout, out)
		}()

		select {
		case scanErr := <-scanErrCh:
			if scanErr != nil {
				_ = cmd.Process.Kill()
				_, _ = cmd.Process.Wait()
				send(ctx, out, Chunk{Err: errs.NewTimeoutError(a.descriptor.Name, 0)})
				return
			}
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()
			send(ctx, out, Chunk{Err: errs.NewTimeoutError(a.descriptor.Name, 0)})
			return
		}

		stderrBytes, _ := io.ReadAll(stderr)
		if err := cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				send(ctx, out, Chunk{Err: errs.NewAdapterError(
					a.descriptor.Name,
					"command failed with exit code %d: %s",
					exitErr.ExitCode(), strings.TrimSpace(string(stderrBytes)),
				)})
				return
			}
			send(ctx, out, Chunk{Err: errs.NewAdapterError(a.descriptor.Name, "process wait error: %v", err)})
		}
	}()

	return out
}

// buildCommand validates the prompt and files, then assembles the argv
// list. Invalid files are dropped and logged rather than failing the
// request, per the unified file-drop policy (see Design Note 1).
func (a *CLIAdapter) buildCommand(ctx context.Context, prompt string, files []string) (*exec.Cmd, error) {
	validated, err := security.ValidatePrompt(prompt)
	if err != nil {
		logging.Audit(logging.AuditEvent{
			Action:  "prompt_validation",
			Outcome: "rejected",
			Target:  a.descriptor.Name,
			Details: err.Error(),
		})
		return nil, errs.NewSemanticAdapterError(a.descriptor.Name, err.Error())
	}

	var b strings.Builder
	if len(files) > 0 {
		for _, path := range security.ValidateFilePaths(files, true) {
			b.WriteString(security.SanitizeCommandArg(promptasm.NativeFileReference(path)))
			b.WriteByte(' ')
		}
	}
	b.WriteString(security.SanitizeCommandArg(validated))

	cmd := exec.CommandContext(ctx, a.descriptor.Executable, "-p", b.String())
	return cmd, nil
}

// streamLines reads stdout line by line, emitting each complete line
// immediately and flushing any trailing partial line on EOF.
func (a *CLIAdapter) streamLines(ctx context.Context, stdout io.Reader, out chan<- Chunk) error {
	reader := bufio.NewReader(stdout)
	var buf strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			buf.WriteString(line)
			if strings.HasSuffix(line, "\n") {
				if !send(ctx, out, Chunk{Text: buf.String()}) {
					return nil
				}
				buf.Reset()
			}
		}
		if err != nil {
			if err == io.EOF {
				if buf.Len() > 0 {
					send(ctx, out, Chunk{Text: buf.String()})
				}
				return nil
			}
			return err
		}
	}
}

// HealthCheck runs the executable with a benign --version argument under a
// short deadline; healthy iff it exits 0 in time.
func (a *CLIAdapter) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.descriptor.Executable, "--version")
	err := cmd.Run()
	if err != nil {
		logging.Debug("adapter", "health check failed for %s: %v", a.descriptor.Name, err)
		return false
	}
	return true
}

// ListModels is not supported by CLI-based backends; they expose no model
// enumeration endpoint.
func (a *CLIAdapter) ListModels(ctx context.Context) []string {
	return nil
}
