package app

import (
	"context"
	"os/exec"
	"time"

	"muster/internal/backend"
	"muster/internal/errs"
	"muster/internal/procmgr"
	"muster/pkg/logging"
)

// processSupervisor launches an HTTP backend's executable (e.g. "ollama
// serve") when its readiness probe fails and the descriptor has AutoStart
// set, then gives it a moment to come up before the adapter retries.
// Grounded on internal/adapter/cli.go's own subprocess-spawn pattern,
// generalized from "run to completion" to "run in the background".
type processSupervisor struct {
	table *backend.Table
	procs *procmgr.Manager
}

func newProcessSupervisor(table *backend.Table, procs *procmgr.Manager) *processSupervisor {
	return &processSupervisor{table: table, procs: procs}
}

// startupGrace is how long Start waits after spawning before returning,
// giving the backend's listener a chance to bind before the adapter's
// next readiness probe.
const startupGrace = 500 * time.Millisecond

func (s *processSupervisor) Start(ctx context.Context, name string) error {
	d, ok := s.table.Get(name)
	if !ok {
		return errs.NewServiceUnavailableError(name, "no descriptor configured")
	}
	if d.Executable == "" {
		return errs.NewServiceUnavailableError(name, "auto_start enabled but no executable configured")
	}

	cmd := exec.Command(d.Executable)
	if err := cmd.Start(); err != nil {
		return errs.NewServiceUnavailableError(name, "auto-start failed: "+err.Error())
	}

	handle := &procmgr.Handle{Process: cmd.Process, Kind: procmgr.KindAsync, Label: name}
	s.procs.Register(handle)
	go func() {
		_, _ = cmd.Process.Wait()
		s.procs.Unregister(handle)
	}()

	logging.Info("supervisor", "auto-started %s (pid %d)", name, cmd.Process.Pid)

	select {
	case <-time.After(startupGrace):
	case <-ctx.Done():
	}
	return nil
}
