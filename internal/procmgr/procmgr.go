// Package procmgr tracks every child process the orchestrator spawns so a
// shutdown signal can terminate all of them, not just the one a given
// request happens to be waiting on. internal/app installs the SIGINT/SIGTERM
// sweep (InstallSignalHandlers) when it builds its services, and its RunTask
// also calls CleanupAll before returning.
package procmgr

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"muster/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Kind distinguishes a process the manager must wait on synchronously from
// one that streams output asynchronously and is reaped in the background.
type Kind string

const (
	KindSync  Kind = "sync"
	KindAsync Kind = "async"
)

// GracePeriod is how long CleanupAll waits after SIGTERM before escalating
// to SIGKILL on survivors.
const GracePeriod = 2 * time.Second

// Handle is a tracked child process.
type Handle struct {
	Process *os.Process
	Kind    Kind
	Label   string
}

// Manager is the process-wide registry of live child processes. The zero
// value is not usable; construct with New.
type Manager struct {
	mu      sync.Mutex
	live    map[*Handle]struct{}
	once    sync.Once
	sigChan chan os.Signal
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{live: make(map[*Handle]struct{})}
}

// Register adds h to the live set. Safe to call from any goroutine, and
// must be called before the child is given any work (§3 invariant).
func (m *Manager) Register(h *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[h] = struct{}{}
}

// Unregister removes h from the live set. Must be called only after the
// child has been observed to exit (§3 invariant).
func (m *Manager) Unregister(h *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, h)
}

// InstallSignalHandlers arranges for SIGINT/SIGTERM to trigger CleanupAll.
// Idempotent: only the first call installs the handler.
func (m *Manager) InstallSignalHandlers(ctx context.Context) {
	m.once.Do(func() {
		m.sigChan = make(chan os.Signal, 1)
		signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-m.sigChan
			logging.Info("procmgr", "signal received, sweeping live processes")
			m.CleanupAll(ctx)
		}()
	})
}

// NotifyReady signals systemd (when running under it) that startup has
// completed. A no-op outside of systemd supervision.
func (m *Manager) NotifyReady() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Debug("procmgr", "sd_notify READY skipped: %v", err)
	}
}

// NotifyStopping signals systemd that shutdown has begun. Called at the
// start of CleanupAll's sweep.
func (m *Manager) NotifyStopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logging.Debug("procmgr", "sd_notify STOPPING skipped: %v", err)
	}
}

// CleanupAll sends SIGTERM to every live handle, waits up to GracePeriod,
// then sends SIGKILL to survivors. The live set is snapshotted before
// iterating so registrations that race with shutdown are neither
// deadlocked on nor silently dropped — they simply join next sweep.
func (m *Manager) CleanupAll(ctx context.Context) {
	m.NotifyStopping()

	snapshot := m.snapshot()
	if len(snapshot) == 0 {
		return
	}

	for _, h := range snapshot {
		if err := h.Process.Signal(syscall.SIGTERM); err != nil {
			logging.Debug("procmgr", "SIGTERM to %s failed (already exited?): %v", h.Label, err)
		}
	}

	done := make(chan struct{})
	go func() {
		for _, h := range snapshot {
			_, _ = h.Process.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(GracePeriod):
		for _, h := range snapshot {
			if err := h.Process.Signal(syscall.SIGKILL); err != nil {
				logging.Debug("procmgr", "SIGKILL to %s failed (already exited?): %v", h.Label, err)
			}
		}
	case <-ctx.Done():
		for _, h := range snapshot {
			if err := h.Process.Signal(syscall.SIGKILL); err != nil {
				logging.Debug("procmgr", "SIGKILL to %s failed (already exited?): %v", h.Label, err)
			}
		}
	}

	for _, h := range snapshot {
		m.Unregister(h)
	}
}

func (m *Manager) snapshot() []*Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Handle, 0, len(m.live))
	for h := range m.live {
		out = append(out, h)
	}
	return out
}

// Count returns the number of currently-tracked live handles. Test/debug
// use only.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}
