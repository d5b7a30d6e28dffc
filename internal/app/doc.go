// Package app bootstraps the orchestrator and exposes it as a facade for
// the CLI and MCP front-end.
//
// # Components
//
//   - bootstrap.go: Application, NewApplication — the two-phase
//     logging-then-services bootstrap sequence.
//   - config.go: Config — bootstrap-time flags (debug, silent,
//     config-path) parsed by the CLI before any routing config loads.
//   - services.go: Services — the facade wiring backend.Table,
//     health.Prober, adapter.Adapter instances, router.Router,
//     orchestrator.Orchestrator, and procmgr.Manager from one loaded
//     config.Config, exposing list_backends/test_backend/routing_rules/
//     execute/execute_parallel.
//   - supervisor.go: processSupervisor — the adapter.ServiceSupervisor
//     implementation that auto-starts an HTTP backend's executable on a
//     failed readiness probe.
//   - modes.go: RunTask — the one-shot request behind `oxide run`: it
//     streams one request's output to an io.Writer and sweeps
//     Procs.CleanupAll before returning.
//
// # Configuration Loading
//
// Services loads configuration using internal/config's layered
// convention unless cfg.ConfigPath overrides it with a single directory —
// see internal/config's package doc for the full layering and file list.
package app
