// Package logging provides the structured, leveled logging used throughout
// the orchestrator: a thin wrapper over log/slog that gives every call site
// a subsystem tag and an optional associated error, plus a filterable
// [AUDIT]-prefixed channel for security-relevant rejections.
//
// # Log Levels
//   - Debug: detailed information for diagnosing routing/retry decisions
//   - Info: general informational messages about request lifecycle
//   - Warn: recoverable problems (dropped file path, fallback candidate)
//   - Error: failures that terminate a request
//
// # Initialization
//
//	import "muster/pkg/logging"
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "loaded %d backends", len(table.Names()))
//	logging.Debug("router", "routing classification %+v", c)
//	logging.Warn("security", "dropping invalid file path %q: %v", p, err)
//	logging.Error("orchestrator", err, "[%s] no service available", requestID)
//
// InitForCLI must be called once at startup before any other function in
// this package is used; logInternal silently drops log calls made before
// initialization (or below the configured level) rather than buffering or
// erroring.
//
// # Subsystem Organization
//
// Logs are tagged by subsystem so they can be filtered per component:
// Bootstrap, ConfigLoader, classifier, router, orchestrator, parallel,
// services, supervisor, security, promptasm, adapter, procmgr.
//
// # Audit Events
//
// logging.Audit records a structured, WARN-level, [AUDIT]-prefixed entry
// for security-relevant rejections — currently the CLI adapter's rejection
// of a prompt that fails internal/security.ValidatePrompt before it ever
// reaches a backend's argv. These use the same underlying handler as
// ordinary logs but are independently greppable by the fixed prefix.
//
// # Integration with slog
//
// The logging system integrates with Go's standard slog package:
//   - Uses slog.Handler implementations for output formatting
//   - Converts the package's own LogLevel to slog.Level for compatibility
//   - Falls back to the global slog logger via slog.SetDefault
package logging
