package app

import (
	"fmt"
	"io"
	"os"

	"muster/pkg/logging"
)

// Application bootstraps the orchestrator: it loads configuration and wires
// every pipeline component into a Services facade. Every CLI subcommand
// (run, backends, test-backend, routing-rules) calls into Services directly
// after bootstrap — there is no long-running server loop here, since the
// orchestrator binary is one-shot per invocation (see modes.go's RunTask).
//
// Example usage:
//
//	cfg := app.NewConfig(false, false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("bootstrap failed: %w", err)
//	}
//	return application.Services.RunTask(ctx, os.Stdout, prompt, files, prefer)
type Application struct {
	config   *Config
	Services *Services
}

// NewApplication performs the full bootstrap sequence: it configures
// logging per cfg.Debug/cfg.Silent, then builds Services, which itself
// loads routing configuration (layered, or single-path per
// cfg.ConfigPath) and wires adapters, the router, and the orchestrator.
func NewApplication(cfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.Silent {
		out = io.Discard
	}
	logging.InitForCLI(level, out)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{config: cfg, Services: services}, nil
}
