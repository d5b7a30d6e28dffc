package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"muster/internal/adapter"
	"muster/internal/backend"
	"muster/internal/config"
	"muster/internal/errs"
	"muster/internal/health"
	"muster/internal/orchestrator"
	"muster/internal/procmgr"
	"muster/internal/router"
	"muster/pkg/logging"
)

// defaultParallelWorkers is used when analyze_parallel's num_workers
// argument is absent or non-positive.
const defaultParallelWorkers = 3

// testBackendTimeout bounds test_backend's echo-style probe (§6).
const testBackendTimeout = 10 * time.Second

// Services wires every pipeline component from one loaded config.Config:
// the backend table, adapters, health prober, router, orchestrator, and
// parallel executor. It is the facade behind the CLI subcommands and the
// MCP front-end, exposing the external operations from §6.
type Services struct {
	Table        *backend.Table
	Prober       *health.Prober
	Adapters     map[string]adapter.Adapter
	Router       *router.Router
	Orchestrator *orchestrator.Orchestrator
	Procs        *procmgr.Manager

	rules      map[backend.TaskType]backend.Rule
	execConfig orchestrator.ExecutionConfig
}

// InitializeServices builds a Services from the loaded routing config. It
// constructs one adapter per configured backend (CLI or HTTP per
// descriptor.Kind), wires health checking through a shared Prober, and
// assembles the Router and Orchestrator over them.
func InitializeServices(cfg *Config) (*Services, error) {
	var loaded config.Config
	var err error
	if cfg.ConfigPath != "" {
		loaded, err = config.LoadConfigFromPath(cfg.ConfigPath)
	} else {
		loaded, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg.Loaded = &loaded

	table, err := config.BuildBackendTable(loaded)
	if err != nil {
		return nil, fmt.Errorf("building backend table: %w", err)
	}
	rules := config.BuildRules(loaded)

	procs := procmgr.New()
	procs.InstallSignalHandlers(context.Background())
	prober := health.NewDefault()
	supervisor := newProcessSupervisor(table, procs)

	adapters := make(map[string]adapter.Adapter, len(table.Names()))
	checkers := make(router.Checkers, len(table.Names()))
	for _, name := range table.Names() {
		d, _ := table.Get(name)
		switch d.Kind {
		case backend.KindCLI:
			a := adapter.NewCLIAdapter(d, procs)
			adapters[name] = a
			checkers[name] = a
		case backend.KindHTTP:
			var sup adapter.ServiceSupervisor
			if d.AutoStart {
				sup = supervisor
			}
			var a *adapter.HTTPAdapter
			a = adapter.NewHTTPAdapter(d, func(ctx context.Context) bool { return a.HealthCheck(ctx) }, sup)
			adapters[name] = a
			checkers[name] = a
		default:
			return nil, errs.NewConfigError("backend %q: unrecognized kind %q", name, d.Kind)
		}
	}

	r := router.New(rules, table, prober, checkers, loaded.Execution.TimeoutSeconds)

	execConfig := orchestrator.ExecutionConfig{
		TimeoutSeconds: loaded.Execution.TimeoutSeconds,
		MaxRetries:     loaded.Execution.MaxRetries,
		RetryOnFailure: loaded.Execution.RetryOnFailure,
	}
	orch := orchestrator.New(adapters, r, execConfig)

	return &Services{
		Table:        table,
		Prober:       prober,
		Adapters:     adapters,
		Router:       r,
		Orchestrator: orch,
		Procs:        procs,
		rules:        rules,
		execConfig:   execConfig,
	}, nil
}

// BackendStatus is one entry of ListBackends' result.
type BackendStatus struct {
	Name     string
	Enabled  bool
	Healthy  bool
	Kind     backend.Kind
	Metadata map[string]string
}

// ListBackends reports every configured backend's enabled/healthy state
// and descriptive metadata (§6 list_backends).
func (s *Services) ListBackends(ctx context.Context) []BackendStatus {
	names := s.Table.Names()
	out := make([]BackendStatus, 0, len(names))
	for _, name := range names {
		d, _ := s.Table.Get(name)
		checker := s.Adapters[name]
		healthy := checker != nil && s.Prober.Probe(ctx, name, d.Enabled, checker)
		out = append(out, BackendStatus{
			Name:    name,
			Enabled: d.Enabled,
			Healthy: healthy,
			Kind:    d.Kind,
			Metadata: map[string]string{
				"default_model": d.DefaultModel,
			},
		})
	}
	return out
}

// TestBackendResult is test_backend's result shape.
type TestBackendResult struct {
	Success    bool
	SampleText string
	Error      string
}

// TestBackend runs prompt against name directly (bypassing routing and
// retry) under a short fixed deadline, collecting whatever text the
// backend streams back before the deadline or an error (§6 test_backend).
func (s *Services) TestBackend(ctx context.Context, name, prompt string) TestBackendResult {
	a, ok := s.Adapters[name]
	if !ok {
		return TestBackendResult{Error: fmt.Sprintf("no such backend: %q", name)}
	}

	ctx, cancel := context.WithTimeout(ctx, testBackendTimeout)
	defer cancel()

	var sample string
	for chunk := range a.Execute(ctx, prompt, nil) {
		if chunk.Err != nil {
			return TestBackendResult{Error: chunk.Err.Error(), SampleText: sample}
		}
		sample += chunk.Text
	}
	return TestBackendResult{Success: true, SampleText: sample}
}

// RoutingRules returns the loaded routing-rule table, keyed by task type
// (§6 routing_rules).
func (s *Services) RoutingRules() map[backend.TaskType]backend.Rule {
	return s.rules
}

// Execute runs prompt+files through the orchestrator's classify/route/
// retry pipeline, returning the stream of text chunks (§6 execute).
func (s *Services) Execute(ctx context.Context, prompt string, files []string) <-chan orchestrator.Result {
	return s.Orchestrator.ExecuteTask(ctx, prompt, files)
}

// ExecuteWithHint behaves like Execute, except when prefer names a
// configured backend: routing then tries that backend first (ahead of
// whatever the classifier/rule table would have chosen), falling back to
// the normal candidate order if it is unavailable. An empty or unknown
// prefer behaves exactly like Execute (§6 execute's optional routing
// hint).
func (s *Services) ExecuteWithHint(ctx context.Context, prompt string, files []string, prefer string) <-chan orchestrator.Result {
	if prefer == "" {
		return s.Execute(ctx, prompt, files)
	}
	if _, ok := s.Table.Get(prefer); !ok {
		return s.Execute(ctx, prompt, files)
	}

	hinted := orchestrator.New(s.Adapters, &preferRouter{inner: s.Router, prefer: prefer}, s.execConfig)
	return hinted.ExecuteTask(ctx, prompt, files)
}

// preferRouter wraps a *router.Router, moving a preferred backend to the
// front of whatever candidate list the inner router decided on.
type preferRouter struct {
	inner  *router.Router
	prefer string
}

func (p *preferRouter) Route(ctx context.Context, c backend.Classification) (backend.Decision, error) {
	decision, err := p.inner.Route(ctx, c)
	if err != nil {
		return decision, err
	}
	return promoteCandidate(decision, p.prefer), nil
}

func (p *preferRouter) RouteBroadcast(ctx context.Context) (backend.Decision, error) {
	return p.inner.RouteBroadcast(ctx)
}

// promoteCandidate reorders decision's primary/fallback chain so prefer
// is tried first, preserving every other candidate's relative order.
func promoteCandidate(decision backend.Decision, prefer string) backend.Decision {
	if decision.Primary == prefer {
		return decision
	}
	chain := append([]string{decision.Primary}, decision.Fallback...)
	reordered := make([]string, 0, len(chain))
	reordered = append(reordered, prefer)
	for _, name := range chain {
		if name != prefer {
			reordered = append(reordered, name)
		}
	}
	decision.Primary = reordered[0]
	decision.Fallback = reordered[1:]
	return decision
}

// ExecuteBroadcast fans prompt+files out to every healthy backend,
// returning one result per backend.
func (s *Services) ExecuteBroadcast(ctx context.Context, prompt string, files []string) <-chan orchestrator.BroadcastResult {
	return s.Orchestrator.ExecuteBroadcast(ctx, prompt, files)
}

// ExecuteParallel analyzes every file under directory across numWorkers
// healthy backends, splitting the file list between them. Grounded on
// original_source/oxide/mcp/server.py's analyze_parallel tool.
func (s *Services) ExecuteParallel(ctx context.Context, directory, prompt string, numWorkers int) (orchestrator.ParallelResult, error) {
	if numWorkers <= 0 {
		numWorkers = defaultParallelWorkers
	}

	files, err := listFiles(directory)
	if err != nil {
		return orchestrator.ParallelResult{}, fmt.Errorf("listing %s: %w", directory, err)
	}

	decision, err := s.Router.RouteBroadcast(ctx)
	if err != nil {
		return orchestrator.ParallelResult{}, err
	}
	backends := append([]string{decision.Primary}, decision.Fallback...)
	if len(backends) > numWorkers {
		backends = backends[:numWorkers]
	}

	exec := orchestrator.NewParallelExecutor(s.Adapters, numWorkers)
	return exec.Execute(ctx, prompt, files, backends, orchestrator.StrategySplit)
}

// listFiles walks directory recursively, skipping dotfiles/dotdirs, and
// returns every regular file path found.
func listFiles(directory string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != directory && len(d.Name()) > 0 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if len(d.Name()) > 0 && d.Name()[0] == '.' {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Info("services", "collected %d files from %s for parallel analysis", len(files), directory)
	return files, nil
}
