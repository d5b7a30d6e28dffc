// Package router turns a task classification into a routing decision:
// which backend handles the request, in what mode, with what fallback
// chain. Grounded on original_source/oxide/core/router.py.
package router

import (
	"context"

	"muster/internal/backend"
	"muster/internal/errs"
	"muster/internal/health"
	"muster/pkg/logging"
)

// DefaultTimeoutSeconds is used when neither a routing rule nor the
// execution-level configuration specifies one.
const DefaultTimeoutSeconds = 120

// Checkers maps a backend name to the health.Checker used to probe it (an
// adapter, almost always).
type Checkers map[string]health.Checker

// Router selects a backend for each request using routing rules, falling
// back to the classifier's recommendations when no rule exists for a task
// type.
type Router struct {
	rules                map[backend.TaskType]backend.Rule
	table                *backend.Table
	prober               *health.Prober
	checkers             Checkers
	defaultTimeoutSeconds int
}

// New constructs a Router. defaultTimeoutSeconds is the execution-level
// global default (§3 configuration entity shape); pass 0 to use
// DefaultTimeoutSeconds.
func New(rules map[backend.TaskType]backend.Rule, table *backend.Table, prober *health.Prober, checkers Checkers, defaultTimeoutSeconds int) *Router {
	if defaultTimeoutSeconds <= 0 {
		defaultTimeoutSeconds = DefaultTimeoutSeconds
	}
	return &Router{
		rules:                 rules,
		table:                 table,
		prober:                prober,
		checkers:              checkers,
		defaultTimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Route selects a backend for classification, returning a Decision or
// *errs.NoServiceAvailableError if every candidate is unhealthy.
func (r *Router) Route(ctx context.Context, c backend.Classification) (backend.Decision, error) {
	rule, ok := r.rules[c.TaskType]
	if !ok {
		logging.Warn("router", "no routing rule for %s, using classifier recommendations", c.TaskType)
		return r.routeFromRecommendations(ctx, c)
	}

	primary, ok := r.selectAvailable(ctx, rule.Primary, rule.Fallback)
	if !ok {
		return backend.Decision{}, &errs.NoServiceAvailableError{TaskType: string(c.TaskType)}
	}

	mode := backend.ModeSingle
	if c.ParallelHint && rule.ParallelThreshold > 0 && c.FileCount > rule.ParallelThreshold {
		mode = backend.ModeParallel
	}

	timeout := rule.TimeoutSeconds
	if timeout <= 0 {
		timeout = r.defaultTimeoutSeconds
	}

	decision := backend.Decision{
		Primary:        primary,
		Fallback:       rule.Fallback,
		Mode:           mode,
		TimeoutSeconds: timeout,
	}
	logging.Info("router", "routed %s to %s (mode=%s, timeout=%ds)", c.TaskType, primary, mode, timeout)
	return decision, nil
}

func (r *Router) routeFromRecommendations(ctx context.Context, c backend.Classification) (backend.Decision, error) {
	if len(c.RecommendedBackends) == 0 {
		return backend.Decision{}, &errs.NoServiceAvailableError{TaskType: string(c.TaskType)}
	}

	primary, ok := r.selectAvailable(ctx, c.RecommendedBackends[0], c.RecommendedBackends[1:])
	if !ok {
		return backend.Decision{}, &errs.NoServiceAvailableError{TaskType: string(c.TaskType)}
	}

	return backend.Decision{
		Primary:        primary,
		Fallback:       c.RecommendedBackends[1:],
		Mode:           backend.ModeSingle,
		TimeoutSeconds: r.defaultTimeoutSeconds,
	}, nil
}

// selectAvailable returns the first healthy name among primary and
// fallbacks in order.
func (r *Router) selectAvailable(ctx context.Context, primary string, fallbacks []string) (string, bool) {
	if r.isAvailable(ctx, primary) {
		return primary, true
	}
	for _, fb := range fallbacks {
		if r.isAvailable(ctx, fb) {
			logging.Info("router", "primary %q unavailable, using fallback %q", primary, fb)
			return fb, true
		}
	}
	return "", false
}

func (r *Router) isAvailable(ctx context.Context, name string) bool {
	d, ok := r.table.Get(name)
	if !ok {
		return false
	}
	checker, ok := r.checkers[name]
	if !ok {
		return false
	}
	return r.prober.Probe(ctx, name, d.Enabled, checker)
}

// RouteBroadcast returns a Decision in broadcast mode over every enabled,
// healthy backend — used for parallel comparison runs rather than ordinary
// single/fallback routing.
func (r *Router) RouteBroadcast(ctx context.Context) (backend.Decision, error) {
	var healthy []string
	for _, name := range r.table.EnabledNames() {
		if r.isAvailable(ctx, name) {
			healthy = append(healthy, name)
		}
	}
	if len(healthy) == 0 {
		return backend.Decision{}, &errs.NoServiceAvailableError{TaskType: "broadcast"}
	}

	return backend.Decision{
		Primary:        healthy[0],
		Fallback:       healthy[1:],
		Mode:           backend.ModeBroadcast,
		TimeoutSeconds: r.defaultTimeoutSeconds,
	}, nil
}
