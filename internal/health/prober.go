// Package health wraps adapter health checks with a TTL cache so the
// router and HTTP adapter never hammer a backend on every request.
// Grounded on original_source/oxide/core/router.py's
// _is_service_available (cache-then-probe-then-cache) and
// oxide/utils/cache.py's HealthCheckCache (asymmetric positive/negative
// TTLs).
package health

import (
	"context"
	"time"

	"muster/internal/ttlcache"
)

// Default TTLs: negative results expire faster so recoveries are detected
// promptly (§3 Health entry).
const (
	DefaultHealthyTTL   = 30 * time.Second
	DefaultUnhealthyTTL = 10 * time.Second
)

// Checker is the narrow slice of the Adapter interface the prober needs.
type Checker interface {
	HealthCheck(ctx context.Context) bool
}

// Prober caches per-backend health results with asymmetric TTLs.
type Prober struct {
	healthy   *ttlcache.Cache
	unhealthy *ttlcache.Cache
}

// New constructs a Prober using the given positive/negative TTLs.
func New(healthyTTL, unhealthyTTL time.Duration) *Prober {
	return &Prober{
		healthy:   ttlcache.New(healthyTTL),
		unhealthy: ttlcache.New(unhealthyTTL),
	}
}

// NewDefault constructs a Prober using DefaultHealthyTTL/DefaultUnhealthyTTL.
func NewDefault() *Prober {
	return New(DefaultHealthyTTL, DefaultUnhealthyTTL)
}

// Probe returns whether name is currently considered healthy, consulting
// the cache first and falling back to checker.HealthCheck on a miss.
// Disabled backends are reported unhealthy without ever calling checker.
func (p *Prober) Probe(ctx context.Context, name string, enabled bool, checker Checker) bool {
	if !enabled {
		return false
	}

	if v, ok := p.healthy.Get(name); ok {
		return v.(bool)
	}
	if v, ok := p.unhealthy.Get(name); ok {
		return v.(bool)
	}

	healthy := checker.HealthCheck(ctx)
	if healthy {
		p.healthy.Set(name, true)
	} else {
		p.unhealthy.Set(name, false)
	}
	return healthy
}

// Invalidate clears any cached result for name, forcing the next Probe to
// re-check.
func (p *Prober) Invalidate(name string) {
	p.healthy.Invalidate(name)
	p.unhealthy.Invalidate(name)
}

// ProbeFunc adapts Probe into the closure shape internal/adapter's
// HTTPAdapter expects for its readiness check.
func (p *Prober) ProbeFunc(name string, enabled bool, checker Checker) func(ctx context.Context) bool {
	return func(ctx context.Context) bool {
		return p.Probe(ctx, name, enabled, checker)
	}
}
