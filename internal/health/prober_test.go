package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	calls int
	ok    bool
}

func (f *fakeChecker) HealthCheck(ctx context.Context) bool {
	f.calls++
	return f.ok
}

func TestProbeCachesHealthyResult(t *testing.T) {
	p := New(time.Hour, time.Hour)
	c := &fakeChecker{ok: true}

	assert.True(t, p.Probe(context.Background(), "svc", true, c))
	assert.True(t, p.Probe(context.Background(), "svc", true, c))
	assert.Equal(t, 1, c.calls)
}

func TestProbeCachesUnhealthyResult(t *testing.T) {
	p := New(time.Hour, time.Hour)
	c := &fakeChecker{ok: false}

	assert.False(t, p.Probe(context.Background(), "svc", true, c))
	assert.False(t, p.Probe(context.Background(), "svc", true, c))
	assert.Equal(t, 1, c.calls)
}

func TestProbeDisabledNeverCallsChecker(t *testing.T) {
	p := New(time.Hour, time.Hour)
	c := &fakeChecker{ok: true}

	assert.False(t, p.Probe(context.Background(), "svc", false, c))
	assert.Equal(t, 0, c.calls)
}

func TestInvalidateForcesRecheck(t *testing.T) {
	p := New(time.Hour, time.Hour)
	c := &fakeChecker{ok: true}

	p.Probe(context.Background(), "svc", true, c)
	p.Invalidate("svc")
	p.Probe(context.Background(), "svc", true, c)

	assert.Equal(t, 2, c.calls)
}

func TestProbeFuncAdapter(t *testing.T) {
	p := New(time.Hour, time.Hour)
	c := &fakeChecker{ok: true}
	fn := p.ProbeFunc("svc", true, c)
	assert.True(t, fn(context.Background()))
}
