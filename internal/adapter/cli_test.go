package adapter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"muster/internal/backend"
	"muster/internal/procmgr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("CLI adapter tests assume a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-backend.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func collect(ch <-chan Chunk) ([]string, error) {
	var texts []string
	var err error
	for c := range ch {
		if c.Err != nil {
			err = c.Err
			continue
		}
		texts = append(texts, c.Text)
	}
	return texts, err
}

func TestCLIAdapterExecuteStreamsStdout(t *testing.T) {
	script := writeScript(t, `echo "line one"
echo "line two"
`)
	a := NewCLIAdapter(backend.Descriptor{Name: "fake", Kind: backend.KindCLI, Executable: script}, procmgr.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	texts, err := collect(a.Execute(ctx, "hello", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"line one\n", "line two\n"}, texts)
}

func TestCLIAdapterNonzeroExit(t *testing.T) {
	script := writeScript(t, `echo "boom" 1>&2
exit 3
`)
	a := NewCLIAdapter(backend.Descriptor{Name: "fake", Kind: backend.KindCLI, Executable: script}, procmgr.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collect(a.Execute(ctx, "hello", nil))
	require.Error(t, err)
}

func TestCLIAdapterExecutableNotFound(t *testing.T) {
	a := NewCLIAdapter(backend.Descriptor{Name: "fake", Kind: backend.KindCLI, Executable: "/no/such/executable-xyz"}, procmgr.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collect(a.Execute(ctx, "hello", nil))
	require.Error(t, err)
}

func TestCLIAdapterRejectsDangerousPrompt(t *testing.T) {
	script := writeScript(t, `echo "should never run"`)
	a := NewCLIAdapter(backend.Descriptor{Name: "fake", Kind: backend.KindCLI, Executable: script}, procmgr.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collect(a.Execute(ctx, "run; rm -rf /", nil))
	require.Error(t, err)
}

func TestCLIAdapterHealthCheck(t *testing.T) {
	script := writeScript(t, `exit 0`)
	a := NewCLIAdapter(backend.Descriptor{Name: "fake", Kind: backend.KindCLI, Executable: script}, procmgr.New())
	assert.True(t, a.HealthCheck(context.Background()))
}

func TestCLIAdapterHealthCheckFailure(t *testing.T) {
	a := NewCLIAdapter(backend.Descriptor{Name: "fake", Kind: backend.KindCLI, Executable: "/no/such/executable-xyz"}, procmgr.New())
	assert.False(t, a.HealthCheck(context.Background()))
}
