package promptasm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleNoFiles(t *testing.T) {
	out := Assemble("hello", nil)
	assert.Equal(t, "hello", out)
}

func TestAssembleWithFiles(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(f, []byte("package main"), 0o644))

	out := Assemble("review this", []string{f})
	assert.True(t, strings.Contains(out, "# File: "+f))
	assert.True(t, strings.Contains(out, "package main"))
	assert.True(t, strings.HasSuffix(out, "review this"))
}

func TestAssembleSkipsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "big.bin")
	big := make([]byte, 1024*1024+1)
	require.NoError(t, os.WriteFile(f, big, 0o644))

	out := Assemble("prompt", []string{f})
	assert.Equal(t, "prompt", out)
}

func TestAssembleSkipsMissingFile(t *testing.T) {
	out := Assemble("prompt", []string{"/nonexistent/path.txt"})
	assert.Equal(t, "prompt", out)
}

func TestAssembleReplacesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "bin.dat")
	require.NoError(t, os.WriteFile(f, []byte{'h', 'i', 0xff, 0xfe}, 0o644))

	out := Assemble("p", []string{f})
	assert.Contains(t, out, "hi")
}

func TestNativeFileReference(t *testing.T) {
	assert.Equal(t, "@/tmp/x.go", NativeFileReference("/tmp/x.go"))
}
