package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestBackendsConfig(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "backends.yaml"), []byte(
		"truthy:\n  enabled: true\n  type: cli\n  executable: /usr/bin/true\n",
	), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewBackendsCmd(t *testing.T) {
	cmd := newBackendsCmd()
	if cmd.Use != "backends" {
		t.Errorf("expected Use 'backends', got %s", cmd.Use)
	}
}

func TestRunBackendsReportsConfiguredBackend(t *testing.T) {
	dir := t.TempDir()
	writeTestBackendsConfig(t, dir)

	originalPath, originalDebug := rootConfigPath, rootDebug
	rootConfigPath = dir
	defer func() { rootConfigPath, rootDebug = originalPath, originalDebug }()

	cmd := newBackendsCmd()
	if err := runBackends(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
