package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"muster/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServicesConfig(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backends.yaml"), []byte(
		"truthy:\n  enabled: true\n  type: cli\n  executable: /usr/bin/true\n"+
			"disabled_backend:\n  enabled: false\n  type: cli\n  executable: /usr/bin/true\n",
	), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routing_rules.yaml"), []byte(
		"quick-query:\n  primary: truthy\n  timeout_seconds: 30\n",
	), 0644))
}

func TestInitializeServicesBuildsAdaptersFromBackendsFile(t *testing.T) {
	dir := t.TempDir()
	writeServicesConfig(t, dir)

	cfg := NewConfig(false, true, dir)
	svc, err := InitializeServices(cfg)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"truthy", "disabled_backend"}, svc.Table.Names())
	assert.Contains(t, svc.Adapters, "truthy")
	assert.NotNil(t, cfg.Loaded)
}

func TestListBackendsReportsEnabledAndHealthy(t *testing.T) {
	dir := t.TempDir()
	writeServicesConfig(t, dir)

	cfg := NewConfig(false, true, dir)
	svc, err := InitializeServices(cfg)
	require.NoError(t, err)

	statuses := svc.ListBackends(context.Background())
	byName := map[string]BackendStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "truthy")
	assert.True(t, byName["truthy"].Enabled)
	assert.True(t, byName["truthy"].Healthy)

	require.Contains(t, byName, "disabled_backend")
	assert.False(t, byName["disabled_backend"].Enabled)
	assert.False(t, byName["disabled_backend"].Healthy)
}

func TestTestBackendUnknownNameReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeServicesConfig(t, dir)

	cfg := NewConfig(false, true, dir)
	svc, err := InitializeServices(cfg)
	require.NoError(t, err)

	result := svc.TestBackend(context.Background(), "ghost", "hello")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRoutingRulesReflectsLoadedConfig(t *testing.T) {
	dir := t.TempDir()
	writeServicesConfig(t, dir)

	cfg := NewConfig(false, true, dir)
	svc, err := InitializeServices(cfg)
	require.NoError(t, err)

	rules := svc.RoutingRules()
	rule, ok := rules[backend.TaskQuickQuery]
	require.True(t, ok)
	assert.Equal(t, "truthy", rule.Primary)
	assert.Equal(t, 30, rule.TimeoutSeconds)
}
