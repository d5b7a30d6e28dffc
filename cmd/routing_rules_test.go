package cmd

import "testing"

func TestNewRoutingRulesCmd(t *testing.T) {
	cmd := newRoutingRulesCmd()
	if cmd.Use != "routing-rules" {
		t.Errorf("expected Use 'routing-rules', got %s", cmd.Use)
	}
}

func TestRunRoutingRulesWithEmptyConfig(t *testing.T) {
	dir := t.TempDir()

	originalPath := rootConfigPath
	rootConfigPath = dir
	defer func() { rootConfigPath = originalPath }()

	cmd := newRoutingRulesCmd()
	if err := runRoutingRules(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
