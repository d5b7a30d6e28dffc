package app

import "testing"

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, false, "/tmp/oxide")

	if !cfg.Debug {
		t.Errorf("expected Debug true, got false")
	}
	if cfg.Silent {
		t.Errorf("expected Silent false, got true")
	}
	if cfg.ConfigPath != "/tmp/oxide" {
		t.Errorf("expected ConfigPath /tmp/oxide, got %q", cfg.ConfigPath)
	}
	if cfg.Loaded != nil {
		t.Errorf("expected Loaded nil before bootstrap, got %+v", cfg.Loaded)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(false, false, "")

	if cfg.Debug {
		t.Errorf("expected Debug false by default")
	}
	if cfg.ConfigPath != "" {
		t.Errorf("expected empty ConfigPath by default, got %q", cfg.ConfigPath)
	}
}
