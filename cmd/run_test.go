package cmd

import (
	"strings"
	"testing"
)

func TestReadPrompt(t *testing.T) {
	out, err := readPrompt(strings.NewReader("line one\nline two\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "line one\nline two" {
		t.Errorf("got %q", out)
	}
}

func TestReadPromptEmpty(t *testing.T) {
	out, err := readPrompt(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty prompt, got %q", out)
	}
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()
	if cmd.Use != "run" {
		t.Errorf("expected Use 'run', got %s", cmd.Use)
	}
	if cmd.Flags().Lookup("prompt") == nil {
		t.Error("expected --prompt flag")
	}
	if cmd.Flags().Lookup("file") == nil {
		t.Error("expected --file flag")
	}
	if cmd.Flags().Lookup("prefer") == nil {
		t.Error("expected --prefer flag")
	}
}
