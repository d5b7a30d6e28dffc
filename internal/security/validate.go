// Package security implements the prompt and file-path safety checks. The
// CLI adapter applies both before spawning a subprocess; the HTTP adapter
// applies the file-path check before building a request body.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"muster/pkg/logging"
)

// MaxPromptLength is the hard ceiling on prompt size, in characters.
const MaxPromptLength = 100_000

// MaxFileSize is the per-file ceiling the prompt assembler enforces; kept
// here alongside the other safety constants since it originates from the
// same defense-in-depth posture.
const MaxFileSize = 1024 * 1024

// dangerousPatterns are the fixed shell-injection signatures rejected by
// ValidatePrompt: command chaining, command substitution (both forms), pipe
// to an interpreter, redirect to a device, and backgrounded destructive
// commands.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*(?:rm|curl|wget|nc|bash|sh|python|perl|ruby)`),
	regexp.MustCompile(`\$\([^)]*\)`),
	regexp.MustCompile("`[^`]*`"),
	regexp.MustCompile(`(?i)\|\s*(?:bash|sh|python|perl|ruby)`),
	regexp.MustCompile(`>\s*/dev/`),
	regexp.MustCompile(`(?i)&\s*(?:rm|curl|wget)`),
}

// ValidationError reports why a prompt or file path was rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidatePrompt rejects empty, whitespace-only, over-length, or
// injection-pattern prompts and returns the original string unchanged on
// success. It never mutates the prompt.
func ValidatePrompt(prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &ValidationError{Message: "prompt cannot be empty"}
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return "", &ValidationError{Message: fmt.Sprintf("prompt exceeds maximum length of %d characters", MaxPromptLength)}
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(prompt) {
			return "", &ValidationError{Message: fmt.Sprintf("prompt contains potentially dangerous pattern: %s", pattern.String())}
		}
	}
	return prompt, nil
}

// ValidateFilePath expands user-home shorthand, resolves the path to
// absolute, and optionally requires it to exist as a regular file.
func ValidateFilePath(path string, mustExist bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &ValidationError{Message: "file path cannot be empty"}
	}

	expanded := path
	if strings.HasPrefix(expanded, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", &ValidationError{Message: fmt.Sprintf("invalid file path %q: %v", path, err)}
	}

	if mustExist {
		info, err := os.Stat(abs)
		if err != nil {
			return "", &ValidationError{Message: fmt.Sprintf("file not found: %s", path)}
		}
		if !info.Mode().IsRegular() {
			return "", &ValidationError{Message: fmt.Sprintf("path is not a regular file: %s", path)}
		}
	}

	return abs, nil
}

// ValidateFilePaths applies ValidateFilePath to every entry, silently
// dropping (and logging at warning level) any that fail rather than
// failing the whole request. This is the unified policy both the CLI and
// HTTP adapters share.
func ValidateFilePaths(paths []string, mustExist bool) []string {
	validated := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := ValidateFilePath(p, mustExist)
		if err != nil {
			logging.Warn("security", "dropping invalid file path %q: %v", p, err)
			continue
		}
		validated = append(validated, abs)
	}
	return validated
}

// controlCharPattern matches control bytes other than tab, newline, and
// carriage return.
var controlCharPattern = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")

// SanitizeCommandArg strips embedded NUL and other control bytes (excepting
// tab/newline/carriage return) from a command-line argument. This is
// defense-in-depth on top of using argv-list subprocess invocation, which
// already precludes shell injection.
func SanitizeCommandArg(arg string) string {
	return controlCharPattern.ReplaceAllString(arg, "")
}
