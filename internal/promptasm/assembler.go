// Package promptasm merges a prompt with bounded file contents into the
// single string a backend's input slot expects.
package promptasm

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"muster/internal/security"
	"muster/pkg/logging"
)

// Assemble merges prompt with the contents of paths (already validated by
// security.ValidateFilePaths) into one string. Each file is skipped if
// absent or larger than security.MaxFileSize; the prompt text always
// follows every file block, separated by a blank line.
func Assemble(prompt string, paths []string) string {
	var blocks []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logging.Warn("promptasm", "skipping missing file %s: %v", path, err)
			continue
		}
		if info.Size() > security.MaxFileSize {
			logging.Warn("promptasm", "skipping oversized file %s (%d bytes)", path, info.Size())
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("promptasm", "skipping unreadable file %s: %v", path, err)
			continue
		}

		content := toValidUTF8(raw)
		blocks = append(blocks, fmt.Sprintf("# File: %s\n```\n%s\n```", path, content))
	}

	if len(blocks) == 0 {
		return prompt
	}

	return strings.Join(blocks, "\n\n") + "\n\n" + prompt
}

// toValidUTF8 mirrors Python's read_text(errors="replace"): malformed bytes
// become the Unicode replacement character rather than aborting the read.
func toValidUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		b.WriteRune(r)
		raw = raw[size:]
	}
	return b.String()
}

// NativeFileReference formats a single file path using a CLI backend's
// native `@file` inclusion syntax, for backends that support it instead of
// inlined content (§4.4: the HTTP dialect never supports this, so the HTTP
// adapter always calls Assemble instead).
func NativeFileReference(path string) string {
	return "@" + path
}
