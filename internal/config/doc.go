// Package config loads the orchestrator's configuration: logging and
// execution defaults, the backend descriptor table, and the routing rule
// table.
//
// # Configuration Layers
//
// LoadConfig merges three layers in order, later overriding earlier:
//
//  1. Default configuration (DefaultConfig) — minimal built-in defaults.
//  2. User configuration (~/.config/oxide/) — personal overrides shared
//     across projects.
//  3. Project configuration (./.oxide/) — project-specific overrides,
//     typically checked into version control.
//
// LoadConfigFromPath bypasses this layering entirely and reads a single
// directory, for the CLI's --config-path override.
//
// # Files
//
// Each layer directory may contain:
//
//   - config.yaml — logging and execution sections.
//   - backends.yaml — a map from backend name to descriptor fields.
//   - routing_rules.yaml — a map from task-type tag to rule fields.
//
// Every file is optional; a missing one is logged at info level and the
// layer simply contributes nothing for it.
package config
