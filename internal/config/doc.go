// Package config loads, normalizes, and validates dicomsort configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads an optional TOML file. Command-line flags are applied
// on top of the loaded Config by the CLI before Validate runs, so flag and
// file values pass the same checks. Option combinations the placement engine
// cannot honour (archive with symlink, symlink with source removal) are
// rejected here rather than silently resolved.
package config
